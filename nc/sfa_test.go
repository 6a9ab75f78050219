package nc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/internal/testutil"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
)

func TestSeparateFlowAnalysis_ReferenceNetwork_AllBackends(t *testing.T) {
	disciplines := map[MuxDiscipline]map[string]testutil.Bound{
		GlobalFIFO:      testutil.SFAFIFO,
		GlobalArbitrary: testutil.SFAArbitrary,
	}
	for _, b := range testutil.Backends {
		for mux, want := range disciplines {
			t.Run(fmt.Sprintf("%s/%s", b, mux), func(t *testing.T) {
				net := testutil.ReferenceNetwork(t, b)
				sfa, err := NewSeparateFlowAnalysis(net, configFor(b, mux))
				require.NoError(t, err)

				for alias, bound := range want {
					r, err := sfa.Analyze(testutil.MustFlow(t, net, alias))
					require.NoError(t, err)
					testutil.AssertNumEqual(t, alias+" delay", bound.Delay, r.DelayBound())
					testutil.AssertNumEqual(t, alias+" backlog", bound.Backlog, r.BacklogBound())
				}
			})
		}
	}
}

func TestSeparateFlowAnalysis_LeftOverCurves(t *testing.T) {
	// GIVEN global arbitrary multiplexing
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	f := net.Numbers()
	alg := curve.NewAlgebra(f)
	sfa, err := NewSeparateFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)

	// WHEN f0 is analyzed
	r, err := sfa.Analyze(testutil.MustFlow(t, net, "f0"))
	require.NoError(t, err)

	// THEN s1 leaves RL{15, 35}: f1 arrives as TB{5, 125}
	s1 := testutil.MustServer(t, net, "s1")
	lo := r.ServerLeftOverCurves()[s1]
	require.Len(t, lo, 1)
	assert.True(t, lo[0].Eq(alg.RateLatency(f.FromInt(15), f.FromInt(35))), "got %v", lo[0])
	require.Len(t, r.EndToEndServiceCurves(), 1)
	assert.Len(t, r.Trace().Hops, 4)
	assert.Empty(t, r.Trace().Hops[0].Delay, "no per-hop delay in SFA")
}

func TestSeparateFlowAnalysis_SubPath_UsesBoundedEntryArrival(t *testing.T) {
	// GIVEN f1 analyzed over [s1, s2] only
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	f := net.Numbers()
	alg := curve.NewAlgebra(f)
	sfa, err := NewSeparateFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)
	f1 := testutil.MustFlow(t, net, "f1")
	path := network.Path{testutil.MustServer(t, net, "s1"), testutil.MustServer(t, net, "s2")}

	// WHEN analyzed
	r, err := sfa.AnalyzePath(f1, path)
	require.NoError(t, err)

	// THEN f1 enters s1 as TB{5, 125} and the tandem leaves RL{15, 190/3}
	entry := r.EntryArrivalCurves()
	require.Len(t, entry, 1)
	assert.True(t, entry[0].Eq(alg.TokenBucket(f.FromInt(5), f.FromInt(125))), "got %v", entry[0])
	testutil.AssertNumEqual(t, "delay", "215/3", r.DelayBound())
	testutil.AssertNumEqual(t, "backlog", "1325/3", r.BacklogBound())
}

func TestSeparateFlowAnalysis_PathNotCrossed(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	sfa, err := NewSeparateFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)
	path := network.Path{testutil.MustServer(t, net, "s0"), testutil.MustServer(t, net, "s1")}

	_, err = sfa.AnalyzePath(testutil.MustFlow(t, net, "f0"), path)

	assert.ErrorIs(t, err, ErrFlowNotOnPath)
}

func TestSeparateFlowAnalysis_BothMethods_CandidatesConvolved(t *testing.T) {
	// GIVEN both arrival bound methods
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	sfa, err := NewSeparateFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary, AggregateArrivalBound, SegregatedArrivalBound))
	require.NoError(t, err)
	single, err := NewSeparateFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)

	for _, fl := range net.Flows() {
		// WHEN analyzed with and without the extra method
		rb, err := sfa.Analyze(fl)
		require.NoError(t, err)
		ra, err := single.Analyze(fl)
		require.NoError(t, err)

		// THEN extra candidates never loosen the bound
		assert.True(t, rb.DelayBound().Leq(ra.DelayBound()), "%s", fl)
		assert.True(t, rb.BacklogBound().Leq(ra.BacklogBound()), "%s", fl)
		assert.GreaterOrEqual(t, len(rb.EndToEndServiceCurves()), 1)
	}
}
