package nc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/internal/testutil"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
)

func TestTotalFlowAnalysis_ReferenceNetwork_AllBackends(t *testing.T) {
	disciplines := map[MuxDiscipline]map[string]testutil.Bound{
		GlobalFIFO:      testutil.TFAFIFO,
		GlobalArbitrary: testutil.TFAArbitrary,
	}
	for _, b := range testutil.Backends {
		for mux, want := range disciplines {
			t.Run(fmt.Sprintf("%s/%s", b, mux), func(t *testing.T) {
				// GIVEN the reference network in backend b
				net := testutil.ReferenceNetwork(t, b)
				tfa, err := NewTotalFlowAnalysis(net, configFor(b, mux))
				require.NoError(t, err)

				for alias, bound := range want {
					// WHEN each flow is analyzed
					r, err := tfa.Analyze(testutil.MustFlow(t, net, alias))
					require.NoError(t, err)

					// THEN the bounds match the known values
					testutil.AssertNumEqual(t, alias+" delay", bound.Delay, r.DelayBound())
					testutil.AssertNumEqual(t, alias+" backlog", bound.Backlog, r.BacklogBound())
					assert.True(t, r.Trace().Complete)
				}
			})
		}
	}
}

func TestTotalFlowAnalysis_PerServerCandidates(t *testing.T) {
	// GIVEN the reference network without ordering assumptions
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)

	// WHEN f0 is analyzed
	r, err := tfa.Analyze(testutil.MustFlow(t, net, "f0"))
	require.NoError(t, err)

	// THEN every server of its path carries one candidate per method
	assert.Equal(t, "{s1={55}, s2={75}, s5={235}, s6={295}}", r.ServerDelayBoundsString())
	assert.Equal(t, "{s1={350}, s2={550}, s5={1075}, s6={1375}}", r.ServerBacklogBoundsString())

	f := net.Numbers()
	alg := curve.NewAlgebra(f)
	arrivals := r.ServerArrivalCurves()
	assert.Len(t, arrivals, 4)
	s5 := testutil.MustServer(t, net, "s5")
	require.Len(t, arrivals[s5], 1)
	assert.True(t, arrivals[s5][0].Eq(alg.TokenBucket(f.FromInt(15), f.FromInt(775))), "got %v", arrivals[s5][0])

	delays := r.ServerDelayBounds()
	delays[s5][0] = f.Zero()
	assert.Equal(t, "{s1={55}, s2={75}, s5={235}, s6={295}}", r.ServerDelayBoundsString(), "accessors return copies")
}

func TestTotalFlowAnalysis_SingleFlowServer_AnalyzedAsFIFO(t *testing.T) {
	// GIVEN global arbitrary multiplexing, where s0 hosts only f1
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary))
	require.NoError(t, err)

	// WHEN f1 is analyzed
	r, err := tfa.Analyze(testutil.MustFlow(t, net, "f1"))
	require.NoError(t, err)

	// THEN s0 uses the FIFO delay bound and shared servers do not
	s0 := testutil.MustServer(t, net, "s0")
	s1 := testutil.MustServer(t, net, "s1")
	fifo := r.ServerFIFO()
	assert.True(t, fifo[s0])
	assert.False(t, fifo[s1])
	testutil.AssertNumEqual(t, "s0 delay", "85/4", r.ServerDelayBounds()[s0][0])
	assert.Equal(t, "{s0={85/4}, s1={55}, s2={75}, s5={235}, s6={295}}", r.ServerDelayBoundsString())
}

func TestTotalFlowAnalysis_ServerLocal_FollowsServerAttribute(t *testing.T) {
	// GIVEN server-local multiplexing where only s1 and s2 stay FIFO
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	for _, alias := range []string{"s5", "s6"} {
		require.NoError(t, net.SetMultiplexing(testutil.MustServer(t, net, alias), network.Arbitrary))
	}
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, ServerLocal))
	require.NoError(t, err)

	// WHEN f0 is analyzed
	r, err := tfa.Analyze(testutil.MustFlow(t, net, "f0"))
	require.NoError(t, err)

	// THEN s1, s2 use FIFO delays and s5, s6 arbitrary ones: 55/2 + 75/2 + 235 + 295
	testutil.AssertNumEqual(t, "delay", "595", r.DelayBound())
	testutil.AssertNumEqual(t, "backlog", "1375", r.BacklogBound())
}

func TestTotalFlowAnalysis_SinkPath_BoundsEveryFlow(t *testing.T) {
	// GIVEN the reference network under FIFO
	net := testutil.ReferenceNetwork(t, num.RationalInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalInt, GlobalFIFO))
	require.NoError(t, err)
	s6 := testutil.MustServer(t, net, "s6")

	for _, f := range net.Flows() {
		// WHEN only the shared sink is analyzed
		r, err := tfa.AnalyzePath(f, network.Path{s6})
		require.NoError(t, err)

		// THEN every flow sees the sink's aggregate bounds
		testutil.AssertNumEqual(t, f.Alias()+" backlog", "1375", r.BacklogBound())
		testutil.AssertNumEqual(t, f.Alias()+" delay", "295/4", r.DelayBound())
		assert.Len(t, r.Trace().Hops, 1)
	}
}

func TestTotalFlowAnalysis_TwoServerAccumulation(t *testing.T) {
	// GIVEN one flow TB{1, 2} over RL{4, 3} then RL{2, 1}
	for _, b := range testutil.Backends {
		t.Run(string(b), func(t *testing.T) {
			net, s := tandem(t, num.MustFactory(b), [2]string{"4", "3"}, [2]string{"2", "1"})
			f := addFlow(t, net, "f", "1", "2", s...)
			tfa, err := NewTotalFlowAnalysis(net, configFor(b, GlobalArbitrary))
			require.NoError(t, err)

			// WHEN analyzed
			r, err := tfa.Analyze(f)
			require.NoError(t, err)

			// THEN delays add (3.5 + 3.5) and the backlog is the larger one (5 vs 6)
			testutil.AssertNumEqual(t, "delay", "7", r.DelayBound())
			testutil.AssertNumEqual(t, "backlog", "6", r.BacklogBound())
			hops := r.Trace().Hops
			require.Len(t, hops, 2)
			assert.Equal(t, r.DelayBound().String(), hops[1].TotalDelay)
		})
	}
}

func TestTotalFlowAnalysis_UnstableServer_InfiniteBounds(t *testing.T) {
	// GIVEN a flow faster than its server
	f := num.MustFactory(num.RealDouble)
	net, s := tandem(t, f, [2]string{"1", "1"})
	flow := addFlow(t, net, "f", "2", "1", s...)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RealDouble, GlobalFIFO))
	require.NoError(t, err)

	// WHEN analyzed
	r, err := tfa.Analyze(flow)

	// THEN the analysis succeeds with unbounded results
	require.NoError(t, err)
	assert.True(t, r.DelayBound().IsPosInf())
	assert.True(t, r.BacklogBound().IsPosInf())
}

func TestTotalFlowAnalysis_AddingCandidates_NeverLoosens(t *testing.T) {
	for _, mux := range []MuxDiscipline{GlobalFIFO, GlobalArbitrary} {
		t.Run(string(mux), func(t *testing.T) {
			// GIVEN the reference network analyzed with one and with both methods
			net := testutil.ReferenceNetwork(t, num.RationalBigInt)
			aggOnly, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, mux, AggregateArrivalBound))
			require.NoError(t, err)
			segOnly, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, mux, SegregatedArrivalBound))
			require.NoError(t, err)
			both, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, mux, AggregateArrivalBound, SegregatedArrivalBound))
			require.NoError(t, err)

			for _, f := range net.Flows() {
				ra, err := aggOnly.Analyze(f)
				require.NoError(t, err)
				rs, err := segOnly.Analyze(f)
				require.NoError(t, err)
				rb, err := both.Analyze(f)
				require.NoError(t, err)

				// THEN the combined bound is never above either single-method bound
				assert.True(t, rb.DelayBound().Leq(ra.DelayBound()), "%s: %s > %s", f, rb.DelayBound(), ra.DelayBound())
				assert.True(t, rb.DelayBound().Leq(rs.DelayBound()), "%s: %s > %s", f, rb.DelayBound(), rs.DelayBound())
				assert.True(t, rb.BacklogBound().Leq(ra.BacklogBound()))
				assert.True(t, rb.BacklogBound().Leq(rs.BacklogBound()))
				for _, hop := range rb.Trace().Hops {
					assert.Equal(t, 2, hop.CandidateCount)
				}
			}
		})
	}
}

func TestTotalFlowAnalysis_SegregatedCandidateRecorded(t *testing.T) {
	// GIVEN both arrival bound methods
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, GlobalArbitrary, AggregateArrivalBound, SegregatedArrivalBound))
	require.NoError(t, err)

	// WHEN f0 is analyzed
	r, err := tfa.Analyze(testutil.MustFlow(t, net, "f0"))
	require.NoError(t, err)

	// THEN s2 records both candidates, the aggregate one is selected
	f := net.Numbers()
	alg := curve.NewAlgebra(f)
	s2 := testutil.MustServer(t, net, "s2")
	got := r.ServerArrivalCurves()[s2]
	require.Len(t, got, 2)
	assert.True(t, got[0].Eq(alg.TokenBucket(f.FromInt(10), f.FromInt(350))), "got %v", got[0])
	assert.True(t, got[1].Eq(alg.TokenBucket(f.FromInt(10), f.FromFraction(1400, 3))), "got %v", got[1])
	testutil.AssertNumEqual(t, "delay", "660", r.DelayBound())
}

func TestTotalFlowAnalysis_Overflow_FailsWithPartialTrace(t *testing.T) {
	// GIVEN a path whose backlog at the second server exceeds int64
	build := func(b num.Backend) (*network.Network, *network.Flow) {
		net, s := tandem(t, num.MustFactory(b),
			[2]string{"68719476736", "1"},          // 2^36
			[2]string{"68719476736", "1073741824"}, // 2^36, 2^30
		)
		return net, addFlow(t, net, "f", "34359738368", "1", s...) // 2^35
	}

	// WHEN analyzed with rational-int
	net, flow := build(num.RationalInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalInt, GlobalFIFO))
	require.NoError(t, err)
	r, err := tfa.Analyze(flow)

	// THEN the analysis fails at s1 and keeps the completed hop
	assert.Nil(t, r)
	var ae *AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, KindTFA, ae.Kind)
	assert.Equal(t, "f", ae.Flow)
	assert.Equal(t, "s1", ae.Server)
	assert.False(t, ae.Partial.Complete)
	require.Len(t, ae.Partial.Hops, 1)
	assert.Equal(t, []string{"s0"}, ae.Partial.Hops[0].Servers)
	var oe *num.OverflowError
	assert.True(t, errors.As(err, &oe))

	// WHEN analyzed with rational-bigint
	net, flow = build(num.RationalBigInt)
	tfa, err = NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, GlobalFIFO))
	require.NoError(t, err)
	r, err = tfa.Analyze(flow)

	// THEN it succeeds: 1 + 2^35 + 2^65
	require.NoError(t, err)
	testutil.AssertNumEqual(t, "backlog", "36893488181778841601", r.BacklogBound())
}

func TestTotalFlowAnalysis_InvalidTargets(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	tfa, err := NewTotalFlowAnalysis(net, configFor(num.RationalBigInt, GlobalFIFO))
	require.NoError(t, err)
	f0 := testutil.MustFlow(t, net, "f0")
	s1 := testutil.MustServer(t, net, "s1")
	s5 := testutil.MustServer(t, net, "s5")

	// Path skipping a turn.
	_, err = tfa.AnalyzePath(f0, network.Path{s1, s5})
	var ae *AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, network.ErrNoTurn)
	assert.Empty(t, ae.Server)
	assert.False(t, ae.Partial.Complete)

	// Empty path.
	_, err = tfa.AnalyzePath(f0, nil)
	assert.ErrorIs(t, err, network.ErrEmptyPath)

	// Flow of another network.
	other := testutil.ReferenceNetwork(t, num.RationalBigInt)
	_, err = tfa.Analyze(testutil.MustFlow(t, other, "f0"))
	assert.ErrorIs(t, err, network.ErrUnknownFlow)
}

func TestNewTotalFlowAnalysis_BackendMismatch(t *testing.T) {
	// GIVEN a rational network and a float configuration
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)

	// WHEN the analysis is created
	_, err := NewTotalFlowAnalysis(net, configFor(num.RealDouble, GlobalFIFO))

	// THEN it is rejected
	assert.ErrorIs(t, err, ErrBackendMismatch)

	// An empty backend adopts the network's.
	_, err = NewTotalFlowAnalysis(net, configFor("", GlobalFIFO))
	assert.NoError(t, err)
}
