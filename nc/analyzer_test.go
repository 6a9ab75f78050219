package nc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/netcalc/nc/internal/testutil"
	"github.com/inference-sim/netcalc/nc/num"
)

func TestNewAnalyzer_AllKinds(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RationalBigInt)
	for kind := range ValidAnalyses {
		a, err := NewAnalyzer(kind, net, configFor(num.RationalBigInt, GlobalArbitrary))
		require.NoError(t, err)
		assert.Equal(t, kind, a.Kind())
	}

	_, err := NewAnalyzer("wopt", net, DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownAnalysis)
	assert.False(t, IsValidAnalysis("wopt"))
	assert.True(t, IsValidAnalysis("pmoo"))

	a, err := NewAnalyzer(KindTFA, net, configFor(num.RealSingle, GlobalArbitrary))
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrBackendMismatch)
}

func TestAnalyzeFlows_ResultsInFlowOrder(t *testing.T) {
	expected := map[Kind]map[string]testutil.Bound{
		KindTFA:  testutil.TFAArbitrary,
		KindSFA:  testutil.SFAArbitrary,
		KindPMOO: testutil.PMOOArbitrary,
	}
	for kind, want := range expected {
		t.Run(string(kind), func(t *testing.T) {
			// GIVEN an analyzer over the reference network
			net := testutil.ReferenceNetwork(t, num.RationalBigInt)
			a, err := NewAnalyzer(kind, net, configFor(num.RationalBigInt, GlobalArbitrary))
			require.NoError(t, err)

			// WHEN every flow is analyzed in parallel
			results, err := AnalyzeFlows(context.Background(), a, net.Flows())
			require.NoError(t, err)

			// THEN results come back in flow order with the known bounds
			require.Len(t, results, 3)
			for i, f := range net.Flows() {
				r := results[i]
				assert.Same(t, f, r.Flow())
				assert.Equal(t, kind, r.Kind())
				testutil.AssertNumEqual(t, f.Alias()+" delay", want[f.Alias()].Delay, r.DelayBound())
				testutil.AssertNumEqual(t, f.Alias()+" backlog", want[f.Alias()].Backlog, r.BacklogBound())
			}
		})
	}
}

func TestAnalyzeFlows_FirstFailureReturned(t *testing.T) {
	// GIVEN a rational-int network where one flow overflows
	f := num.MustFactory(num.RationalInt)
	net, s := tandem(t, f, [2]string{"68719476736", "1"}, [2]string{"68719476736", "1073741824"})
	addFlow(t, net, "ok", "1", "1", s[0])
	addFlow(t, net, "big", "34359738368", "1", s...)
	a, err := NewAnalyzer(KindTFA, net, configFor(num.RationalInt, GlobalFIFO))
	require.NoError(t, err)

	// WHEN all flows are analyzed
	results, err := AnalyzeFlows(context.Background(), a, net.Flows())

	// THEN no results are returned and the failure names the flow
	assert.Nil(t, results)
	var ae *AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "big", ae.Flow)
}

func TestAnalyzeFlows_CanceledContext(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RealDouble)
	a, err := NewAnalyzer(KindTFA, net, DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = AnalyzeFlows(ctx, a, net.Flows())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisError_Message(t *testing.T) {
	err := &AnalysisError{Kind: KindSFA, Flow: "f0", Server: "s2", Err: ErrFlowNotOnPath}
	assert.Equal(t, "nc: sfa analysis of flow f0 failed at s2: nc: flow does not cross the analyzed path", err.Error())
	assert.ErrorIs(t, err, ErrFlowNotOnPath)

	early := &AnalysisError{Kind: KindTFA, Flow: "f1", Err: ErrFlowNotOnPath}
	assert.Equal(t, "nc: tfa analysis of flow f1: nc: flow does not cross the analyzed path", early.Error())
}
