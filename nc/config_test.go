package nc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/netcalc/nc/internal/testutil"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

func TestAnalysisConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, AnalysisConfig{}.Validate())

	tests := []struct {
		name string
		cfg  AnalysisConfig
	}{
		{"unknown discipline", AnalysisConfig{Mux: "weighted"}},
		{"unknown backend", AnalysisConfig{Backend: "decimal128"}},
		{"unknown method", AnalysisConfig{ArrivalBoundMethods: []ArrivalBoundMethod{"pbooab"}}},
		{"repeated method", AnalysisConfig{ArrivalBoundMethods: []ArrivalBoundMethod{AggregateArrivalBound, AggregateArrivalBound}}},
		{"unknown trace level", AnalysisConfig{Trace: trace.TraceConfig{Level: "verbose"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestAnalysisConfig_BindFillsDefaults(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RationalInt)

	cfg, err := AnalysisConfig{}.bind(net)
	require.NoError(t, err)

	assert.Equal(t, GlobalArbitrary, cfg.Mux)
	assert.Equal(t, num.RationalInt, cfg.Backend)
	assert.Equal(t, []ArrivalBoundMethod{AggregateArrivalBound}, cfg.ArrivalBoundMethods)
	assert.Equal(t, trace.TraceLevelHops, cfg.Trace.Level)
}

func TestAnalysisConfig_BindCopiesMethods(t *testing.T) {
	net := testutil.ReferenceNetwork(t, num.RationalInt)
	methods := []ArrivalBoundMethod{AggregateArrivalBound, SegregatedArrivalBound}

	cfg, err := AnalysisConfig{ArrivalBoundMethods: methods}.bind(net)
	require.NoError(t, err)
	methods[0] = SegregatedArrivalBound

	assert.Equal(t, AggregateArrivalBound, cfg.ArrivalBoundMethods[0])
}

func TestIsValidNames(t *testing.T) {
	assert.True(t, IsValidMuxDiscipline(""))
	assert.True(t, IsValidMuxDiscipline("server-local"))
	assert.False(t, IsValidMuxDiscipline("fifo"))
	assert.True(t, IsValidArrivalBoundMethod("segregated"))
	assert.False(t, IsValidArrivalBoundMethod(""))
}
