package nc

import (
	"fmt"

	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// MuxDiscipline selects how multiplexing at servers is assumed.
type MuxDiscipline string

const (
	// GlobalFIFO treats every server as FIFO.
	GlobalFIFO MuxDiscipline = "global-fifo"
	// GlobalArbitrary assumes no ordering anywhere.
	GlobalArbitrary MuxDiscipline = "global-arbitrary"
	// ServerLocal uses each server's own multiplexing attribute.
	ServerLocal MuxDiscipline = "server-local"
)

// ValidMuxDisciplines maps accepted discipline names. Empty means GlobalArbitrary.
var ValidMuxDisciplines = map[MuxDiscipline]bool{
	"":              true,
	GlobalFIFO:      true,
	GlobalArbitrary: true,
	ServerLocal:     true,
}

// IsValidMuxDiscipline returns true if name is a recognized discipline.
func IsValidMuxDiscipline(name string) bool {
	return ValidMuxDisciplines[MuxDiscipline(name)]
}

// ArrivalBoundMethod names one way of bounding the arrivals at a server.
// Each configured method contributes one candidate curve.
type ArrivalBoundMethod string

const (
	// AggregateArrivalBound bounds the flows entering from one predecessor
	// together, through the left-over service of that group.
	AggregateArrivalBound ArrivalBoundMethod = "aggregate"
	// SegregatedArrivalBound bounds each flow alone, through the left-over
	// service of that single flow.
	SegregatedArrivalBound ArrivalBoundMethod = "segregated"
)

// ValidArrivalBoundMethods maps accepted method names.
var ValidArrivalBoundMethods = map[ArrivalBoundMethod]bool{
	AggregateArrivalBound:  true,
	SegregatedArrivalBound: true,
}

// IsValidArrivalBoundMethod returns true if name is a recognized method.
func IsValidArrivalBoundMethod(name string) bool {
	return ValidArrivalBoundMethods[ArrivalBoundMethod(name)]
}

// AnalysisConfig parameterizes one analysis. It is copied into every
// analysis object and never mutated afterwards.
type AnalysisConfig struct {
	Mux                 MuxDiscipline
	Backend             num.Backend // must equal the network's; empty accepts the network's
	ArrivalBoundMethods []ArrivalBoundMethod
	Trace               trace.TraceConfig
}

// DefaultConfig returns global-arbitrary multiplexing with the aggregate
// arrival bound, in the network's backend.
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		Mux:                 GlobalArbitrary,
		ArrivalBoundMethods: []ArrivalBoundMethod{AggregateArrivalBound},
	}
}

// Validate checks every field of the configuration.
func (c AnalysisConfig) Validate() error {
	if !IsValidMuxDiscipline(string(c.Mux)) {
		return fmt.Errorf("%w: unknown multiplexing discipline %q; valid: global-fifo, global-arbitrary, server-local", ErrInvalidConfig, c.Mux)
	}
	if !num.IsValidBackend(string(c.Backend)) {
		return fmt.Errorf("%w: unknown numeric backend %q", ErrInvalidConfig, c.Backend)
	}
	seen := make(map[ArrivalBoundMethod]bool, len(c.ArrivalBoundMethods))
	for _, m := range c.ArrivalBoundMethods {
		if !ValidArrivalBoundMethods[m] {
			return fmt.Errorf("%w: unknown arrival bound method %q; valid: aggregate, segregated", ErrInvalidConfig, m)
		}
		if seen[m] {
			return fmt.Errorf("%w: arrival bound method %q listed twice", ErrInvalidConfig, m)
		}
		seen[m] = true
	}
	if !trace.IsValidTraceLevel(string(c.Trace.Level)) {
		return fmt.Errorf("%w: unknown trace level %q; valid: hops, candidates", ErrInvalidConfig, c.Trace.Level)
	}
	return nil
}

// bind validates c against net and fills defaults.
func (c AnalysisConfig) bind(net *network.Network) (AnalysisConfig, error) {
	if err := c.Validate(); err != nil {
		return c, err
	}
	if c.Backend == "" {
		c.Backend = net.Numbers().Backend()
	}
	if c.Backend != net.Numbers().Backend() {
		return c, fmt.Errorf("%w: configured %s, network uses %s", ErrBackendMismatch, c.Backend, net.Numbers().Backend())
	}
	if c.Mux == "" {
		c.Mux = GlobalArbitrary
	}
	if len(c.ArrivalBoundMethods) == 0 {
		c.ArrivalBoundMethods = []ArrivalBoundMethod{AggregateArrivalBound}
	} else {
		c.ArrivalBoundMethods = append([]ArrivalBoundMethod(nil), c.ArrivalBoundMethods...)
	}
	if c.Trace.Level == "" {
		c.Trace.Level = trace.TraceLevelHops
	}
	return c, nil
}

// fifoAt reports whether s is analyzed as FIFO: under global-fifo, under
// server-local when s is FIFO, and whenever s hosts a single flow.
func (c AnalysisConfig) fifoAt(net *network.Network, s *network.Server) bool {
	if len(net.FlowsAt(s)) == 1 {
		return true
	}
	switch c.Mux {
	case GlobalFIFO:
		return true
	case ServerLocal:
		return s.Multiplexing() == network.FIFO
	default:
		return false
	}
}
