// Package trace records the per-hop decisions of a bound analysis.
// This package has no dependencies on nc/ or its numeric types: it stores
// pure data, with bounds rendered as strings.
package trace

// TraceLevel controls the verbosity of hop recording.
type TraceLevel string

const (
	// TraceLevelHops records the selected bounds of every hop.
	TraceLevelHops TraceLevel = "hops"
	// TraceLevelCandidates additionally records every candidate evaluated.
	TraceLevelCandidates TraceLevel = "candidates"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelHops:       true,
	TraceLevelCandidates: true,
	"":                   true, // empty defaults to hops
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Candidates reports whether per-candidate records are kept.
func (c TraceConfig) Candidates() bool { return c.Level == TraceLevelCandidates }

// Trace collects hop records for one analysis of one flow. A trace handed
// out by an analysis is never appended to again. Complete is false when
// the analysis stopped early.
type Trace struct {
	Config   TraceConfig
	Analysis string
	Flow     string
	Hops     []HopRecord
	Complete bool
}

// New creates a Trace ready for recording.
func New(analysis, flow string, config TraceConfig) *Trace {
	return &Trace{
		Config:   config,
		Analysis: analysis,
		Flow:     flow,
		Hops:     make([]HopRecord, 0),
	}
}

// RecordHop appends a hop record.
func (t *Trace) RecordHop(record HopRecord) {
	t.Hops = append(t.Hops, record)
}

// Finish marks the trace complete.
func (t *Trace) Finish() {
	t.Complete = true
}

// Snapshot returns an independent copy of the trace as recorded so far.
func (t *Trace) Snapshot() *Trace {
	if t == nil {
		return nil
	}
	out := *t
	out.Hops = make([]HopRecord, len(t.Hops))
	for i, h := range t.Hops {
		out.Hops[i] = h.clone()
	}
	return &out
}
