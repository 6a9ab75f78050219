package trace

import (
	"slices"
	"strings"
)

// CandidateRecord captures one candidate evaluated at a hop.
type CandidateRecord struct {
	Curve   string // arrival curve (TFA) or left-over service curve (SFA, PMOO)
	Delay   string // empty when the analysis does not bound delay per hop
	Backlog string
}

// HopRecord captures the decision taken for one segment of the analyzed path.
// TFA and SFA segments hold one server; a PMOO segment holds the whole tandem.
type HopRecord struct {
	Index          int
	Servers        []string
	FIFO           bool // effective multiplexing used for the delay bound
	CandidateCount int
	Candidates     []CandidateRecord // nil unless the level is candidates
	Delay          string            // selected per-hop delay bound, if any
	Backlog        string
	DelayValue     float64 // Delay as float64, 0 when Delay is empty
	TotalDelay     string  // running totals after this hop
	TotalBacklog   string
}

// Segment renders the servers of the hop, e.g. "s1" or "s1+s2+s5".
func (h HopRecord) Segment() string {
	return strings.Join(h.Servers, "+")
}

func (h HopRecord) clone() HopRecord {
	h.Servers = slices.Clone(h.Servers)
	h.Candidates = slices.Clone(h.Candidates)
	return h
}
