package trace

import "math"

// TraceSummary aggregates statistics from a Trace.
type TraceSummary struct {
	Hops            int
	Complete        bool
	TotalCandidates int
	DominantSegment string             // segment with the largest per-hop delay
	DominantShare   float64            // its fraction of the summed per-hop delay
	DelayShare      map[string]float64 // segment → fraction of the summed per-hop delay
}

// Summarize computes aggregate statistics from a Trace.
// Safe for nil or empty traces (returns zero-value fields). Delay shares
// are only filled when every hop carries a finite per-hop delay.
func Summarize(t *Trace) *TraceSummary {
	summary := &TraceSummary{
		DelayShare: make(map[string]float64),
	}
	if t == nil {
		return summary
	}

	summary.Hops = len(t.Hops)
	summary.Complete = t.Complete
	total := 0.0
	finite := true
	for _, h := range t.Hops {
		summary.TotalCandidates += h.CandidateCount
		if h.Delay == "" || math.IsInf(h.DelayValue, 0) || math.IsNaN(h.DelayValue) {
			finite = false
		}
		total += h.DelayValue
	}
	if !finite || total <= 0 {
		return summary
	}

	for _, h := range t.Hops {
		share := h.DelayValue / total
		summary.DelayShare[h.Segment()] += share
		if share > summary.DominantShare {
			summary.DominantShare = share
			summary.DominantSegment = h.Segment()
		}
	}
	return summary
}
