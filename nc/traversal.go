package nc

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// strategy is what distinguishes one analysis from another. The traversal
// owns ordering, failure handling and tracing; a strategy only splits the
// path and folds each segment into its accumulator.
type strategy[A any] interface {
	kind() Kind
	// segments splits the analyzed path into the units derived one by one.
	segments(path network.Path) []network.Path
	// step derives seg and returns the next accumulator. It fills rec with
	// what it selected. acc must not be modified in place.
	step(acc A, seg network.Path, rec *trace.HopRecord) (A, error)
}

// traverse folds the segments of path into init. On failure it returns an
// *AnalysisError whose partial trace holds the hops completed so far.
func traverse[A any](st strategy[A], flow *network.Flow, path network.Path, init A, tr *trace.Trace) (A, error) {
	acc := init
	for i, seg := range st.segments(path) {
		rec := trace.HopRecord{Index: i, Servers: aliases(seg)}
		next, err := safeStep(st, acc, seg, &rec)
		if err != nil {
			var zero A
			return zero, &AnalysisError{
				Kind:    st.kind(),
				Flow:    flow.Alias(),
				Server:  seg[0].Alias(),
				Partial: tr.Snapshot(),
				Err:     err,
			}
		}
		acc = next
		tr.RecordHop(rec)
		logrus.Debugf("%s %s hop %d %s: delay %s backlog %s (total %s, %s)",
			st.kind(), flow, i, rec.Segment(), rec.Delay, rec.Backlog, rec.TotalDelay, rec.TotalBacklog)
	}
	tr.Finish()
	return acc, nil
}

// safeStep turns arithmetic panics of the numeric backend into errors.
func safeStep[A any](st strategy[A], acc A, seg network.Path, rec *trace.HopRecord) (next A, err error) {
	defer num.Recover(&err)
	return st.step(acc, seg, rec)
}

// singleServers is the segmentation of TFA and SFA.
func singleServers(path network.Path) []network.Path {
	segs := make([]network.Path, len(path))
	for i, s := range path {
		segs[i] = network.Path{s}
	}
	return segs
}

// wholePath is the segmentation of PMOO.
func wholePath(path network.Path) []network.Path {
	return []network.Path{path}
}

// selectMin returns the smallest determinate candidate. Later candidates
// win ties. NaN is returned only when every candidate is NaN.
func selectMin(candidates []num.Num) num.Num {
	best := num.NaN()
	for _, c := range candidates {
		if c.IsNaN() {
			continue
		}
		if best.IsNaN() || c.Leq(best) {
			best = c
		}
	}
	return best
}

func aliases(p network.Path) []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Alias()
	}
	return out
}
