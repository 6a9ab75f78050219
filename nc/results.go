package nc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// Result is what every analysis reports. Results exist only for analyses
// that completed and are never modified after they are returned.
type Result interface {
	Kind() Kind
	Flow() *network.Flow
	Path() network.Path
	DelayBound() num.Num
	BacklogBound() num.Num
	Trace() *trace.Trace
}

// TFAResult holds the bounds of a Total Flow Analysis and, per server, every
// candidate it evaluated.
type TFAResult struct {
	flow    *network.Flow
	path    network.Path
	delay   num.Num
	backlog num.Num
	hops    []tfaHop
	trace   *trace.Trace
}

func (r *TFAResult) Kind() Kind            { return KindTFA }
func (r *TFAResult) Flow() *network.Flow   { return r.flow }
func (r *TFAResult) Path() network.Path    { return slices.Clone(r.path) }
func (r *TFAResult) DelayBound() num.Num   { return r.delay }
func (r *TFAResult) BacklogBound() num.Num { return r.backlog }
func (r *TFAResult) Trace() *trace.Trace   { return r.trace }

// ServerDelayBounds maps every analyzed server to its delay candidates.
func (r *TFAResult) ServerDelayBounds() map[*network.Server][]num.Num {
	out := make(map[*network.Server][]num.Num, len(r.hops))
	for _, h := range r.hops {
		out[h.server] = slices.Clone(h.delays)
	}
	return out
}

// ServerBacklogBounds maps every analyzed server to its backlog candidates.
func (r *TFAResult) ServerBacklogBounds() map[*network.Server][]num.Num {
	out := make(map[*network.Server][]num.Num, len(r.hops))
	for _, h := range r.hops {
		out[h.server] = slices.Clone(h.backlogs)
	}
	return out
}

// ServerArrivalCurves maps every analyzed server to its arrival candidates.
func (r *TFAResult) ServerArrivalCurves() map[*network.Server][]curve.ArrivalCurve {
	out := make(map[*network.Server][]curve.ArrivalCurve, len(r.hops))
	for _, h := range r.hops {
		out[h.server] = slices.Clone(h.arrivals)
	}
	return out
}

// ServerFIFO reports, per analyzed server, whether its delay was bounded
// under the FIFO assumption.
func (r *TFAResult) ServerFIFO() map[*network.Server]bool {
	out := make(map[*network.Server]bool, len(r.hops))
	for _, h := range r.hops {
		out[h.server] = h.fifo
	}
	return out
}

// ServerDelayBoundsString renders ServerDelayBounds in path order,
// e.g. "{s1={55/2}, s2={75/2}}".
func (r *TFAResult) ServerDelayBoundsString() string {
	return formatPerServer(r.hops, func(h tfaHop) []num.Num { return h.delays })
}

// ServerBacklogBoundsString renders ServerBacklogBounds in path order.
func (r *TFAResult) ServerBacklogBoundsString() string {
	return formatPerServer(r.hops, func(h tfaHop) []num.Num { return h.backlogs })
}

func (r *TFAResult) String() string {
	return fmt.Sprintf("TFA %s over %s: delay %s, backlog %s", r.flow, r.path, r.delay, r.backlog)
}

// SFAResult holds the bounds of a Separate Flow Analysis, the left-over
// curves per server and their end-to-end convolutions.
type SFAResult struct {
	flow     *network.Flow
	path     network.Path
	delay    num.Num
	backlog  num.Num
	e2e      []curve.ServiceCurve
	hops     []sfaHop
	arrivals []curve.ArrivalCurve
	trace    *trace.Trace
}

func (r *SFAResult) Kind() Kind            { return KindSFA }
func (r *SFAResult) Flow() *network.Flow   { return r.flow }
func (r *SFAResult) Path() network.Path    { return slices.Clone(r.path) }
func (r *SFAResult) DelayBound() num.Num   { return r.delay }
func (r *SFAResult) BacklogBound() num.Num { return r.backlog }
func (r *SFAResult) Trace() *trace.Trace   { return r.trace }

// EndToEndServiceCurves returns the candidate service curves of the path.
func (r *SFAResult) EndToEndServiceCurves() []curve.ServiceCurve { return slices.Clone(r.e2e) }

// EntryArrivalCurves returns the candidate arrival curves of the flow where
// the path begins.
func (r *SFAResult) EntryArrivalCurves() []curve.ArrivalCurve { return slices.Clone(r.arrivals) }

// ServerLeftOverCurves maps every analyzed server to the left-over service
// curves the flow receives there.
func (r *SFAResult) ServerLeftOverCurves() map[*network.Server][]curve.ServiceCurve {
	out := make(map[*network.Server][]curve.ServiceCurve, len(r.hops))
	for _, h := range r.hops {
		out[h.server] = slices.Clone(h.leftOvers)
	}
	return out
}

func (r *SFAResult) String() string {
	return fmt.Sprintf("SFA %s over %s: delay %s, backlog %s", r.flow, r.path, r.delay, r.backlog)
}

// PMOOResult holds the bounds of a PMOO analysis and the tandem left-over
// curves they were derived from.
type PMOOResult struct {
	flow      *network.Flow
	path      network.Path
	delay     num.Num
	backlog   num.Num
	leftOvers []curve.ServiceCurve
	cross     []CrossGroup
	arrivals  []curve.ArrivalCurve
	trace     *trace.Trace
}

func (r *PMOOResult) Kind() Kind            { return KindPMOO }
func (r *PMOOResult) Flow() *network.Flow   { return r.flow }
func (r *PMOOResult) Path() network.Path    { return slices.Clone(r.path) }
func (r *PMOOResult) DelayBound() num.Num   { return r.delay }
func (r *PMOOResult) BacklogBound() num.Num { return r.backlog }
func (r *PMOOResult) Trace() *trace.Trace   { return r.trace }

// LeftOverServiceCurves returns one tandem left-over curve per combination
// of cross-traffic arrival candidates.
func (r *PMOOResult) LeftOverServiceCurves() []curve.ServiceCurve { return slices.Clone(r.leftOvers) }

// CrossGroups returns the cross traffic of the tandem grouped by stretch.
func (r *PMOOResult) CrossGroups() []CrossGroup {
	out := make([]CrossGroup, len(r.cross))
	for i, g := range r.cross {
		g.Flows = slices.Clone(g.Flows)
		g.Arrivals = slices.Clone(g.Arrivals)
		out[i] = g
	}
	return out
}

// EntryArrivalCurves returns the candidate arrival curves of the flow where
// the path begins.
func (r *PMOOResult) EntryArrivalCurves() []curve.ArrivalCurve { return slices.Clone(r.arrivals) }

func (r *PMOOResult) String() string {
	return fmt.Sprintf("PMOO %s over %s: delay %s, backlog %s", r.flow, r.path, r.delay, r.backlog)
}

func formatPerServer(hops []tfaHop, values func(tfaHop) []num.Num) string {
	parts := make([]string, len(hops))
	for i, h := range hops {
		vs := values(h)
		rendered := make([]string, len(vs))
		for j, v := range vs {
			rendered[j] = v.String()
		}
		parts[i] = fmt.Sprintf("%s={%s}", h.server.Alias(), strings.Join(rendered, ", "))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
