package nc

import (
	"fmt"
	"io"

	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// PrintReport writes the bounds of results, grouped by flow in the order
// they first appear.
func PrintReport(w io.Writer, net *network.Network, results []Result) {
	fmt.Fprintln(w, "=== Bound Analysis ===")
	fmt.Fprintf(w, "Network              : %d servers, %d flows (%s)\n",
		len(net.Servers()), len(net.Flows()), net.Numbers().Backend())
	if order, err := net.TopologicalOrder(); err == nil {
		fmt.Fprintf(w, "Feed-forward order   : %s\n", network.Path(order))
	}

	var order []*network.Flow
	byFlow := make(map[*network.Flow][]Result)
	for _, r := range results {
		if _, ok := byFlow[r.Flow()]; !ok {
			order = append(order, r.Flow())
		}
		byFlow[r.Flow()] = append(byFlow[r.Flow()], r)
	}

	for _, f := range order {
		fmt.Fprintf(w, "--- %s %s ---\n", f, f.Path())
		for _, r := range byFlow[f] {
			fmt.Fprintf(w, "%-4s delay bound      : %s\n", r.Kind(), renderNum(r.DelayBound()))
			fmt.Fprintf(w, "%-4s backlog bound    : %s\n", r.Kind(), renderNum(r.BacklogBound()))
			summary := trace.Summarize(r.Trace())
			if summary.DominantSegment != "" {
				fmt.Fprintf(w, "     dominant hop     : %s (%.1f%% of delay)\n",
					summary.DominantSegment, 100*summary.DominantShare)
			}
		}
	}
}

// renderNum shows rationals both exactly and as a decimal.
func renderNum(n num.Num) string {
	switch n.Backend() {
	case num.RationalInt, num.RationalBigInt:
		if n.IsFinite() {
			return fmt.Sprintf("%s (%.4f)", n, n.Float64())
		}
	}
	return n.String()
}
