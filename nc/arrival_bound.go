package nc

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
)

// ArrivalBounder computes arrival curves for sets of flows at a server by
// propagating source curves through the left-over service of every
// upstream server. Results are memoized, so a bounder serves one analysis
// call and is not safe for concurrent use.
type ArrivalBounder struct {
	net  *network.Network
	alg  *curve.Algebra
	cfg  AnalysisConfig
	memo map[boundKey]curve.ArrivalCurve
}

type boundKey struct {
	method  ArrivalBoundMethod
	server  int64
	flows   string
	removed int64
}

// NewArrivalBounder returns a bounder over net using the multiplexing
// discipline and arrival bound methods of cfg.
func NewArrivalBounder(net *network.Network, cfg AnalysisConfig) (*ArrivalBounder, error) {
	cfg, err := cfg.bind(net)
	if err != nil {
		return nil, err
	}
	return newArrivalBounder(net, cfg), nil
}

func newArrivalBounder(net *network.Network, cfg AnalysisConfig) *ArrivalBounder {
	return &ArrivalBounder{
		net:  net,
		alg:  curve.NewAlgebra(net.Numbers()),
		cfg:  cfg,
		memo: make(map[boundKey]curve.ArrivalCurve),
	}
}

// Bounds returns one candidate per configured method, each bounding the
// aggregate arrival of every flow at s.
func (b *ArrivalBounder) Bounds(s *network.Server) ([]curve.ArrivalCurve, error) {
	if !b.net.Contains(s) {
		return nil, fmt.Errorf("server %v: %w", s, network.ErrUnknownServer)
	}
	return b.BoundsFor(s, b.net.FlowsAt(s), nil)
}

// BoundsFor returns one candidate per configured method for the aggregate
// of flows at s. When foi is non-nil it is removed from the network first:
// it is dropped from flows and never counted as cross traffic upstream.
func (b *ArrivalBounder) BoundsFor(s *network.Server, flows []*network.Flow, foi *network.Flow) (out []curve.ArrivalCurve, err error) {
	defer num.Recover(&err)

	if !b.net.Contains(s) {
		return nil, fmt.Errorf("server %v: %w", s, network.ErrUnknownServer)
	}
	set := make([]*network.Flow, 0, len(flows))
	for _, f := range flows {
		if !b.net.ContainsFlow(f) {
			return nil, fmt.Errorf("flow %v: %w", f, network.ErrUnknownFlow)
		}
		if !f.Crosses(s) {
			return nil, fmt.Errorf("flow %s at %s: %w", f, s, ErrFlowNotOnPath)
		}
		if f != foi && !slices.Contains(set, f) {
			set = append(set, f)
		}
	}
	slices.SortFunc(set, func(x, y *network.Flow) int { return cmp.Compare(x.ID(), y.ID()) })

	for _, m := range b.cfg.ArrivalBoundMethods {
		out = append(out, b.bound(m, s, set, foi))
	}
	logrus.Debugf("arrival bounds at %s for %d flow(s): %v", s, len(set), out)
	return out, nil
}

// bound requires flows to be sorted by ID, free of foi and duplicates.
func (b *ArrivalBounder) bound(m ArrivalBoundMethod, s *network.Server, flows []*network.Flow, foi *network.Flow) curve.ArrivalCurve {
	if len(flows) == 0 {
		return b.alg.ZeroArrival()
	}
	key := boundKey{method: m, server: s.ID(), flows: flowKey(flows), removed: -1}
	if foi != nil {
		key.removed = foi.ID()
	}
	if c, ok := b.memo[key]; ok {
		return c
	}

	var c curve.ArrivalCurve
	if m == SegregatedArrivalBound {
		c = b.segregated(s, flows, foi)
	} else {
		c = b.aggregate(s, flows, foi)
	}
	b.memo[key] = c
	return c
}

func (b *ArrivalBounder) aggregate(s *network.Server, flows []*network.Flow, foi *network.Flow) curve.ArrivalCurve {
	sum := b.alg.ZeroArrival()
	var preds []*network.Server
	groups := make(map[int64][]*network.Flow)
	for _, f := range flows {
		p, ok := f.Predecessor(s)
		if !ok {
			sum = b.alg.AddArrivals(sum, f.ArrivalCurve())
			continue
		}
		if _, seen := groups[p.ID()]; !seen {
			preds = append(preds, p)
		}
		groups[p.ID()] = append(groups[p.ID()], f)
	}
	for _, p := range preds {
		group := groups[p.ID()]
		in := b.bound(AggregateArrivalBound, p, group, foi)
		sum = b.alg.AddArrivals(sum, b.alg.OutputBound(in, b.leftOver(AggregateArrivalBound, p, group, foi)))
	}
	return sum
}

func (b *ArrivalBounder) segregated(s *network.Server, flows []*network.Flow, foi *network.Flow) curve.ArrivalCurve {
	sum := b.alg.ZeroArrival()
	for _, f := range flows {
		p, ok := f.Predecessor(s)
		if !ok {
			sum = b.alg.AddArrivals(sum, f.ArrivalCurve())
			continue
		}
		single := []*network.Flow{f}
		in := b.bound(SegregatedArrivalBound, p, single, foi)
		sum = b.alg.AddArrivals(sum, b.alg.OutputBound(in, b.leftOver(SegregatedArrivalBound, p, single, foi)))
	}
	return sum
}

// leftOver is the service p leaves to group once every other flow at p,
// except foi, is bounded with method m.
func (b *ArrivalBounder) leftOver(m ArrivalBoundMethod, p *network.Server, group []*network.Flow, foi *network.Flow) curve.ServiceCurve {
	beta := p.ServiceCurve()
	cross := b.crossFlows(p, group, foi)
	if len(cross) == 0 {
		return beta
	}
	x := b.bound(m, p, cross, foi)
	if b.cfg.fifoAt(b.net, p) {
		return b.alg.LeftOverFIFO(beta, x)
	}
	return b.alg.LeftOverArbitrary(beta, x)
}

// crossFlows lists the flows at s outside group and other than foi, by ID.
func (b *ArrivalBounder) crossFlows(s *network.Server, group []*network.Flow, foi *network.Flow) []*network.Flow {
	var cross []*network.Flow
	for _, f := range b.net.FlowsAt(s) {
		if f != foi && !slices.Contains(group, f) {
			cross = append(cross, f)
		}
	}
	return cross
}

func flowKey(flows []*network.Flow) string {
	ids := make([]string, len(flows))
	for i, f := range flows {
		ids[i] = strconv.FormatInt(f.ID(), 10)
	}
	return strings.Join(ids, ",")
}
