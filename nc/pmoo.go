package nc

import (
	"slices"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// PayMultiplexingOnlyOnce bounds a flow through one left-over service curve
// for the whole tandem it crosses, so the burst of every cross flow is paid
// once rather than at every shared server. The tandem is analyzed without
// any ordering assumption.
type PayMultiplexingOnlyOnce struct {
	net *network.Network
	alg *curve.Algebra
	cfg AnalysisConfig
}

// NewPayMultiplexingOnlyOnce validates cfg against net.
func NewPayMultiplexingOnlyOnce(net *network.Network, cfg AnalysisConfig) (*PayMultiplexingOnlyOnce, error) {
	cfg, err := cfg.bind(net)
	if err != nil {
		return nil, err
	}
	return &PayMultiplexingOnlyOnce{net: net, alg: curve.NewAlgebra(net.Numbers()), cfg: cfg}, nil
}

func (a *PayMultiplexingOnlyOnce) Kind() Kind { return KindPMOO }

// Run implements Analyzer.
func (a *PayMultiplexingOnlyOnce) Run(flow *network.Flow) (Result, error) {
	r, err := a.Analyze(flow)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Analyze bounds flow along its own path.
func (a *PayMultiplexingOnlyOnce) Analyze(flow *network.Flow) (*PMOOResult, error) {
	if !a.net.ContainsFlow(flow) {
		return nil, targetError(KindPMOO, flow, a.cfg, network.ErrUnknownFlow)
	}
	return a.AnalyzePath(flow, flow.Path())
}

// AnalyzePath bounds flow across path, every server of which flow must cross.
func (a *PayMultiplexingOnlyOnce) AnalyzePath(flow *network.Flow, path network.Path) (*PMOOResult, error) {
	if err := checkTarget(KindPMOO, a.net, flow, path, a.cfg, true); err != nil {
		return nil, err
	}

	tr := trace.New(string(KindPMOO), flow.Alias(), a.cfg.Trace)
	bounder := newArrivalBounder(a.net, a.cfg)
	entry, err := entryArrivals(bounder, flow, path)
	if err != nil {
		return nil, &AnalysisError{Kind: KindPMOO, Flow: flow.Alias(), Server: path[0].Alias(), Partial: tr.Snapshot(), Err: err}
	}

	st := &pmooStrategy{net: a.net, alg: a.alg, cfg: a.cfg, bounder: bounder, foi: flow}
	acc, err := traverse[pmooAccumulator](st, flow, path, pmooAccumulator{}, tr)
	if err != nil {
		return nil, err
	}

	var delays, backlogs []num.Num
	for _, alpha := range entry {
		for _, beta := range acc.leftOvers {
			delays = append(delays, a.alg.DelayBoundFIFO(alpha, beta))
			backlogs = append(backlogs, a.alg.BacklogBound(alpha, beta))
		}
	}
	return &PMOOResult{
		flow:      flow,
		path:      slices.Clone(path),
		delay:     selectMin(delays),
		backlog:   selectMin(backlogs),
		leftOvers: acc.leftOvers,
		cross:     acc.cross,
		arrivals:  entry,
		trace:     tr,
	}, nil
}

// CrossGroup is a set of cross flows that share the same contiguous stretch
// [First, Last] of the analyzed tandem, given as path indexes.
type CrossGroup struct {
	First, Last int
	Flows       []*network.Flow
	Arrivals    []curve.ArrivalCurve // one candidate per arrival bound method, at First
}

type pmooAccumulator struct {
	leftOvers []curve.ServiceCurve
	cross     []CrossGroup
}

type pmooStrategy struct {
	net     *network.Network
	alg     *curve.Algebra
	cfg     AnalysisConfig
	bounder *ArrivalBounder
	foi     *network.Flow
}

func (st *pmooStrategy) kind() Kind { return KindPMOO }

func (st *pmooStrategy) segments(path network.Path) []network.Path { return wholePath(path) }

func (st *pmooStrategy) step(acc pmooAccumulator, tandem network.Path, rec *trace.HopRecord) (pmooAccumulator, error) {
	groups := st.crossGroups(tandem)
	for i := range groups {
		g := &groups[i]
		bounds, err := st.bounder.BoundsFor(tandem[g.First], g.Flows, st.foi)
		if err != nil {
			return acc, err
		}
		g.Arrivals = bounds
	}

	var leftOvers []curve.ServiceCurve
	choice := make([]int, len(groups))
	for {
		leftOvers = appendUnique(leftOvers, st.leftOver(tandem, groups, choice))
		if !nextChoice(choice, groups) {
			break
		}
	}
	next := pmooAccumulator{
		leftOvers: append(slices.Clip(acc.leftOvers), leftOvers...),
		cross:     append(slices.Clip(acc.cross), groups...),
	}

	rec.CandidateCount = len(leftOvers)
	if st.cfg.Trace.Candidates() {
		for _, lo := range leftOvers {
			rec.Candidates = append(rec.Candidates, trace.CandidateRecord{Curve: lo.String()})
		}
	}
	return next, nil
}

// crossGroups splits every cross flow into the maximal stretches it shares
// with the tandem and groups flows by stretch. A flow that leaves and
// re-enters the tandem contributes one stretch per visit.
func (st *pmooStrategy) crossGroups(tandem network.Path) []CrossGroup {
	var flows []*network.Flow
	for _, s := range tandem {
		for _, f := range st.net.FlowsAt(s) {
			if f != st.foi && !slices.Contains(flows, f) {
				flows = append(flows, f)
			}
		}
	}

	var groups []CrossGroup
	add := func(first, last int, f *network.Flow) {
		for i := range groups {
			if groups[i].First == first && groups[i].Last == last {
				groups[i].Flows = append(groups[i].Flows, f)
				return
			}
		}
		groups = append(groups, CrossGroup{First: first, Last: last, Flows: []*network.Flow{f}})
	}
	for _, f := range flows {
		first := -1
		for i, s := range tandem {
			if !f.Crosses(s) {
				if first >= 0 {
					add(first, i-1, f)
					first = -1
				}
				continue
			}
			if first >= 0 {
				if pred, _ := f.Predecessor(s); pred != tandem[i-1] {
					add(first, i-1, f)
					first = i
				}
				continue
			}
			first = i
		}
		if first >= 0 {
			add(first, len(tandem)-1, f)
		}
	}
	return groups
}

// leftOver is the PMOO curve for one choice of arrival candidate per group:
// rate min_i(R_i - Σ r_g over groups at i), latency
// Σ T_i + Σ_g (b_g + r_g·Σ_{i∈g} T_i) / rate.
func (st *pmooStrategy) leftOver(tandem network.Path, groups []CrossGroup, choice []int) curve.ServiceCurve {
	nums := st.alg.Numbers()
	rate := nums.PositiveInfinity()
	latency := nums.Zero()
	for i, s := range tandem {
		beta := s.ServiceCurve()
		residual := beta.Rate
		for j, g := range groups {
			if g.First <= i && i <= g.Last {
				residual = residual.Sub(g.Arrivals[choice[j]].Rate)
			}
		}
		rate = num.Min(rate, residual)
		latency = latency.Add(beta.Latency)
	}
	if rate.Sign() <= 0 {
		return st.alg.NoService()
	}

	for j, g := range groups {
		alpha := g.Arrivals[choice[j]]
		stretch := nums.Zero()
		for i := g.First; i <= g.Last; i++ {
			stretch = stretch.Add(tandem[i].ServiceCurve().Latency)
		}
		latency = latency.Add(alpha.Burst.Add(st.alg.RateTimes(alpha.Rate, stretch)).Div(rate))
	}
	return st.alg.RateLatency(rate, latency)
}

// nextChoice advances choice like an odometer over the candidates of each
// group. It returns false once every combination was visited.
func nextChoice(choice []int, groups []CrossGroup) bool {
	for j := range choice {
		choice[j]++
		if choice[j] < len(groups[j].Arrivals) {
			return true
		}
		choice[j] = 0
	}
	return false
}
