package nc

import (
	"slices"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// SeparateFlowAnalysis bounds a flow through the convolution of the
// left-over service curves it receives at each server of its path.
type SeparateFlowAnalysis struct {
	net *network.Network
	alg *curve.Algebra
	cfg AnalysisConfig
}

// NewSeparateFlowAnalysis validates cfg against net.
func NewSeparateFlowAnalysis(net *network.Network, cfg AnalysisConfig) (*SeparateFlowAnalysis, error) {
	cfg, err := cfg.bind(net)
	if err != nil {
		return nil, err
	}
	return &SeparateFlowAnalysis{net: net, alg: curve.NewAlgebra(net.Numbers()), cfg: cfg}, nil
}

func (a *SeparateFlowAnalysis) Kind() Kind { return KindSFA }

// Run implements Analyzer.
func (a *SeparateFlowAnalysis) Run(flow *network.Flow) (Result, error) {
	r, err := a.Analyze(flow)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Analyze bounds flow along its own path.
func (a *SeparateFlowAnalysis) Analyze(flow *network.Flow) (*SFAResult, error) {
	if !a.net.ContainsFlow(flow) {
		return nil, targetError(KindSFA, flow, a.cfg, network.ErrUnknownFlow)
	}
	return a.AnalyzePath(flow, flow.Path())
}

// AnalyzePath bounds flow across path, every server of which flow must cross.
func (a *SeparateFlowAnalysis) AnalyzePath(flow *network.Flow, path network.Path) (*SFAResult, error) {
	if err := checkTarget(KindSFA, a.net, flow, path, a.cfg, true); err != nil {
		return nil, err
	}

	tr := trace.New(string(KindSFA), flow.Alias(), a.cfg.Trace)
	bounder := newArrivalBounder(a.net, a.cfg)
	entry, err := entryArrivals(bounder, flow, path)
	if err != nil {
		return nil, &AnalysisError{Kind: KindSFA, Flow: flow.Alias(), Server: path[0].Alias(), Partial: tr.Snapshot(), Err: err}
	}

	st := &sfaStrategy{net: a.net, alg: a.alg, cfg: a.cfg, bounder: bounder, foi: flow}
	init := sfaAccumulator{e2e: []curve.ServiceCurve{a.alg.ConvolutionIdentity()}}
	acc, err := traverse[sfaAccumulator](st, flow, path, init, tr)
	if err != nil {
		return nil, err
	}

	var delays, backlogs []num.Num
	for _, alpha := range entry {
		for _, beta := range acc.e2e {
			delays = append(delays, a.alg.DelayBoundFIFO(alpha, beta))
			backlogs = append(backlogs, a.alg.BacklogBound(alpha, beta))
		}
	}
	return &SFAResult{
		flow:     flow,
		path:     slices.Clone(path),
		delay:    selectMin(delays),
		backlog:  selectMin(backlogs),
		e2e:      acc.e2e,
		hops:     acc.hops,
		arrivals: entry,
		trace:    tr,
	}, nil
}

type sfaHop struct {
	server    *network.Server
	fifo      bool
	leftOvers []curve.ServiceCurve
}

type sfaAccumulator struct {
	e2e  []curve.ServiceCurve
	hops []sfaHop
}

type sfaStrategy struct {
	net     *network.Network
	alg     *curve.Algebra
	cfg     AnalysisConfig
	bounder *ArrivalBounder
	foi     *network.Flow
}

func (st *sfaStrategy) kind() Kind { return KindSFA }

func (st *sfaStrategy) segments(path network.Path) []network.Path { return singleServers(path) }

func (st *sfaStrategy) step(acc sfaAccumulator, seg network.Path, rec *trace.HopRecord) (sfaAccumulator, error) {
	s := seg[0]
	beta := s.ServiceCurve()
	fifo := st.cfg.fifoAt(st.net, s)
	hop := sfaHop{server: s, fifo: fifo}

	cross := crossAt(st.net, s, st.foi)
	if len(cross) == 0 {
		hop.leftOvers = []curve.ServiceCurve{beta}
	} else {
		bounds, err := st.bounder.BoundsFor(s, cross, st.foi)
		if err != nil {
			return acc, err
		}
		for _, x := range bounds {
			if fifo {
				hop.leftOvers = appendUnique(hop.leftOvers, st.alg.LeftOverFIFO(beta, x))
			} else {
				hop.leftOvers = appendUnique(hop.leftOvers, st.alg.LeftOverArbitrary(beta, x))
			}
		}
	}

	var e2e []curve.ServiceCurve
	for _, prev := range acc.e2e {
		for _, lo := range hop.leftOvers {
			e2e = appendUnique(e2e, st.alg.Convolve(prev, lo))
		}
	}
	next := sfaAccumulator{e2e: e2e, hops: append(slices.Clip(acc.hops), hop)}

	rec.FIFO = fifo
	rec.CandidateCount = len(hop.leftOvers)
	if st.cfg.Trace.Candidates() {
		for _, lo := range hop.leftOvers {
			rec.Candidates = append(rec.Candidates, trace.CandidateRecord{Curve: lo.String()})
		}
	}
	return next, nil
}

// crossAt lists the flows at s other than foi.
func crossAt(net *network.Network, s *network.Server, foi *network.Flow) []*network.Flow {
	var cross []*network.Flow
	for _, f := range net.FlowsAt(s) {
		if f != foi {
			cross = append(cross, f)
		}
	}
	return cross
}

// entryArrivals bounds flow where path begins: its own arrival curve at its
// source, otherwise the candidates of the arrival bounder.
func entryArrivals(b *ArrivalBounder, flow *network.Flow, path network.Path) ([]curve.ArrivalCurve, error) {
	if path[0] == flow.Source() {
		return []curve.ArrivalCurve{flow.ArrivalCurve()}, nil
	}
	return b.BoundsFor(path[0], []*network.Flow{flow}, nil)
}

func appendUnique(curves []curve.ServiceCurve, c curve.ServiceCurve) []curve.ServiceCurve {
	for _, x := range curves {
		if x.Eq(c) {
			return curves
		}
	}
	return append(curves, c)
}
