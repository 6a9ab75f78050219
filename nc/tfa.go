package nc

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

// TotalFlowAnalysis bounds a flow by analyzing, at every server of a path,
// the aggregate of all flows there. The flow's end-to-end delay bound is
// the sum of the per-server delay bounds; its backlog bound is the largest
// per-server backlog bound.
type TotalFlowAnalysis struct {
	net *network.Network
	alg *curve.Algebra
	cfg AnalysisConfig
}

// NewTotalFlowAnalysis validates cfg against net.
func NewTotalFlowAnalysis(net *network.Network, cfg AnalysisConfig) (*TotalFlowAnalysis, error) {
	cfg, err := cfg.bind(net)
	if err != nil {
		return nil, err
	}
	return &TotalFlowAnalysis{net: net, alg: curve.NewAlgebra(net.Numbers()), cfg: cfg}, nil
}

func (t *TotalFlowAnalysis) Kind() Kind { return KindTFA }

// Run implements Analyzer.
func (t *TotalFlowAnalysis) Run(flow *network.Flow) (Result, error) {
	r, err := t.Analyze(flow)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Analyze bounds flow along its own path.
func (t *TotalFlowAnalysis) Analyze(flow *network.Flow) (*TFAResult, error) {
	if !t.net.ContainsFlow(flow) {
		return nil, targetError(KindTFA, flow, t.cfg, network.ErrUnknownFlow)
	}
	return t.AnalyzePath(flow, flow.Path())
}

// AnalyzePath bounds the servers of path, which must follow turns of the
// network but need not be crossed by flow. Analyzing the path [sink] of a
// flow bounds the traffic at its sink.
func (t *TotalFlowAnalysis) AnalyzePath(flow *network.Flow, path network.Path) (*TFAResult, error) {
	if err := checkTarget(KindTFA, t.net, flow, path, t.cfg, false); err != nil {
		return nil, err
	}

	tr := trace.New(string(KindTFA), flow.Alias(), t.cfg.Trace)
	st := &tfaStrategy{net: t.net, alg: t.alg, cfg: t.cfg, bounder: newArrivalBounder(t.net, t.cfg)}
	zero := t.net.Numbers().Zero()
	acc, err := traverse[tfaAccumulator](st, flow, path, tfaAccumulator{delay: zero, backlog: zero}, tr)
	if err != nil {
		return nil, err
	}
	return &TFAResult{
		flow:    flow,
		path:    slices.Clone(path),
		delay:   acc.delay,
		backlog: acc.backlog,
		hops:    acc.hops,
		trace:   tr,
	}, nil
}

type tfaHop struct {
	server   *network.Server
	fifo     bool
	arrivals []curve.ArrivalCurve
	delays   []num.Num
	backlogs []num.Num
}

type tfaAccumulator struct {
	delay   num.Num
	backlog num.Num
	hops    []tfaHop
}

type tfaStrategy struct {
	net     *network.Network
	alg     *curve.Algebra
	cfg     AnalysisConfig
	bounder *ArrivalBounder
}

func (st *tfaStrategy) kind() Kind { return KindTFA }

func (st *tfaStrategy) segments(path network.Path) []network.Path { return singleServers(path) }

func (st *tfaStrategy) step(acc tfaAccumulator, seg network.Path, rec *trace.HopRecord) (tfaAccumulator, error) {
	s := seg[0]
	arrivals, err := st.bounder.Bounds(s)
	if err != nil {
		return acc, err
	}

	beta := s.ServiceCurve()
	fifo := st.cfg.fifoAt(st.net, s)
	hop := tfaHop{
		server:   s,
		fifo:     fifo,
		arrivals: arrivals,
		delays:   make([]num.Num, len(arrivals)),
		backlogs: make([]num.Num, len(arrivals)),
	}
	for i, alpha := range arrivals {
		if alpha.Defined() && !st.alg.Stable(alpha, beta) {
			logrus.Warnf("server %s is not stable: arrivals %v exceed service %v", s, alpha, beta)
		}
		hop.backlogs[i] = st.alg.BacklogBound(alpha, beta)
		if fifo {
			hop.delays[i] = st.alg.DelayBoundFIFO(alpha, beta)
		} else {
			hop.delays[i] = st.alg.DelayBoundArbitrary(alpha, beta)
		}
	}

	delay := selectMin(hop.delays)
	backlog := selectMin(hop.backlogs)
	next := tfaAccumulator{
		delay:   acc.delay.Add(delay),
		backlog: num.Max(acc.backlog, backlog),
		hops:    append(slices.Clip(acc.hops), hop),
	}

	rec.FIFO = fifo
	rec.CandidateCount = len(arrivals)
	if st.cfg.Trace.Candidates() {
		for i, alpha := range arrivals {
			rec.Candidates = append(rec.Candidates, trace.CandidateRecord{
				Curve:   alpha.String(),
				Delay:   hop.delays[i].String(),
				Backlog: hop.backlogs[i].String(),
			})
		}
	}
	rec.Delay = delay.String()
	rec.DelayValue = delay.Float64()
	rec.Backlog = backlog.String()
	rec.TotalDelay = next.delay.String()
	rec.TotalBacklog = next.backlog.String()
	return next, nil
}
