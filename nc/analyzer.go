package nc

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/trace"
)

// Kind names an analysis.
type Kind string

const (
	KindTFA  Kind = "tfa"
	KindSFA  Kind = "sfa"
	KindPMOO Kind = "pmoo"
)

// ValidAnalyses maps accepted analysis names.
var ValidAnalyses = map[Kind]bool{
	KindTFA:  true,
	KindSFA:  true,
	KindPMOO: true,
}

// IsValidAnalysis returns true if name is a recognized analysis.
func IsValidAnalysis(name string) bool {
	return ValidAnalyses[Kind(name)]
}

// Analyzer runs one kind of analysis over a fixed network and config.
// Run only reads the network, so one Analyzer may serve several
// goroutines as long as nobody modifies the network meanwhile.
type Analyzer interface {
	Kind() Kind
	Run(flow *network.Flow) (Result, error)
}

// NewAnalyzer creates the analysis named by kind.
func NewAnalyzer(kind Kind, net *network.Network, cfg AnalysisConfig) (Analyzer, error) {
	var (
		a   Analyzer
		err error
	)
	switch kind {
	case KindTFA:
		a, err = NewTotalFlowAnalysis(net, cfg)
	case KindSFA:
		a, err = NewSeparateFlowAnalysis(net, cfg)
	case KindPMOO:
		a, err = NewPayMultiplexingOnlyOnce(net, cfg)
	default:
		return nil, fmt.Errorf("%w %q; valid: tfa, sfa, pmoo", ErrUnknownAnalysis, kind)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AnalyzeFlows runs a over every flow in parallel and returns the results
// in flow order. The first failure stops flows not yet started and is
// returned.
func AnalyzeFlows(ctx context.Context, a Analyzer, flows []*network.Flow) ([]Result, error) {
	results := make([]Result, len(flows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range flows {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := a.Run(f)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkTarget validates flow and path before any traversal. When
// mustCross is set every server of path must be on flow's path.
func checkTarget(kind Kind, net *network.Network, flow *network.Flow, path network.Path, cfg AnalysisConfig, mustCross bool) error {
	if !net.ContainsFlow(flow) {
		return targetError(kind, flow, cfg, network.ErrUnknownFlow)
	}
	if err := net.ValidatePath(path); err != nil {
		return targetError(kind, flow, cfg, err)
	}
	if mustCross {
		for _, s := range path {
			if !flow.Crosses(s) {
				return targetError(kind, flow, cfg, fmt.Errorf("%w: %s does not cross %s", ErrFlowNotOnPath, flow, s))
			}
		}
	}
	return nil
}

func targetError(kind Kind, flow *network.Flow, cfg AnalysisConfig, err error) *AnalysisError {
	alias := fmt.Sprint(flow)
	return &AnalysisError{
		Kind:    kind,
		Flow:    alias,
		Partial: trace.New(string(kind), alias, cfg.Trace),
		Err:     err,
	}
}
