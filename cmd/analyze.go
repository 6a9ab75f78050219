package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inference-sim/netcalc/nc"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
	"github.com/inference-sim/netcalc/nc/trace"
)

const allAnalyses = "all"

// analyzeSettings is the merged view of flags, NETCALC_* variables and the
// optional config file.
type analyzeSettings struct {
	Network  string
	Flows    []string
	Analyses []nc.Kind
	Config   nc.AnalysisConfig
	Numbers  num.Backend
}

func newAnalyzeCmd() *cobra.Command {
	v := viper.New()
	c := &cobra.Command{
		Use:   "analyze",
		Short: "Bound the delay and backlog of flows in a network description",
		Long: "Loads a YAML network description and runs TFA, SFA or PMOO on the selected flows. " +
			"Every flag may also be set through a NETCALC_<FLAG> variable or a --config YAML file; flags win.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), s)
		},
	}

	flags := c.Flags()
	flags.String("config", "", "YAML file providing defaults for any flag of this command")
	flags.String("network", "", "Network description file (YAML)")
	flags.StringSlice("flow", nil, "Flow alias to analyze; repeatable (default all flows)")
	flags.String("analysis", allAnalyses, "Analysis to run: tfa, sfa, pmoo or all")
	flags.String("mux", string(nc.GlobalArbitrary), "Multiplexing discipline: global-fifo, global-arbitrary, server-local")
	flags.String("num", string(num.DefaultBackend), "Numeric backend: real-double, real-single, rational-int, rational-bigint")
	flags.StringSlice("ab-methods", []string{string(nc.AggregateArrivalBound)}, "Arrival bound methods: aggregate, segregated")
	flags.String("trace", string(trace.TraceLevelHops), "Trace detail: hops or candidates")

	if err := v.BindPFlags(flags); err != nil {
		logrus.Fatalf("binding analyze flags: %v", err)
	}
	v.SetEnvPrefix("NETCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return c
}

// loadSettings reads the config file, if any, and validates every value.
func loadSettings(v *viper.Viper) (analyzeSettings, error) {
	var s analyzeSettings
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return s, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	s.Network = v.GetString("network")
	if s.Network == "" {
		return s, errors.New("no network description given; use --network")
	}
	s.Flows = v.GetStringSlice("flow")

	switch name := v.GetString("analysis"); {
	case name == allAnalyses:
		s.Analyses = []nc.Kind{nc.KindTFA, nc.KindSFA, nc.KindPMOO}
	case nc.IsValidAnalysis(name):
		s.Analyses = []nc.Kind{nc.Kind(name)}
	default:
		return s, fmt.Errorf("unknown analysis %q; valid: tfa, sfa, pmoo, all", name)
	}

	backend := v.GetString("num")
	if !num.IsValidBackend(backend) {
		return s, fmt.Errorf("unknown numeric backend %q", backend)
	}
	s.Numbers = num.Backend(backend)

	s.Config = nc.AnalysisConfig{
		Mux:     nc.MuxDiscipline(v.GetString("mux")),
		Backend: s.Numbers,
		Trace:   trace.TraceConfig{Level: trace.TraceLevel(v.GetString("trace"))},
	}
	for _, m := range v.GetStringSlice("ab-methods") {
		s.Config.ArrivalBoundMethods = append(s.Config.ArrivalBoundMethods, nc.ArrivalBoundMethod(strings.TrimSpace(m)))
	}
	if err := s.Config.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// runAnalyze builds the network and writes the report of every requested
// analysis to w.
func runAnalyze(ctx context.Context, w io.Writer, s analyzeSettings) error {
	spec, err := network.LoadSpec(s.Network)
	if err != nil {
		return err
	}
	f, err := num.NewFactory(s.Numbers)
	if err != nil {
		return err
	}
	net, err := spec.Build(f)
	if err != nil {
		return err
	}

	flows, err := selectFlows(net, s.Flows)
	if err != nil {
		return err
	}
	logrus.Infof("Analyzing %d flows of %s with %s numbers", len(flows), s.Network, f.Backend())

	var results []nc.Result
	for _, kind := range s.Analyses {
		a, err := nc.NewAnalyzer(kind, net, s.Config)
		if err != nil {
			return err
		}
		rs, err := nc.AnalyzeFlows(ctx, a, flows)
		if err != nil {
			logPartial(err)
			return err
		}
		logrus.Infof("%s analysis complete.", kind)
		results = append(results, rs...)
	}
	nc.PrintReport(w, net, results)
	return nil
}

func selectFlows(net *network.Network, aliases []string) ([]*network.Flow, error) {
	if len(aliases) == 0 {
		return net.Flows(), nil
	}
	flows := make([]*network.Flow, 0, len(aliases))
	for _, alias := range aliases {
		f, ok := net.Flow(alias)
		if !ok {
			return nil, fmt.Errorf("%w: %q", network.ErrUnknownFlow, alias)
		}
		flows = append(flows, f)
	}
	return flows, nil
}

// logPartial reports the hops an analysis completed before it failed.
func logPartial(err error) {
	var ae *nc.AnalysisError
	if !errors.As(err, &ae) || ae.Partial == nil {
		return
	}
	for _, h := range ae.Partial.Hops {
		logrus.Warnf("completed before failure: hop %d (%s) delay %s, backlog %s",
			h.Index, h.Segment(), h.Delay, h.Backlog)
	}
}
