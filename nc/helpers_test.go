package nc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
)

// configFor returns a config with the given discipline in backend b.
func configFor(b num.Backend, mux MuxDiscipline, methods ...ArrivalBoundMethod) AnalysisConfig {
	cfg := DefaultConfig()
	cfg.Backend = b
	cfg.Mux = mux
	if len(methods) > 0 {
		cfg.ArrivalBoundMethods = methods
	}
	return cfg
}

// tandem builds servers s0..s(n-1) in a chain, each with the given
// rate-latency curve written as literals.
func tandem(t *testing.T, f *num.Factory, services ...[2]string) (*network.Network, []*network.Server) {
	t.Helper()
	net := network.New(f)
	alg := curve.NewAlgebra(f)
	servers := make([]*network.Server, len(services))
	for i, rl := range services {
		s, err := net.AddServer("", alg.RateLatency(f.MustParse(rl[0]), f.MustParse(rl[1])), network.FIFO)
		require.NoError(t, err)
		servers[i] = s
		if i > 0 {
			require.NoError(t, net.AddTurn(servers[i-1], s))
		}
	}
	return net, servers
}

func addFlow(t *testing.T, net *network.Network, alias, rate, burst string, path ...*network.Server) *network.Flow {
	t.Helper()
	f := net.Numbers()
	alg := curve.NewAlgebra(f)
	flow, err := net.AddFlow(alias, alg.TokenBucket(f.MustParse(rate), f.MustParse(burst)), path...)
	require.NoError(t, err)
	return flow
}
