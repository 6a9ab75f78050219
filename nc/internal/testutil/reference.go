// Package testutil provides shared test infrastructure for the bound
// engine: the reference network, its expected bounds and a backend-aware
// numeric assertion.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/inference-sim/netcalc/nc/network"
	"github.com/inference-sim/netcalc/nc/num"
)

// Backends lists every numeric backend, exact ones first.
var Backends = []num.Backend{num.RationalBigInt, num.RationalInt, num.RealDouble, num.RealSingle}

// Bound is an expected delay/backlog pair, written as exact fractions.
type Bound struct {
	Delay   string
	Backlog string
}

// Expected bounds of the reference network per analysis and discipline,
// keyed by flow alias. PMOO is only defined without ordering assumptions.
var (
	TFAFIFO = map[string]Bound{
		"f0": {Delay: "395/2", Backlog: "1375"},
		"f1": {Delay: "875/4", Backlog: "1375"},
		"f2": {Delay: "180", Backlog: "1375"},
	}
	TFAArbitrary = map[string]Bound{
		"f0": {Delay: "660", Backlog: "1375"},
		"f1": {Delay: "2725/4", Backlog: "1375"},
		"f2": {Delay: "1155/2", Backlog: "1375"},
	}
	SFAFIFO = map[string]Bound{
		"f0": {Delay: "165", Backlog: "1675/2"},
		"f1": {Delay: "165", Backlog: "1675/2"},
		"f2": {Delay: "295/2", Backlog: "750"},
	}
	SFAArbitrary = map[string]Bound{
		"f0": {Delay: "1735/6", Backlog: "4375/3"},
		"f1": {Delay: "1655/6", Backlog: "4175/3"},
		"f2": {Delay: "505/2", Backlog: "1275"},
	}
	PMOOArbitrary = map[string]Bound{
		"f0": {Delay: "355/2", Backlog: "900"},
		"f1": {Delay: "375/2", Backlog: "950"},
		"f2": {Delay: "355/2", Backlog: "900"},
	}
)

// ReferenceNetworkPath resolves testdata/reference_network.yaml relative to
// this source file: nc/internal/testutil/ → testdata/.
func ReferenceNetworkPath(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "reference_network.yaml")
}

// ReferenceNetwork builds the reference network in backend b.
func ReferenceNetwork(t *testing.T, b num.Backend) *network.Network {
	t.Helper()
	spec, err := network.LoadSpec(ReferenceNetworkPath(t))
	if err != nil {
		t.Fatalf("Failed to load reference network: %v", err)
	}
	net, err := spec.Build(num.MustFactory(b))
	if err != nil {
		t.Fatalf("Failed to build reference network: %v", err)
	}
	return net
}

// MustFlow looks up a flow by alias.
func MustFlow(t *testing.T, net *network.Network, alias string) *network.Flow {
	t.Helper()
	f, ok := net.Flow(alias)
	if !ok {
		t.Fatalf("no flow %q", alias)
	}
	return f
}

// MustServer looks up a server by alias.
func MustServer(t *testing.T, net *network.Network, alias string) *network.Server {
	t.Helper()
	s, ok := net.Server(alias)
	if !ok {
		t.Fatalf("no server %q", alias)
	}
	return s
}

// Tolerance is the relative tolerance used for backend b: zero for
// rational backends.
func Tolerance(b num.Backend) float64 {
	switch b {
	case num.RealSingle:
		return 1e-5
	case num.RealDouble:
		return 1e-9
	default:
		return 0
	}
}

// AssertNumEqual checks got against the literal want. Rational backends
// must match exactly; float backends within Tolerance. Infinities and NaN
// must match in kind.
func AssertNumEqual(t *testing.T, name, want string, got num.Num) {
	t.Helper()
	if got.IsNaN() || got.IsInf() {
		if got.String() != num.MustFactory(num.RationalBigInt).MustParse(want).String() {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
		return
	}
	b := got.Backend()
	expected := num.MustFactory(b).MustParse(want)
	if Tolerance(b) == 0 {
		if !got.Eq(expected) {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
		return
	}
	AssertFloat64Equal(t, name, expected.Float64(), got.Float64(), Tolerance(b))
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
