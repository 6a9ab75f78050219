package network

import (
	"bytes"
	"fmt"
	"os"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/num"
	"gopkg.in/yaml.v3"
)

// Spec is the declarative description of a network.
// Loaded from YAML via LoadSpec(path). Numbers are kept as strings so the
// numeric backend chosen at Build time parses them without loss.
type Spec struct {
	Version string       `yaml:"version"`
	Servers []ServerSpec `yaml:"servers"`
	Turns   [][2]string  `yaml:"turns"`
	Flows   []FlowSpec   `yaml:"flows"`
}

// ServerSpec describes one server.
type ServerSpec struct {
	Alias        string      `yaml:"alias"`
	Service      ServiceSpec `yaml:"service"`
	Multiplexing string      `yaml:"multiplexing,omitempty"`
}

// ServiceSpec is a rate-latency service curve.
type ServiceSpec struct {
	Rate    string `yaml:"rate"`
	Latency string `yaml:"latency"`
}

// FlowSpec describes one flow. Path lists server aliases in order.
type FlowSpec struct {
	Alias   string      `yaml:"alias"`
	Arrival ArrivalSpec `yaml:"arrival"`
	Path    []string    `yaml:"path"`
}

// ArrivalSpec is a token-bucket arrival curve.
type ArrivalSpec struct {
	Rate  string `yaml:"rate"`
	Burst string `yaml:"burst"`
}

var validSpecVersions = map[string]bool{"": true, "1": true}

// LoadSpec reads and parses a YAML network description.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses a YAML network description from memory.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing network spec: %w", err)
	}
	return &spec, nil
}

// Validate checks the structure of the description: aliases, references
// and multiplexing names. Numeric literals are checked by Build, which
// knows the backend.
func (s *Spec) Validate() error {
	if !validSpecVersions[s.Version] {
		return fmt.Errorf("unsupported version %q; valid: 1", s.Version)
	}
	if len(s.Servers) == 0 {
		return fmt.Errorf("at least one server required")
	}
	servers := make(map[string]bool, len(s.Servers))
	for i, srv := range s.Servers {
		prefix := fmt.Sprintf("servers[%d]", i)
		if srv.Alias == "" {
			return fmt.Errorf("%s: alias required", prefix)
		}
		if servers[srv.Alias] {
			return fmt.Errorf("%s: %w: %q", prefix, ErrDuplicateAlias, srv.Alias)
		}
		servers[srv.Alias] = true
		if srv.Service.Rate == "" || srv.Service.Latency == "" {
			return fmt.Errorf("%s: %w", prefix, ErrMissingServiceCurve)
		}
		if !IsValidMultiplexing(srv.Multiplexing) {
			return fmt.Errorf("%s: %w %q; valid: fifo, arbitrary", prefix, ErrUnknownMultiplexing, srv.Multiplexing)
		}
	}
	for i, turn := range s.Turns {
		for _, alias := range turn {
			if !servers[alias] {
				return fmt.Errorf("turns[%d]: %w %q", i, ErrUnknownServer, alias)
			}
		}
	}
	flows := make(map[string]bool, len(s.Flows))
	for i, f := range s.Flows {
		prefix := fmt.Sprintf("flows[%d]", i)
		if f.Alias == "" {
			return fmt.Errorf("%s: alias required", prefix)
		}
		if flows[f.Alias] {
			return fmt.Errorf("%s: %w: %q", prefix, ErrDuplicateAlias, f.Alias)
		}
		flows[f.Alias] = true
		if f.Arrival.Rate == "" || f.Arrival.Burst == "" {
			return fmt.Errorf("%s: %w", prefix, ErrMissingArrivalCurve)
		}
		if len(f.Path) == 0 {
			return fmt.Errorf("%s: %w", prefix, ErrEmptyPath)
		}
		for _, alias := range f.Path {
			if !servers[alias] {
				return fmt.Errorf("%s.path: %w %q", prefix, ErrUnknownServer, alias)
			}
		}
	}
	return nil
}

// Build validates the description and materializes it as a Network whose
// numbers come from f. Turns that close a cycle and paths that do not
// follow turns are rejected here.
func (s *Spec) Build(f *num.Factory) (*Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	alg := curve.NewAlgebra(f)
	net := New(f)
	for i, srv := range s.Servers {
		prefix := fmt.Sprintf("servers[%d]", i)
		rate, err := f.Parse(srv.Service.Rate)
		if err != nil {
			return nil, fmt.Errorf("%s.service.rate: %w", prefix, err)
		}
		latency, err := f.Parse(srv.Service.Latency)
		if err != nil {
			return nil, fmt.Errorf("%s.service.latency: %w", prefix, err)
		}
		if _, err := net.AddServer(srv.Alias, alg.RateLatency(rate, latency), Multiplexing(srv.Multiplexing)); err != nil {
			return nil, fmt.Errorf("%s: %w", prefix, err)
		}
	}
	for i, turn := range s.Turns {
		src, _ := net.Server(turn[0])
		dst, _ := net.Server(turn[1])
		if err := net.AddTurn(src, dst); err != nil {
			return nil, fmt.Errorf("turns[%d]: %w", i, err)
		}
	}
	for i, fl := range s.Flows {
		prefix := fmt.Sprintf("flows[%d]", i)
		rate, err := f.Parse(fl.Arrival.Rate)
		if err != nil {
			return nil, fmt.Errorf("%s.arrival.rate: %w", prefix, err)
		}
		burst, err := f.Parse(fl.Arrival.Burst)
		if err != nil {
			return nil, fmt.Errorf("%s.arrival.burst: %w", prefix, err)
		}
		path := make(Path, len(fl.Path))
		for j, alias := range fl.Path {
			path[j], _ = net.Server(alias)
		}
		if _, err := net.AddFlow(fl.Alias, alg.TokenBucket(rate, burst), path...); err != nil {
			return nil, fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return net, nil
}
