// Package network is the server graph data model: servers with rate-latency
// service curves, directed turns between them, and flows with token-bucket
// arrival curves routed along paths of the graph.
//
// The graph is feed-forward. AddTurn rejects any turn that would close a
// cycle, so every network that can be built is acyclic.
package network

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/inference-sim/netcalc/nc/curve"
	"github.com/inference-sim/netcalc/nc/num"
)

// Network owns servers, turns and flows. Building and updating it is not
// safe for concurrent use. Analyses only read it, so several may run in
// parallel once it is built.
type Network struct {
	nums  *num.Factory
	graph *simple.DirectedGraph

	servers     []*Server
	flows       []*Flow
	serverAlias map[string]*Server
	flowAlias   map[string]*Flow
	flowsAt     map[int64][]*Flow
}

// New returns an empty network whose curves must use f's backend.
func New(f *num.Factory) *Network {
	return &Network{
		nums:        f,
		graph:       simple.NewDirectedGraph(),
		serverAlias: make(map[string]*Server),
		flowAlias:   make(map[string]*Flow),
		flowsAt:     make(map[int64][]*Flow),
	}
}

// Numbers returns the factory the network was created with.
func (n *Network) Numbers() *num.Factory { return n.nums }

// AddServer adds a server. An empty alias becomes "s<ID>"; an empty
// multiplexing attribute becomes Arbitrary.
func (n *Network) AddServer(alias string, service curve.ServiceCurve, mux Multiplexing) (*Server, error) {
	id := int64(len(n.servers))
	if alias == "" {
		alias = fmt.Sprintf("s%d", id)
	}
	if _, ok := n.serverAlias[alias]; ok {
		return nil, fmt.Errorf("adding server %q: %w", alias, ErrDuplicateAlias)
	}
	if err := n.checkService(service); err != nil {
		return nil, fmt.Errorf("adding server %q: %w", alias, err)
	}
	mux, err := normalizeMultiplexing(mux)
	if err != nil {
		return nil, fmt.Errorf("adding server %q: %w", alias, err)
	}

	s := &Server{id: id, alias: alias, service: service, mux: mux}
	n.graph.AddNode(simple.Node(id))
	n.servers = append(n.servers, s)
	n.serverAlias[alias] = s
	return s, nil
}

// AddTurn connects src to dst. Adding an existing turn is a no-op.
func (n *Network) AddTurn(src, dst *Server) error {
	if err := n.checkOwned(src, dst); err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("turn %s -> %s: %w", src, dst, ErrSelfLoop)
	}
	if n.graph.HasEdgeFromTo(src.id, dst.id) {
		return nil
	}
	if topo.PathExistsIn(n.graph, simple.Node(dst.id), simple.Node(src.id)) {
		return fmt.Errorf("turn %s -> %s: %w", src, dst, ErrCycle)
	}
	n.graph.SetEdge(n.graph.NewEdge(simple.Node(src.id), simple.Node(dst.id)))
	return nil
}

// AddFlow adds a flow routed along path. The path must follow turns of
// the graph. An empty alias becomes "f<ID>".
func (n *Network) AddFlow(alias string, arrival curve.ArrivalCurve, path ...*Server) (*Flow, error) {
	id := int64(len(n.flows))
	if alias == "" {
		alias = fmt.Sprintf("f%d", id)
	}
	if _, ok := n.flowAlias[alias]; ok {
		return nil, fmt.Errorf("adding flow %q: %w", alias, ErrDuplicateAlias)
	}
	if err := n.checkArrival(arrival); err != nil {
		return nil, fmt.Errorf("adding flow %q: %w", alias, err)
	}
	if err := n.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("adding flow %q: %w", alias, err)
	}

	f := &Flow{id: id, alias: alias, arrival: arrival, path: append(Path(nil), path...)}
	n.flows = append(n.flows, f)
	n.flowAlias[alias] = f
	for _, s := range path {
		n.flowsAt[s.id] = append(n.flowsAt[s.id], f)
	}
	return f, nil
}

// SetServiceCurve replaces the service curve of s.
func (n *Network) SetServiceCurve(s *Server, service curve.ServiceCurve) error {
	if err := n.checkOwned(s); err != nil {
		return err
	}
	if err := n.checkService(service); err != nil {
		return fmt.Errorf("server %s: %w", s, err)
	}
	s.service = service
	return nil
}

// SetMultiplexing replaces the multiplexing attribute of s.
func (n *Network) SetMultiplexing(s *Server, mux Multiplexing) error {
	if err := n.checkOwned(s); err != nil {
		return err
	}
	mux, err := normalizeMultiplexing(mux)
	if err != nil {
		return fmt.Errorf("server %s: %w", s, err)
	}
	s.mux = mux
	return nil
}

// Servers returns all servers in ID order.
func (n *Network) Servers() []*Server { return slices.Clone(n.servers) }

// Flows returns all flows in creation order.
func (n *Network) Flows() []*Flow { return slices.Clone(n.flows) }

func (n *Network) Server(alias string) (*Server, bool) {
	s, ok := n.serverAlias[alias]
	return s, ok
}

func (n *Network) Flow(alias string) (*Flow, bool) {
	f, ok := n.flowAlias[alias]
	return f, ok
}

// Contains reports whether s was added to this network.
func (n *Network) Contains(s *Server) bool {
	return s != nil && s.id < int64(len(n.servers)) && n.servers[s.id] == s
}

// ContainsFlow reports whether f was added to this network.
func (n *Network) ContainsFlow(f *Flow) bool {
	return f != nil && f.id < int64(len(n.flows)) && n.flows[f.id] == f
}

// FlowsAt returns the flows crossing s in creation order.
func (n *Network) FlowsAt(s *Server) []*Flow { return slices.Clone(n.flowsAt[s.id]) }

func (n *Network) HasTurn(src, dst *Server) bool {
	return n.Contains(src) && n.Contains(dst) && n.graph.HasEdgeFromTo(src.id, dst.id)
}

// Predecessors returns the servers with a turn into s, in ID order.
func (n *Network) Predecessors(s *Server) []*Server {
	return n.serversOf(n.graph.To(s.id))
}

// TopologicalOrder lists servers so that every turn points forward.
// Ties are broken by server ID.
func (n *Network) TopologicalOrder() ([]*Server, error) {
	sorted, err := topo.SortStabilized(n.graph, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	out := make([]*Server, len(sorted))
	for i, node := range sorted {
		out[i] = n.servers[node.ID()]
	}
	return out, nil
}

// ValidatePath checks that p is non-empty, uses only servers of this
// network and follows its turns.
func (n *Network) ValidatePath(p Path) error {
	if len(p) == 0 {
		return ErrEmptyPath
	}
	for i, s := range p {
		if !n.Contains(s) {
			return fmt.Errorf("path position %d: %w", i, ErrUnknownServer)
		}
		if i > 0 && !n.graph.HasEdgeFromTo(p[i-1].id, s.id) {
			return fmt.Errorf("%s -> %s: %w", p[i-1], s, ErrNoTurn)
		}
	}
	return nil
}

func (n *Network) serversOf(nodes graph.Nodes) []*Server {
	list := graph.NodesOf(nodes)
	byID(list)
	out := make([]*Server, len(list))
	for i, node := range list {
		out[i] = n.servers[node.ID()]
	}
	return out
}

func (n *Network) checkOwned(servers ...*Server) error {
	for _, s := range servers {
		if !n.Contains(s) {
			return fmt.Errorf("server %v: %w", s, ErrUnknownServer)
		}
	}
	return nil
}

func (n *Network) checkService(service curve.ServiceCurve) error {
	if !service.Defined() {
		return ErrMissingServiceCurve
	}
	if service.Rate.Sign() < 0 || service.Latency.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCurve, service)
	}
	return n.checkBackend(service.Rate, service.Latency)
}

func (n *Network) checkArrival(arrival curve.ArrivalCurve) error {
	if !arrival.Defined() {
		return ErrMissingArrivalCurve
	}
	if !arrival.Rate.IsFinite() || !arrival.Burst.IsFinite() ||
		arrival.Rate.Sign() < 0 || arrival.Burst.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCurve, arrival)
	}
	return n.checkBackend(arrival.Rate, arrival.Burst)
}

func (n *Network) checkBackend(xs ...num.Num) error {
	for _, x := range xs {
		if x.IsFinite() && x.Backend() != n.nums.Backend() {
			return fmt.Errorf("%w: %s in a %s network", ErrBackendMismatch, x.Backend(), n.nums.Backend())
		}
	}
	return nil
}

func normalizeMultiplexing(mux Multiplexing) (Multiplexing, error) {
	if !IsValidMultiplexing(string(mux)) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMultiplexing, mux)
	}
	if mux == "" {
		return Arbitrary, nil
	}
	return mux, nil
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}
