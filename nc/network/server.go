package network

import "github.com/inference-sim/netcalc/nc/curve"

// Multiplexing is a server's own ordering guarantee among flows.
type Multiplexing string

const (
	FIFO      Multiplexing = "fifo"
	Arbitrary Multiplexing = "arbitrary"
)

// ValidMultiplexing is the set of recognized attributes. Empty means Arbitrary.
var ValidMultiplexing = map[Multiplexing]bool{"": true, FIFO: true, Arbitrary: true}

// IsValidMultiplexing returns true if name is a recognized attribute.
func IsValidMultiplexing(name string) bool {
	return ValidMultiplexing[Multiplexing(name)]
}

// Server is a queuing point. Its ID and alias never change; its curve and
// multiplexing may be reassigned through the owning Network between runs.
type Server struct {
	id      int64
	alias   string
	service curve.ServiceCurve
	mux     Multiplexing
}

func (s *Server) ID() int64                        { return s.id }
func (s *Server) Alias() string                    { return s.alias }
func (s *Server) ServiceCurve() curve.ServiceCurve { return s.service }
func (s *Server) Multiplexing() Multiplexing       { return s.mux }
func (s *Server) String() string                   { return s.alias }
