package network

import (
	"fmt"
	"strings"

	"github.com/inference-sim/netcalc/nc/curve"
)

// Flow is a traffic source with a token-bucket arrival curve and a fixed path.
type Flow struct {
	id      int64
	alias   string
	arrival curve.ArrivalCurve
	path    Path
}

func (f *Flow) ID() int64                        { return f.id }
func (f *Flow) Alias() string                    { return f.alias }
func (f *Flow) ArrivalCurve() curve.ArrivalCurve { return f.arrival }
func (f *Flow) String() string                   { return f.alias }

// Path returns a copy of the flow's route.
func (f *Flow) Path() Path { return append(Path(nil), f.path...) }

// Source is the first server on the flow's path.
func (f *Flow) Source() *Server { return f.path[0] }

// Index returns the position of s on the flow's path, or -1.
func (f *Flow) Index(s *Server) int { return f.path.Index(s) }

// Crosses reports whether s is on the flow's path.
func (f *Flow) Crosses(s *Server) bool { return f.path.Index(s) >= 0 }

// Predecessor returns the server the flow visits right before s.
func (f *Flow) Predecessor(s *Server) (*Server, bool) { return f.path.Predecessor(s) }

// Path is an ordered sequence of servers.
type Path []*Server

// Index returns the position of s on the path, or -1.
func (p Path) Index(s *Server) int {
	for i, x := range p {
		if x == s {
			return i
		}
	}
	return -1
}

func (p Path) Contains(s *Server) bool { return p.Index(s) >= 0 }

// Predecessor returns the server before s on the path.
// ok is false when s is the first server or not on the path.
func (p Path) Predecessor(s *Server) (pred *Server, ok bool) {
	i := p.Index(s)
	if i <= 0 {
		return nil, false
	}
	return p[i-1], true
}

func (p Path) String() string {
	aliases := make([]string, len(p))
	for i, s := range p {
		aliases[i] = s.alias
	}
	return fmt.Sprintf("[%s]", strings.Join(aliases, " -> "))
}
