// Package curve is the arrival/service curve algebra consumed by the
// analyses in package nc. It is deliberately restricted to the two curve
// families that dominate certification work: token-bucket arrival curves
// and rate-latency service curves. Every parameter is a num.Num so the
// chosen numeric backend flows through unchanged.
package curve

import (
	"fmt"

	"github.com/inference-sim/netcalc/nc/num"
)

// ArrivalCurve is the token bucket γ(t) = Burst + Rate·t for t > 0.
type ArrivalCurve struct {
	Rate  num.Num
	Burst num.Num
}

// Defined reports whether both parameters are set and not NaN.
func (a ArrivalCurve) Defined() bool {
	return !a.Rate.IsNaN() && !a.Burst.IsNaN()
}

// Leq reports whether a lies pointwise below or on b.
func (a ArrivalCurve) Leq(b ArrivalCurve) bool {
	return a.Rate.Leq(b.Rate) && a.Burst.Leq(b.Burst)
}

// Eq is value equality of both parameters.
func (a ArrivalCurve) Eq(b ArrivalCurve) bool {
	return a.Rate.Eq(b.Rate) && a.Burst.Eq(b.Burst)
}

func (a ArrivalCurve) String() string {
	return fmt.Sprintf("TB{r=%s, b=%s}", a.Rate, a.Burst)
}

// ServiceCurve is the rate-latency curve β(t) = Rate·max(0, t-Latency).
// A zero Rate with infinite Latency guarantees nothing.
type ServiceCurve struct {
	Rate    num.Num
	Latency num.Num
}

// Defined reports whether both parameters are set and not NaN.
func (s ServiceCurve) Defined() bool {
	return !s.Rate.IsNaN() && !s.Latency.IsNaN()
}

// Eq is value equality of both parameters.
func (s ServiceCurve) Eq(o ServiceCurve) bool {
	return s.Rate.Eq(o.Rate) && s.Latency.Eq(o.Latency)
}

func (s ServiceCurve) String() string {
	return fmt.Sprintf("RL{R=%s, T=%s}", s.Rate, s.Latency)
}
