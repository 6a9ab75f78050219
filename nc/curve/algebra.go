package curve

import "github.com/inference-sim/netcalc/nc/num"

// Algebra builds curves and derives bounds in one numeric backend.
// It holds no mutable state and is safe for concurrent use.
type Algebra struct {
	nums *num.Factory
}

// NewAlgebra returns an Algebra whose constants come from f.
func NewAlgebra(f *num.Factory) *Algebra {
	return &Algebra{nums: f}
}

// Numbers returns the factory the algebra was built with.
func (a *Algebra) Numbers() *num.Factory { return a.nums }

func (a *Algebra) TokenBucket(rate, burst num.Num) ArrivalCurve {
	return ArrivalCurve{Rate: rate, Burst: burst}
}

func (a *Algebra) RateLatency(rate, latency num.Num) ServiceCurve {
	return ServiceCurve{Rate: rate, Latency: latency}
}

// ZeroArrival is the neutral element of AddArrivals.
func (a *Algebra) ZeroArrival() ArrivalCurve {
	return ArrivalCurve{Rate: a.nums.Zero(), Burst: a.nums.Zero()}
}

// ConvolutionIdentity is the neutral element of Convolve: infinite rate,
// zero latency.
func (a *Algebra) ConvolutionIdentity() ServiceCurve {
	return ServiceCurve{Rate: a.nums.PositiveInfinity(), Latency: a.nums.Zero()}
}

// NoService is the curve that never guarantees any service.
func (a *Algebra) NoService() ServiceCurve {
	return ServiceCurve{Rate: a.nums.Zero(), Latency: a.nums.PositiveInfinity()}
}

// AddArrivals bounds the aggregate of two arrivals.
func (a *Algebra) AddArrivals(x, y ArrivalCurve) ArrivalCurve {
	return ArrivalCurve{Rate: x.Rate.Add(y.Rate), Burst: x.Burst.Add(y.Burst)}
}

// SumArrivals folds AddArrivals over xs, starting from ZeroArrival.
func (a *Algebra) SumArrivals(xs ...ArrivalCurve) ArrivalCurve {
	sum := a.ZeroArrival()
	for _, x := range xs {
		sum = a.AddArrivals(sum, x)
	}
	return sum
}

// Convolve concatenates two rate-latency servers.
func (a *Algebra) Convolve(x, y ServiceCurve) ServiceCurve {
	return ServiceCurve{Rate: num.Min(x.Rate, y.Rate), Latency: x.Latency.Add(y.Latency)}
}

// Stable reports whether alpha's long-term rate is strictly below beta's.
// NaN parameters are never stable.
func (a *Algebra) Stable(alpha ArrivalCurve, beta ServiceCurve) bool {
	return alpha.Rate.Lt(beta.Rate)
}

// OutputBound is the deconvolution alpha ⊘ beta: the departures of traffic
// bounded by alpha from a server offering beta. The burst is +Infinity when
// the server is not stable.
func (a *Algebra) OutputBound(alpha ArrivalCurve, beta ServiceCurve) ArrivalCurve {
	if hasNaN(alpha, beta) {
		return ArrivalCurve{Rate: alpha.Rate, Burst: num.NaN()}
	}
	if !a.Stable(alpha, beta) {
		return ArrivalCurve{Rate: alpha.Rate, Burst: a.nums.PositiveInfinity()}
	}
	return ArrivalCurve{Rate: alpha.Rate, Burst: alpha.Burst.Add(a.RateTimes(alpha.Rate, beta.Latency))}
}

// LeftOverArbitrary is the service left to a flow of interest when cross
// traffic bounded by cross may be served in any order before it.
func (a *Algebra) LeftOverArbitrary(beta ServiceCurve, cross ArrivalCurve) ServiceCurve {
	if beta.Rate.IsPosInf() {
		return ServiceCurve{Rate: beta.Rate, Latency: beta.Latency}
	}
	if cross.Rate.Geq(beta.Rate) {
		return a.NoService()
	}
	rate := beta.Rate.Sub(cross.Rate)
	latency := cross.Burst.Add(a.RateTimes(beta.Rate, beta.Latency)).Div(rate)
	return ServiceCurve{Rate: rate, Latency: latency}
}

// LeftOverFIFO is the FIFO left-over service for the choice θ = T + b_x/R,
// which keeps the result rate-latency.
func (a *Algebra) LeftOverFIFO(beta ServiceCurve, cross ArrivalCurve) ServiceCurve {
	if cross.Rate.Geq(beta.Rate) {
		return a.NoService()
	}
	rate := beta.Rate.Sub(cross.Rate)
	latency := beta.Latency.Add(cross.Burst.Div(beta.Rate))
	return ServiceCurve{Rate: rate, Latency: latency}
}

// BacklogBound is the maximal vertical deviation of alpha above beta:
// b + r·T when r < R, +Infinity otherwise.
func (a *Algebra) BacklogBound(alpha ArrivalCurve, beta ServiceCurve) num.Num {
	if hasNaN(alpha, beta) {
		return num.NaN()
	}
	if !a.Stable(alpha, beta) {
		return a.nums.PositiveInfinity()
	}
	return alpha.Burst.Add(a.RateTimes(alpha.Rate, beta.Latency))
}

// DelayBoundFIFO is the maximal horizontal deviation of alpha left of beta:
// T + b/R when r < R, +Infinity otherwise. Valid only for FIFO servers.
func (a *Algebra) DelayBoundFIFO(alpha ArrivalCurve, beta ServiceCurve) num.Num {
	if hasNaN(alpha, beta) {
		return num.NaN()
	}
	if !a.Stable(alpha, beta) {
		return a.nums.PositiveInfinity()
	}
	return beta.Latency.Add(alpha.Burst.Div(beta.Rate))
}

// DelayBoundArbitrary bounds the delay without any ordering assumption by
// the length of the longest backlogged period, (b + R·T)/(R - r). It is
// never below DelayBoundFIFO for the same inputs.
func (a *Algebra) DelayBoundArbitrary(alpha ArrivalCurve, beta ServiceCurve) num.Num {
	if hasNaN(alpha, beta) {
		return num.NaN()
	}
	if !a.Stable(alpha, beta) {
		return a.nums.PositiveInfinity()
	}
	fifo := a.DelayBoundFIFO(alpha, beta)
	if beta.Rate.IsPosInf() {
		return fifo
	}
	arb := alpha.Burst.Add(a.RateTimes(beta.Rate, beta.Latency)).Div(beta.Rate.Sub(alpha.Rate))
	// Equal in exact arithmetic when r = 0; floats may round arb one ulp low.
	return num.Max(arb, fifo)
}

// RateTimes multiplies a rate by a duration, treating a zero rate over an
// unbounded duration as zero traffic instead of NaN.
func (a *Algebra) RateTimes(rate, d num.Num) num.Num {
	if rate.IsZero() {
		return a.nums.Zero()
	}
	return rate.Mul(d)
}

func hasNaN(alpha ArrivalCurve, beta ServiceCurve) bool {
	return !alpha.Defined() || !beta.Defined()
}
