package num

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Backend names a finite-value representation.
type Backend string

const (
	RealDouble     Backend = "real-double"
	RealSingle     Backend = "real-single"
	RationalInt    Backend = "rational-int"
	RationalBigInt Backend = "rational-bigint"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = RealDouble

// ValidBackends is the set of recognized backend names. The empty string
// selects DefaultBackend.
var ValidBackends = map[Backend]bool{
	"": true, RealDouble: true, RealSingle: true, RationalInt: true, RationalBigInt: true,
}

// IsValidBackend returns true if name is a recognized backend.
func IsValidBackend(name string) bool {
	return ValidBackends[Backend(name)]
}

// Factory builds Nums of a single backend. It is safe for concurrent use.
type Factory struct {
	backend Backend
	zero    Num
	epsilon Num
}

// NewFactory returns a Factory for the named backend.
func NewFactory(b Backend) (*Factory, error) {
	if !ValidBackends[b] {
		return nil, fmt.Errorf("unknown numeric backend %q", b)
	}
	if b == "" {
		b = DefaultBackend
	}
	f := &Factory{backend: b}
	f.zero = f.NewZero()
	f.epsilon = f.NewEpsilon()
	return f, nil
}

// MustFactory is NewFactory for backends known at compile time.
func MustFactory(b Backend) *Factory {
	f, err := NewFactory(b)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Factory) Backend() Backend { return f.backend }

// Zero returns the shared zero of this backend.
func (f *Factory) Zero() Num { return f.zero }

// NewZero builds a fresh zero, equal to Zero.
func (f *Factory) NewZero() Num { return f.FromFraction(0, 1) }

// Epsilon returns the smallest step this backend treats as significant.
func (f *Factory) Epsilon() Num { return f.epsilon }

// NewEpsilon builds a fresh epsilon, equal to Epsilon.
func (f *Factory) NewEpsilon() Num {
	switch f.backend {
	case RealSingle:
		return f.FromFloat(1e-5)
	case RationalInt:
		return f.FromFraction(1, math.MaxInt32)
	case RationalBigInt:
		return f.FromFraction(1, 1_000_000_000_000_000_000)
	default:
		return f.FromFloat(1e-9)
	}
}

func (f *Factory) PositiveInfinity() Num { return posInf }

func (f *Factory) NewPositiveInfinity() Num { return Num{kind: KindPosInf} }

func (f *Factory) NegativeInfinity() Num { return negInf }

func (f *Factory) NewNegativeInfinity() Num { return Num{kind: KindNegInf} }

func (f *Factory) NaN() Num { return nan }

func (f *Factory) NewNaN() Num { return Num{kind: KindNaN} }

// FromInt builds the integer n.
func (f *Factory) FromInt(n int64) Num { return f.FromFraction(n, 1) }

// FromFraction builds num/den. A zero denominator yields NaN.
// rational-int panics with *OverflowError only for math.MinInt64 operands.
func (f *Factory) FromFraction(num, den int64) Num {
	if den == 0 {
		return nan
	}
	switch f.backend {
	case RealSingle:
		return fromValue(single(float32(float64(num) / float64(den))))
	case RationalInt:
		return fromValue(newRatInt("create", num, den))
	case RationalBigInt:
		return fromValue(bigRat{r: big.NewRat(num, den)})
	default:
		return fromValue(double(float64(num) / float64(den)))
	}
}

// FromFloat builds the value of v. Rational backends take the shortest
// decimal that round-trips v, so 0.1 becomes 1/10 rather than its binary
// expansion. rational-int panics with *OverflowError if that does not fit.
func (f *Factory) FromFloat(v float64) Num {
	switch {
	case math.IsNaN(v):
		return nan
	case math.IsInf(v, 1):
		return posInf
	case math.IsInf(v, -1):
		return negInf
	}
	switch f.backend {
	case RealSingle:
		return fromValue(single(float32(v)))
	case RationalInt, RationalBigInt:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
		if !ok {
			return nan
		}
		return f.fromRat("create", r)
	default:
		return fromValue(double(v))
	}
}

func (f *Factory) fromRat(op string, r *big.Rat) Num {
	switch f.backend {
	case RationalInt:
		return fromValue(ratIntFromBig(op, r))
	case RationalBigInt:
		return fromValue(bigRat{r: r})
	case RealSingle:
		v, _ := r.Float32()
		return fromValue(single(v))
	default:
		v, _ := r.Float64()
		return fromValue(double(v))
	}
}
