package num

import (
	"math"
	"math/big"
	"strconv"
)

// ratInt is the rational-int representation: n/d in lowest terms with d > 0.
// Every operation checks for int64 overflow and panics with *OverflowError.
type ratInt struct {
	n, d int64
}

func newRatInt(op string, n, d int64) ratInt {
	if n == math.MinInt64 || d == math.MinInt64 {
		panic(&OverflowError{Op: op})
	}
	if d < 0 {
		n, d = -n, -d
	}
	if g := gcd(abs64(n), d); g > 1 {
		n, d = n/g, d/g
	}
	return ratInt{n: n, d: d}
}

func (r ratInt) backend() Backend { return RationalInt }

func (r ratInt) kind() Kind { return KindFinite }

func (r ratInt) zero() value { return ratInt{n: 0, d: 1} }

func (r ratInt) add(o value) value {
	or := o.(ratInt)
	g := gcd(r.d, or.d)
	n := addChecked("add", mulChecked("add", r.n, or.d/g), mulChecked("add", or.n, r.d/g))
	return newRatInt("add", n, mulChecked("add", r.d, or.d/g))
}

func (r ratInt) sub(o value) value {
	or := o.(ratInt)
	return r.add(ratInt{n: -or.n, d: or.d})
}

func (r ratInt) mul(o value) value {
	or := o.(ratInt)
	g1 := gcd(abs64(r.n), or.d)
	g2 := gcd(abs64(or.n), r.d)
	n := mulChecked("mul", r.n/g1, or.n/g2)
	d := mulChecked("mul", r.d/g2, or.d/g1)
	return newRatInt("mul", n, d)
}

func (r ratInt) quo(o value) value {
	or := o.(ratInt)
	return r.mul(newRatInt("div", or.d, or.n))
}

func (r ratInt) neg() value { return ratInt{n: -r.n, d: r.d} }

// cmp cross-multiplies in big.Int since n1*d2 can exceed int64 even when
// both operands fit.
func (r ratInt) cmp(o value) int {
	or := o.(ratInt)
	lhs := new(big.Int).Mul(big.NewInt(r.n), big.NewInt(or.d))
	rhs := new(big.Int).Mul(big.NewInt(or.n), big.NewInt(r.d))
	return lhs.Cmp(rhs)
}

func (r ratInt) sign() int {
	switch {
	case r.n < 0:
		return -1
	case r.n > 0:
		return 1
	}
	return 0
}

func (r ratInt) float64() float64 { return float64(r.n) / float64(r.d) }

func (r ratInt) String() string {
	if r.d == 1 {
		return strconv.FormatInt(r.n, 10)
	}
	return strconv.FormatInt(r.n, 10) + "/" + strconv.FormatInt(r.d, 10)
}

// ratIntFromBig narrows an exact big.Rat, panicking if it does not fit.
func ratIntFromBig(op string, x *big.Rat) ratInt {
	if !x.Num().IsInt64() || !x.Denom().IsInt64() {
		panic(&OverflowError{Op: op})
	}
	return newRatInt(op, x.Num().Int64(), x.Denom().Int64())
}

func mulChecked(op string, a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		panic(&OverflowError{Op: op})
	}
	return c
}

func addChecked(op string, a, b int64) int64 {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		panic(&OverflowError{Op: op})
	}
	return c
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
