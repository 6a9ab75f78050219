package num

import "math"

// Kind classifies a Num.
type Kind uint8

const (
	// KindNaN is first so that the zero Num is NaN.
	KindNaN Kind = iota
	KindFinite
	KindPosInf
	KindNegInf
)

func (k Kind) String() string {
	switch k {
	case KindFinite:
		return "finite"
	case KindPosInf:
		return "+inf"
	case KindNegInf:
		return "-inf"
	default:
		return "nan"
	}
}

// value is a finite number in one concrete representation.
// Binary operations are only ever called with a value of the same backend.
type value interface {
	backend() Backend
	kind() Kind // floats may overflow into infinities
	zero() value
	add(o value) value
	sub(o value) value
	mul(o value) value
	quo(o value) value // o is never zero
	neg() value
	cmp(o value) int
	sign() int
	float64() float64
	String() string
}

// Num is an immutable extended-arithmetic scalar.
// The zero value is NaN.
type Num struct {
	kind Kind
	v    value // non-nil iff kind == KindFinite
}

var (
	nan    = Num{kind: KindNaN}
	posInf = Num{kind: KindPosInf}
	negInf = Num{kind: KindNegInf}
)

// NaN returns the backend-independent NaN.
func NaN() Num { return nan }

// PositiveInfinity returns the backend-independent +Infinity.
func PositiveInfinity() Num { return posInf }

// NegativeInfinity returns the backend-independent -Infinity.
func NegativeInfinity() Num { return negInf }

func fromValue(v value) Num {
	if k := v.kind(); k != KindFinite {
		return Num{kind: k}
	}
	return Num{kind: KindFinite, v: v}
}

func infOfSign(sign int) Num {
	if sign < 0 {
		return negInf
	}
	return posInf
}

// Kind reports which of the four variants n is.
func (n Num) Kind() Kind { return n.kind }

// Backend returns the representation of a finite value, or "" for specials.
func (n Num) Backend() Backend {
	if n.kind != KindFinite {
		return ""
	}
	return n.v.backend()
}

func (n Num) IsNaN() bool    { return n.kind == KindNaN }
func (n Num) IsFinite() bool { return n.kind == KindFinite }
func (n Num) IsPosInf() bool { return n.kind == KindPosInf }
func (n Num) IsNegInf() bool { return n.kind == KindNegInf }
func (n Num) IsInf() bool    { return n.kind == KindPosInf || n.kind == KindNegInf }

// IsZero reports whether n is a finite zero.
func (n Num) IsZero() bool { return n.kind == KindFinite && n.v.sign() == 0 }

// Sign returns -1, 0 or +1. NaN has sign 0.
func (n Num) Sign() int {
	switch n.kind {
	case KindFinite:
		return n.v.sign()
	case KindPosInf:
		return 1
	case KindNegInf:
		return -1
	default:
		return 0
	}
}

func (n Num) Neg() Num {
	switch n.kind {
	case KindFinite:
		return fromValue(n.v.neg())
	case KindPosInf:
		return negInf
	case KindNegInf:
		return posInf
	default:
		return nan
	}
}

func (n Num) Abs() Num {
	if n.Sign() < 0 {
		return n.Neg()
	}
	return n
}

func (n Num) Add(o Num) Num {
	switch {
	case n.kind == KindNaN || o.kind == KindNaN:
		return nan
	case n.IsInf() && o.IsInf():
		if n.kind != o.kind {
			return nan
		}
		return n
	case n.IsInf():
		return n
	case o.IsInf():
		return o
	}
	sameBackend("add", n, o)
	return fromValue(n.v.add(o.v))
}

func (n Num) Sub(o Num) Num {
	if n.kind == KindFinite && o.kind == KindFinite {
		sameBackend("sub", n, o)
		return fromValue(n.v.sub(o.v))
	}
	return n.Add(o.Neg())
}

func (n Num) Mul(o Num) Num {
	switch {
	case n.kind == KindNaN || o.kind == KindNaN:
		return nan
	case n.IsInf() || o.IsInf():
		s := n.Sign() * o.Sign()
		if s == 0 {
			return nan
		}
		return infOfSign(s)
	}
	sameBackend("mul", n, o)
	return fromValue(n.v.mul(o.v))
}

// Div divides n by o. Division by zero yields NaN.
func (n Num) Div(o Num) Num {
	switch {
	case n.kind == KindNaN || o.kind == KindNaN, o.IsZero():
		return nan
	case n.IsInf() && o.IsInf():
		return nan
	case n.IsInf():
		return infOfSign(n.Sign() * o.Sign())
	case o.IsInf():
		return Num{kind: KindFinite, v: n.v.zero()}
	}
	sameBackend("div", n, o)
	return fromValue(n.v.quo(o.v))
}

// compare orders n and o; ok is false if either is NaN.
func (n Num) compare(o Num) (c int, ok bool) {
	if n.kind == KindNaN || o.kind == KindNaN {
		return 0, false
	}
	rank := func(x Num) int {
		switch x.kind {
		case KindNegInf:
			return -1
		case KindPosInf:
			return 1
		}
		return 0
	}
	rn, ro := rank(n), rank(o)
	if rn != 0 || ro != 0 {
		switch {
		case rn < ro:
			return -1, true
		case rn > ro:
			return 1, true
		}
		return 0, true
	}
	sameBackend("compare", n, o)
	return n.v.cmp(o.v), true
}

// Eq is value equality. NaN equals nothing, not even NaN.
func (n Num) Eq(o Num) bool {
	c, ok := n.compare(o)
	return ok && c == 0
}

func (n Num) Lt(o Num) bool {
	c, ok := n.compare(o)
	return ok && c < 0
}

func (n Num) Leq(o Num) bool {
	c, ok := n.compare(o)
	return ok && c <= 0
}

func (n Num) Gt(o Num) bool {
	c, ok := n.compare(o)
	return ok && c > 0
}

func (n Num) Geq(o Num) bool {
	c, ok := n.compare(o)
	return ok && c >= 0
}

// Float64 converts n to the nearest float64.
func (n Num) Float64() float64 {
	switch n.kind {
	case KindFinite:
		return n.v.float64()
	case KindPosInf:
		return math.Inf(1)
	case KindNegInf:
		return math.Inf(-1)
	default:
		return math.NaN()
	}
}

func (n Num) String() string {
	switch n.kind {
	case KindFinite:
		return n.v.String()
	case KindPosInf:
		return "Infinity"
	case KindNegInf:
		return "-Infinity"
	default:
		return "NaN"
	}
}

// Max returns the larger of a and b. NaN poisons the result.
func Max(a, b Num) Num {
	if a.IsNaN() || b.IsNaN() {
		return nan
	}
	if a.Geq(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b. NaN poisons the result.
func Min(a, b Num) Num {
	if a.IsNaN() || b.IsNaN() {
		return nan
	}
	if a.Leq(b) {
		return a
	}
	return b
}

func sameBackend(op string, a, b Num) {
	if a.v.backend() != b.v.backend() {
		panic(&MixedBackendError{Op: op, Left: a.v.backend(), Right: b.v.backend()})
	}
}
