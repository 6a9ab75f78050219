package num

import (
	"math"
	"strconv"
)

// double is the real-double representation.
type double float64

func (d double) backend() Backend {
	return RealDouble
}

func (d double) kind() Kind {
	return floatKind(float64(d))
}

func (d double) zero() value {
	return double(0)
}

func (d double) add(o value) value {
	return d + o.(double)
}

func (d double) sub(o value) value {
	return d - o.(double)
}

func (d double) mul(o value) value {
	return d * o.(double)
}

func (d double) quo(o value) value {
	return d / o.(double)
}

func (d double) float64() float64 {
	return float64(d)
}

func (d double) neg() value {
	if d == 0 {
		return double(0)
	}
	return -d
}

func (d double) cmp(o value) int {
	od := o.(double)
	switch {
	case d < od:
		return -1
	case d > od:
		return 1
	}
	return 0
}

func (d double) sign() int {
	return signOf(float64(d))
}

func (d double) String() string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64)
}

// single is the real-single representation.
type single float32

func (s single) backend() Backend {
	return RealSingle
}

func (s single) kind() Kind {
	return floatKind(float64(s))
}

func (s single) zero() value {
	return single(0)
}

func (s single) add(o value) value {
	return s + o.(single)
}

func (s single) sub(o value) value {
	return s - o.(single)
}

func (s single) mul(o value) value {
	return s * o.(single)
}

func (s single) quo(o value) value {
	return s / o.(single)
}

func (s single) float64() float64 {
	return float64(s)
}

func (s single) neg() value {
	if s == 0 {
		return single(0)
	}
	return -s
}

func (s single) cmp(o value) int {
	os := o.(single)
	switch {
	case s < os:
		return -1
	case s > os:
		return 1
	}
	return 0
}

func (s single) sign() int {
	return signOf(float64(s))
}

func (s single) String() string {
	return strconv.FormatFloat(float64(s), 'g', -1, 32)
}

func floatKind(f float64) Kind {
	switch {
	case math.IsNaN(f):
		return KindNaN
	case math.IsInf(f, 1):
		return KindPosInf
	case math.IsInf(f, -1):
		return KindNegInf
	}
	return KindFinite
}

func signOf(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}
