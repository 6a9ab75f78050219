package num

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

var (
	errEmpty     = errors.New("empty literal")
	errMalformed = errors.New("malformed literal")
)

// Parse reads a literal in this factory's backend. Accepted forms are
// decimal or scientific notation, a fraction "a/b", "Infinity", "+Infinity",
// "Inf", "-Infinity", "-Inf" and "NaN" (case-insensitive). A zero
// denominator yields NaN, as with Div.
func (f *Factory) Parse(s string) (n Num, err error) {
	defer Recover(&err)

	t := strings.TrimSpace(s)
	if t == "" {
		return nan, &ParseError{Input: s, Backend: f.backend, Err: errEmpty}
	}
	switch strings.ToLower(t) {
	case "infinity", "+infinity", "inf", "+inf":
		return posInf, nil
	case "-infinity", "-inf":
		return negInf, nil
	case "nan":
		return nan, nil
	}

	numer, denom, isFraction := strings.Cut(t, "/")
	nv, err := f.parseDecimal(numer)
	if err != nil {
		return nan, &ParseError{Input: s, Backend: f.backend, Err: err}
	}
	if !isFraction {
		return nv, nil
	}
	dv, err := f.parseDecimal(denom)
	if err != nil {
		return nan, &ParseError{Input: s, Backend: f.backend, Err: err}
	}
	return nv.Div(dv), nil
}

// MustParse is Parse for literals known to be valid.
func (f *Factory) MustParse(s string) Num {
	n, err := f.Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// parseDecimal reads one finite numeric literal. Infinity and NaN words are
// only accepted as a whole literal by Parse, on every backend. A literal
// beyond the float range becomes ±Infinity, as float arithmetic does.
func (f *Factory) parseDecimal(s string) (Num, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nan, errEmpty
	}
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
		return nan, errMalformed
	}
	bits := 64
	switch f.backend {
	case RationalInt, RationalBigInt:
		r, ok := new(big.Rat).SetString(s)
		if !ok || strings.Contains(s, "/") {
			return nan, errMalformed
		}
		return f.fromRat("parse", r), nil
	case RealSingle:
		bits = 32
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nan, err
	}
	return f.FromFloat(v), nil
}
