package num

import "fmt"

// ParseError reports a malformed numeric literal.
type ParseError struct {
	Input   string
	Backend Backend
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("num: cannot parse %q as %s: %v", e.Input, e.Backend, e.Err)
	}
	return fmt.Sprintf("num: cannot parse %q as %s", e.Input, e.Backend)
}

func (e *ParseError) Unwrap() error { return e.Err }

// OverflowError reports a rational-int result that does not fit in int64.
// rational-bigint cannot overflow.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("num: %s overflows %s; use %s for exact long-path accumulation",
		e.Op, RationalInt, RationalBigInt)
}

// MixedBackendError reports an operation between finite values of two backends.
type MixedBackendError struct {
	Op          string
	Left, Right Backend
}

func (e *MixedBackendError) Error() string {
	return fmt.Sprintf("num: %s mixes %s and %s values", e.Op, e.Left, e.Right)
}

// Recover converts a panicking *OverflowError or *MixedBackendError into an
// error stored in *errp. Any other panic is re-raised. Use with defer:
//
//	defer num.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case *OverflowError:
		*errp = e
	case *MixedBackendError:
		*errp = e
	default:
		panic(r)
	}
}
