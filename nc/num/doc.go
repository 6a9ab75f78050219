// Package num provides the extended scalar used by every bound computation:
// finite values plus +Infinity, -Infinity and NaN.
//
// A Num carries one of four finite representations, selected once per run
// through a Factory:
//   - real-double: float64, fastest, inexact
//   - real-single: float32, inexact, mostly useful to expose rounding effects
//   - rational-int: int64 numerator/denominator, exact until it overflows
//   - rational-bigint: math/big.Rat, exact and unbounded, slowest
//
// Special values are backend-independent. Finite values of two different
// backends must never meet in one operation; doing so panics with a
// *MixedBackendError. Bounded rationals panic with an *OverflowError when a
// result does not fit. Callers at API boundaries turn both into returned
// errors with Recover.
package num
