// Package nc derives worst-case delay and backlog bounds for flows of a
// feed-forward network under deterministic network calculus.
//
// Three analyses share one traversal skeleton:
//
//   - Total Flow Analysis (TFA) bounds the aggregate of all flows at every
//     server of the path and sums the per-server delay bounds.
//   - Separate Flow Analysis (SFA) convolves the left-over service curves
//     of the flow of interest and bounds it once end to end.
//   - Pay Multiplexing Only Once (PMOO) builds a single left-over curve for
//     the whole tandem so that every cross flow's burst is paid once.
//
// Every analysis works in the numeric backend of the network it is given
// (see package num) and returns either a typed result or an *AnalysisError
// carrying the partial trace.
package nc
