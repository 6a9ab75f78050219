package nc

import (
	"errors"
	"fmt"

	"github.com/inference-sim/netcalc/nc/trace"
)

var (
	// ErrInvalidConfig indicates an AnalysisConfig field with an unknown value.
	ErrInvalidConfig = errors.New("nc: invalid analysis config")
	// ErrBackendMismatch indicates a network built in another numeric backend
	// than the configured one.
	ErrBackendMismatch = errors.New("nc: network backend differs from configured backend")
	// ErrUnknownAnalysis indicates an unrecognized analysis kind.
	ErrUnknownAnalysis = errors.New("nc: unknown analysis")
	// ErrFlowNotOnPath indicates an explicit path with a server the flow does not cross.
	ErrFlowNotOnPath = errors.New("nc: flow does not cross the analyzed path")
)

// AnalysisError reports an analysis that stopped before producing bounds.
// Partial holds the hops completed before the failure; it is never
// marked complete. No result exists for a failed analysis.
type AnalysisError struct {
	Kind    Kind
	Flow    string
	Server  string // empty when the failure precedes the traversal
	Partial *trace.Trace
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Server == "" {
		return fmt.Sprintf("nc: %s analysis of flow %s: %v", e.Kind, e.Flow, e.Err)
	}
	return fmt.Sprintf("nc: %s analysis of flow %s failed at %s: %v", e.Kind, e.Flow, e.Server, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
