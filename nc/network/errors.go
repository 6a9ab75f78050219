package network

import "errors"

var (
	// ErrDuplicateAlias indicates a server or flow alias is already taken.
	ErrDuplicateAlias = errors.New("network: duplicate alias")
	// ErrUnknownServer indicates a server that was not added to this network.
	ErrUnknownServer = errors.New("network: unknown server")
	// ErrUnknownFlow indicates a flow that was not added to this network.
	ErrUnknownFlow = errors.New("network: unknown flow")
	// ErrMissingServiceCurve indicates a server without a defined service curve.
	ErrMissingServiceCurve = errors.New("network: missing service curve")
	// ErrMissingArrivalCurve indicates a flow without a defined arrival curve.
	ErrMissingArrivalCurve = errors.New("network: missing arrival curve")
	// ErrInvalidCurve indicates a negative or infinite curve parameter.
	ErrInvalidCurve = errors.New("network: invalid curve parameter")
	// ErrBackendMismatch indicates a curve built with another numeric backend.
	ErrBackendMismatch = errors.New("network: curve uses a different numeric backend")
	// ErrUnknownMultiplexing indicates an unrecognized multiplexing attribute.
	ErrUnknownMultiplexing = errors.New("network: unknown multiplexing")
	// ErrSelfLoop indicates a turn from a server to itself.
	ErrSelfLoop = errors.New("network: turn from a server to itself")
	// ErrCycle indicates a turn that would make the server graph cyclic.
	ErrCycle = errors.New("network: turn would create a cycle")
	// ErrNoTurn indicates consecutive path servers without a connecting turn.
	ErrNoTurn = errors.New("network: no turn between consecutive path servers")
	// ErrEmptyPath indicates a path with no servers.
	ErrEmptyPath = errors.New("network: empty path")
)
