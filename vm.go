package vmbridge

import "context"

// Address identifies the caller or recipient of an execution.
type Address [20]byte

// Features is the host-side feature-flag set for one execution. Later
// milestones imply the earlier ones in the host's feature model; the
// revision mapper only inspects the single newest flag that is set.
type Features struct {
	Delegation     bool
	Repricing      bool
	StateClearing  bool
	Revert         bool
	ExtendedCreate bool
}

// Env is the execution context the host supplies for a single call.
//
// The numeric fields must be non-negative and representable in the foreign
// interface's int64 range, and Depth must fit in int32. Violations are
// programming errors on the host side; the adapter panics rather than
// reporting them as outcomes.
type Env interface {
	// Code returns the code to execute.
	Code() []byte
	// Input returns the call data passed to the code.
	Input() []byte
	Caller() Address
	Recipient() Address
	// Depth is the current call nesting depth.
	Depth() int
	Features() Features
	BlockNumber() int64
	Timestamp() int64
	GasLimit() int64
}

// VM executes code against a host-provided environment and reports a
// tagged Outcome.
//
// A VM instance is not safe for concurrent calls: one call in flight per
// instance, enforced by the adapter. Separate instances may execute
// concurrently on separate goroutines. Close releases the underlying
// engine handle and must be called exactly once per instance; the factory
// caller owns that lifecycle.
type VM interface {
	Execute(ctx context.Context, gas int64, env Env) Outcome
	Close() error
}
