package xvm

import "fmt"

// ABIVersion is the interface revision this adapter layer was built
// against. Engines reporting a different value cannot be used.
const ABIVersion int32 = 3

// CreateSymbolPrefix identifies engine constructor symbols exported by
// loadable libraries. The first exported symbol starting with this prefix
// is bound as the library's zero-argument constructor.
const CreateSymbolPrefix = "XVMCreate"

// Revision selects the rule-set an engine applies, derived from the
// host's feature flags. Values are ordered: a larger revision enables a
// superset of the capabilities of every smaller one.
type Revision int32

const (
	RevInitial Revision = iota
	RevDelegation
	RevRepricing
	RevStateClearing
	RevRevert
	RevExtendedCreate
)

func (r Revision) String() string {
	switch r {
	case RevInitial:
		return "initial"
	case RevDelegation:
		return "delegation"
	case RevRepricing:
		return "repricing"
	case RevStateClearing:
		return "state-clearing"
	case RevRevert:
		return "revert"
	case RevExtendedCreate:
		return "extended-create"
	}
	return fmt.Sprintf("revision(%d)", int32(r))
}

// Status is the per-call status code returned by an engine.
type Status int32

const (
	Success              Status = 0
	Failure              Status = 1
	Revert               Status = 2
	OutOfGas             Status = 3
	UndefinedInstruction Status = 4
	BadJumpDestination   Status = 5
	StackOverflow        Status = 6
	StackUnderflow       Status = 7
	StaticModeViolation  Status = 8
	// Rejected means the engine declines to handle the request. It is not
	// a failure; the adapter retries the call on the baseline engine.
	Rejected      Status = 9
	InternalError Status = -1
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Revert:
		return "revert"
	case OutOfGas:
		return "out of gas"
	case UndefinedInstruction:
		return "undefined instruction"
	case BadJumpDestination:
		return "bad jump destination"
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case StaticModeViolation:
		return "static mode violation"
	case Rejected:
		return "rejected"
	case InternalError:
		return "internal error"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Message carries one execution request across the boundary.
type Message struct {
	Code        []byte
	Input       []byte
	Caller      [20]byte
	Recipient   [20]byte
	Gas         int64
	Depth       int32
	Revision    Revision
	BlockNumber int64
	Timestamp   int64
	GasLimit    int64
}

// Result is the engine's answer to one Message.
type Result struct {
	Output  []byte
	GasLeft int64
	Status  Status
}

// TraceFn receives per-step diagnostics from engines that support tracing.
type TraceFn func(step int, codeOffset int, status Status, gasLeft int64, stackItems int)

// CreateFn is the zero-argument engine constructor bound from a built-in
// or a loaded library. It returns nil when construction fails; the factory
// reports that as a fatal construction error.
type CreateFn func() *Instance

// Instance is the fixed vtable an engine hands out from its constructor.
// The engine owns the handle behind it; the execution adapter owns the
// Instance for its lifetime and releases it exactly once via Destroy.
type Instance struct {
	// ABIVersion reports the interface revision the engine implements.
	ABIVersion int32
	// Name and Version are the engine's self-reported identity.
	Name    string
	Version string

	Execute   func(vm *Instance, msg *Message) Result
	SetOption func(vm *Instance, name, value string)
	// SetTracer is nil when the engine has no tracer hook.
	SetTracer func(vm *Instance, trace TraceFn)
	Destroy   func(vm *Instance)

	// Backend holds engine-private state. Opaque to the adapter.
	Backend any
}
