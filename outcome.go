package vmbridge

// Status tags an Outcome.
type Status uint8

const (
	// StatusSuccess means the code ran to completion; Output and GasLeft
	// are valid.
	StatusSuccess Status = iota
	// StatusRevert means the code aborted explicitly with data. It is a
	// normal outcome, not a failure: callers must still observe GasLeft.
	StatusRevert
	// StatusFailure means execution failed; Failure names the reason and
	// neither Output nor GasLeft carry guarantees.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRevert:
		return "revert"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// FailureKind names the reason for a StatusFailure outcome.
type FailureKind uint8

const (
	FailureNone FailureKind = iota
	FailureOutOfGas
	FailureInvalidInstruction
	FailureBadJump
	FailureStackOverflow
	FailureStackUnderflow
	FailureStaticViolation
	// FailureInternal is reported when the engine returned a status code
	// this adapter does not recognize; Outcome.RawCode carries the code.
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureOutOfGas:
		return "out_of_gas"
	case FailureInvalidInstruction:
		return "invalid_instruction"
	case FailureBadJump:
		return "bad_jump"
	case FailureStackOverflow:
		return "stack_overflow"
	case FailureStackUnderflow:
		return "stack_underflow"
	case FailureStaticViolation:
		return "static_violation"
	case FailureInternal:
		return "internal"
	}
	return "unknown"
}

// Outcome is the tagged result of one execution. Exactly one of the three
// Status branches applies; callers are expected to switch on Status rather
// than inspect fields blindly.
type Outcome struct {
	Output  []byte
	GasLeft int64
	Status  Status
	Failure FailureKind
	// RawCode holds the foreign status code when Failure is
	// FailureInternal, for diagnostics only.
	RawCode int32
}

// Success builds a completed outcome carrying output and remaining gas.
func Success(output []byte, gasLeft int64) Outcome {
	return Outcome{Status: StatusSuccess, Output: output, GasLeft: gasLeft}
}

// Reverted builds a revert outcome carrying the revert data and remaining gas.
func Reverted(output []byte, gasLeft int64) Outcome {
	return Outcome{Status: StatusRevert, Output: output, GasLeft: gasLeft}
}

// Failed builds a failure outcome of the given kind.
func Failed(kind FailureKind) Outcome {
	return Outcome{Status: StatusFailure, Failure: kind}
}
