package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the adapter lifecycle the error occurred
type Phase string

const (
	PhaseConfigure Phase = "configure" // option parsing, engine selection
	PhaseLoad      Phase = "load"      // shared-library discovery
	PhaseConstruct Phase = "construct" // engine instantiation
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindSyntax        Kind = "syntax"
	KindMissingSymbol Kind = "missing_symbol"
	KindABIMismatch   Kind = "abi_mismatch"
	KindCreateFailed  Kind = "create_failed"
	KindInvalidInput  Kind = "invalid_input"
)

// Error is the structured error type used throughout the adapter
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for the adapter's error taxonomy

// NotFound reports a lookup miss, e.g. an unregistered engine name.
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Syntax reports a malformed configuration token.
func Syntax(token, expected string) *Error {
	return &Error{
		Phase:  PhaseConfigure,
		Kind:   KindSyntax,
		Detail: fmt.Sprintf("token %q: %s", token, expected),
	}
}

// MissingSymbol reports a library that exports no engine constructor.
func MissingSymbol(path, prefix string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingSymbol,
		Detail: fmt.Sprintf("loading %s failed: no exported symbol with prefix %q", path, prefix),
	}
}

// ABIMismatch reports an engine built against a different interface revision.
func ABIMismatch(engine string, got, want int32) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindABIMismatch,
		Detail: fmt.Sprintf("engine %q reports ABI version %d, adapter requires %d", engine, got, want),
	}
}

// CreateFailed reports a constructor that did not produce an instance.
func CreateFailed(engine string, cause error) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindCreateFailed,
		Detail: fmt.Sprintf("engine %q constructor failed", engine),
		Cause:  cause,
	}
}

// InvalidInput reports malformed input in the given phase.
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with phase and kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
