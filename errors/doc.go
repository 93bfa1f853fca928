// Package errors defines the structured error type for the configuration
// and construction phases of the engine adapter.
//
// Only those phases produce Go errors. Per-execution failures are part of
// the outcome vocabulary (vmbridge.Outcome) and never surface as errors,
// so a revert cannot be mistaken for a fault.
package errors
