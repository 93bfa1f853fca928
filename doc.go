// Package vmbridge defines the host-facing vocabulary of the engine
// adapter layer: the VM interface produced by the factory, the Env
// execution context consumed from the host, the tagged Outcome value, and
// the feature-flag to revision mapping.
//
// The packages underneath adapt interchangeable execution engines exposed
// through the fixed xvm interface:
//
//	xvm     - the foreign engine ABI this layer consumes
//	engine  - registry, option sink, factory and execution adapter
//	wasmvm  - hosts an engine compiled to WebAssembly behind the xvm ABI
//	errors  - structured configuration and construction errors
//
// Execution failures are never Go errors: every call returns an Outcome
// whose Status distinguishes success, revert and failure, so a revert (a
// normal outcome carrying caller data) cannot be confused with a fault.
package vmbridge
