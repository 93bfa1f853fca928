// Package engine selects, constructs and drives execution engines behind
// the xvm foreign interface.
//
// # Architecture
//
// The package provides two main types:
//
//	Config  - lifetime-scoped configuration context: the engine registry,
//	          the option sink and the process-wide default selection
//	Adapter - wraps one foreign engine handle and maps its status codes
//	          into the host's outcome vocabulary
//
// # Configuration Flow
//
//  1. NewConfig registers the in-process baseline under "native"
//  2. RegisterBuiltin adds compiled-in engine kinds
//  3. LoadLibrary scans a shared object for a constructor symbol, probes
//     the engine's identity and registers it under its reported name
//  4. AddOption appends name=value tuning tuples applied to every engine
//     constructed afterwards
//  5. Create resolves a name (or the default) and returns a ready VM
//
// Config is mutated during the single-threaded startup phase and read for
// the rest of the process lifetime; mutation is serialized internally so a
// late registration against concurrent readers stays safe.
//
// # Thread Safety
//
// Config is safe for concurrent use. Adapter is NOT: one call in flight
// per adapter, enforced with a state check that panics on reentrancy.
// Independent adapters may execute concurrently on separate goroutines.
package engine
