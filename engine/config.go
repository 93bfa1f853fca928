package engine

import (
	"sync"

	vmbridge "github.com/hostvm/vm-bridge"
	"github.com/hostvm/vm-bridge/xvm"
)

// Kind identifies an engine family.
type Kind int

const (
	// KindNative is the in-process baseline, constructed without crossing
	// the foreign boundary. Always registered, and the initial default.
	KindNative Kind = iota
	// KindInterpreter is the alternate built-in reached through the
	// foreign interface.
	KindInterpreter
	KindJIT
	// KindWasm is a managed-runtime engine hosted in WebAssembly.
	KindWasm
	// KindLibrary marks engines discovered in shared libraries at runtime.
	KindLibrary
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindInterpreter:
		return "interpreter"
	case KindJIT:
		return "jit"
	case KindWasm:
		return "wasm"
	case KindLibrary:
		return "library"
	}
	return "unknown"
}

// NativeName is the canonical registry name of the baseline engine.
const NativeName = "native"

// Option is one name=value tuning tuple from the option sink.
type Option struct {
	Name  string
	Value string
}

// BaselineFn constructs the in-process baseline VM. The baseline never
// rejects an execution; it is the target of the adapter's rejection
// fallback.
type BaselineFn func() vmbridge.VM

type entry struct {
	create xvm.CreateFn
	kind   Kind
}

// Config is the configuration context shared by the factory and every
// adapter it constructs. Build one during startup and pass it by reference;
// there is no ambient global state.
//
// The registry and option sink are append-only for the life of the
// process: entries can be overwritten by a later registration of the same
// name, but never removed.
type Config struct {
	mu          sync.RWMutex
	entries     map[string]entry
	options     []Option
	defaultName string
	baseline    BaselineFn
}

// NewConfig builds a configuration context with the baseline engine
// registered under NativeName and selected as the default. A nil baseline
// is allowed for hosts that only inspect configuration; constructing the
// native engine then fails.
func NewConfig(baseline BaselineFn) *Config {
	return &Config{
		entries:     map[string]entry{NativeName: {kind: KindNative}},
		defaultName: NativeName,
		baseline:    baseline,
	}
}

// Default returns the name of the process-wide default engine.
func (c *Config) Default() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultName
}

// HasBaseline reports whether an in-process baseline constructor is wired.
// Without one, constructing the native engine fails and the rejection
// fallback is unavailable.
func (c *Config) HasBaseline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseline != nil
}
