package engine

import (
	vmbridge "github.com/hostvm/vm-bridge"
	"github.com/hostvm/vm-bridge/errors"
	"github.com/hostvm/vm-bridge/xvm"
)

// Create builds a ready-to-use VM for the named engine, or for the
// process-wide default when name is empty.
//
// The native kind constructs the in-process baseline directly. Every other
// kind calls the bound foreign constructor, asserts the reported ABI
// version against xvm.ABIVersion, then wraps the handle in an Adapter that
// has every option tuple currently in the sink applied, in insertion
// order. ABI mismatch and a nil constructor result are fatal construction
// errors; unknown names are configuration errors. A failed Create never
// mutates the registry or the option sink.
func (c *Config) Create(name string) (vmbridge.VM, error) {
	c.mu.RLock()
	if name == "" {
		name = c.defaultName
	}
	ent, ok := c.entries[name]
	baseline := c.baseline
	opts := make([]Option, len(c.options))
	copy(opts, c.options)
	c.mu.RUnlock()

	if !ok {
		return nil, errors.NotFound(errors.PhaseConfigure, "engine", name)
	}

	if ent.kind == KindNative {
		if baseline == nil {
			return nil, errors.CreateFailed(name, errors.InvalidInput(errors.PhaseConstruct, "no baseline engine wired"))
		}
		return baseline(), nil
	}

	inst := ent.create()
	if inst == nil {
		return nil, errors.CreateFailed(name, nil)
	}
	if inst.ABIVersion != xvm.ABIVersion {
		got := inst.ABIVersion
		inst.Destroy(inst)
		return nil, errors.ABIMismatch(name, got, xvm.ABIVersion)
	}

	return newAdapter(c, inst, opts), nil
}
