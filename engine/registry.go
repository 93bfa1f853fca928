package engine

import (
	"sort"

	"github.com/hostvm/vm-bridge/errors"
	"github.com/hostvm/vm-bridge/xvm"
)

// RegisterBuiltin registers a compiled-in engine constructor under its
// canonical lowercase name. Registering an existing name overwrites it:
// last registration wins.
func (c *Config) RegisterBuiltin(name string, kind Kind, create xvm.CreateFn) {
	c.register(name, kind, create)
}

func (c *Config) register(name string, kind Kind, create xvm.CreateFn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = entry{kind: kind, create: create}
}

// Resolve looks up a registered engine by exact name and returns its kind.
// Unknown names fail with a configuration not-found error.
func (c *Config) Resolve(name string) (Kind, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ent, ok := c.entries[name]
	if !ok {
		return 0, errors.NotFound(errors.PhaseConfigure, "engine", name)
	}
	return ent.kind, nil
}

// Names returns the registered engine names for help text. Sorted for
// stable output; the order carries no contract.
func (c *Config) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefault selects the process-wide default engine. The name is
// validated against the registry immediately, so an unknown selection is
// rejected at configuration time.
func (c *Config) SetDefault(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; !ok {
		return errors.NotFound(errors.PhaseConfigure, "engine", name)
	}
	c.defaultName = name
	return nil
}
