package engine

import (
	"debug/elf"
	"plugin"
	"strings"

	"go.uber.org/zap"

	"github.com/hostvm/vm-bridge/errors"
	"github.com/hostvm/vm-bridge/xvm"
)

// LoadLibrary scans the shared object at path for an engine constructor,
// probes the engine's identity and registers it under its self-reported
// name, overwriting any existing entry of that name.
//
// Discovery binds the first exported symbol whose name starts with
// xvm.CreateSymbolPrefix, in whatever order the library's dynamic symbol
// table yields; if a library exports several matching symbols the choice
// is implementation-defined. A library with no matching symbol fails with
// a load error naming the path, and registers nothing.
//
// Loading is a startup-phase operation; loading concurrently with
// execution is unsupported.
func (c *Config) LoadLibrary(path string) error {
	symbols, err := exportedSymbols(path)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read symbols from "+path)
	}

	symbol, ok := findCreateSymbol(symbols)
	if !ok {
		return errors.MissingSymbol(path, xvm.CreateSymbolPrefix)
	}

	lib, err := plugin.Open(path)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "open "+path)
	}
	sym, err := lib.Lookup(symbol)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindMissingSymbol, err, "bind "+symbol+" from "+path)
	}
	create, ok := sym.(func() *xvm.Instance)
	if !ok {
		return errors.InvalidInput(errors.PhaseLoad, "symbol "+symbol+" in "+path+" is not an engine constructor")
	}

	// Probe once for the engine's identity. The probe instance is released
	// on every exit path; only the bound constructor outlives this call.
	probe := create()
	if probe == nil {
		return errors.CreateFailed(path, nil)
	}
	defer probe.Destroy(probe)

	name, version := probe.Name, probe.Version
	Logger().Info("loaded engine",
		zap.String("name", name),
		zap.String("version", version),
		zap.String("path", path))

	c.register(name, KindLibrary, xvm.CreateFn(create))
	return nil
}

// LoadLibraries loads each path in order, stopping at the first failure.
func (c *Config) LoadLibraries(paths []string) error {
	for _, path := range paths {
		if err := c.LoadLibrary(path); err != nil {
			return err
		}
	}
	return nil
}

// exportedSymbols enumerates the dynamic symbol names of the shared object
// without loading it, the way a library inspector would.
func exportedSymbols(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.DynamicSymbols()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, s.Name)
	}
	return names, nil
}

// findCreateSymbol picks the first symbol whose unqualified name carries
// the constructor prefix. Symbol names in the dynamic table may be
// package-qualified ("main.XVMCreateFoo"); the unqualified identifier is
// what the plugin lookup wants.
func findCreateSymbol(symbols []string) (string, bool) {
	for _, s := range symbols {
		name := s
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if strings.HasPrefix(name, xvm.CreateSymbolPrefix) {
			return name, true
		}
	}
	return "", false
}
