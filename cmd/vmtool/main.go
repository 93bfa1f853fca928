package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hostvm/vm-bridge/engine"
	"github.com/hostvm/vm-bridge/wasmvm"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		libs    stringList
		options stringList
	)
	var (
		wasmFile    = flag.String("wasm", "", "Path to a wasm engine module to register")
		vmName      = flag.String("vm", "", "Engine to select as default")
		list        = flag.Bool("list", false, "List registered engines and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Var(&libs, "load", "Shared library with an engine to load (repeatable)")
	flag.Var(&options, "option", "Engine option as name=value (repeatable)")
	flag.Parse()

	if *wasmFile == "" && len(libs) == 0 && !*list {
		fmt.Fprintln(os.Stderr, "Usage: vmtool [-load lib.so]... [-wasm engine.wasm] [-option k=v]... [-vm name]")
		fmt.Fprintln(os.Stderr, "       vmtool -list  (show registered engines)")
		fmt.Fprintln(os.Stderr, "       vmtool -i     (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		engine.SetLogger(log)
		wasmvm.SetLogger(log)
	}

	cfg, cleanup, err := configure(libs, options, *wasmFile, *vmName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printConfig(cfg)
}

// configure builds the engine configuration from the command line. The
// returned cleanup releases the wasm runtime, if one was loaded.
func configure(libs, options stringList, wasmFile, vmName string) (*engine.Config, func(), error) {
	ctx := context.Background()
	cleanup := func() {}

	cfg := engine.NewConfig(nil)

	if wasmFile != "" {
		data, err := os.ReadFile(wasmFile)
		if err != nil {
			return nil, cleanup, fmt.Errorf("read wasm engine: %w", err)
		}
		eng, err := wasmvm.Load(ctx, data)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { eng.Close(ctx) }
		cfg.RegisterBuiltin("wasm", engine.KindWasm, eng.Create)
	}

	if err := cfg.LoadLibraries(libs); err != nil {
		return nil, cleanup, err
	}
	for _, raw := range options {
		if err := cfg.AddOption(raw); err != nil {
			return nil, cleanup, err
		}
	}
	if vmName != "" {
		if err := cfg.SetDefault(vmName); err != nil {
			return nil, cleanup, err
		}
	}
	return cfg, cleanup, nil
}

func printConfig(cfg *engine.Config) {
	fmt.Printf("Default engine: %s\n\n", cfg.Default())

	fmt.Println("Registered engines:")
	for _, name := range cfg.Names() {
		kind, err := cfg.Resolve(name)
		if err != nil {
			continue
		}
		note := ""
		if kind == engine.KindNative && !cfg.HasBaseline() {
			note = "  (no baseline wired; not constructible)"
		}
		fmt.Printf("  %-16s %s%s\n", name, kind, note)
	}

	if opts := cfg.Options(); len(opts) > 0 {
		fmt.Println("\nOptions:")
		for _, o := range opts {
			fmt.Printf("  %s=%s\n", o.Name, o.Value)
		}
	}
}
