package engine

import (
	"bytes"
	"context"
	"testing"

	vmbridge "github.com/hostvm/vm-bridge"
	"github.com/hostvm/vm-bridge/xvm"
)

func buildAdapter(t *testing.T, cfg *Config, stub *stubEngine) *Adapter {
	t.Helper()
	cfg.RegisterBuiltin(stub.name, KindInterpreter, stub.create)
	vm, err := cfg.Create(stub.name)
	if err != nil {
		t.Fatalf("Create(%q): %v", stub.name, err)
	}
	return vm.(*Adapter)
}

func TestAdapter_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      xvm.Result
		wantStatus  vmbridge.Status
		wantFailure vmbridge.FailureKind
		wantOutput  []byte
		wantGasLeft int64
	}{
		{
			name:        "success",
			result:      xvm.Result{Status: xvm.Success, Output: []byte{0xAA}, GasLeft: 100},
			wantStatus:  vmbridge.StatusSuccess,
			wantOutput:  []byte{0xAA},
			wantGasLeft: 100,
		},
		{
			name:        "revert keeps gas observable",
			result:      xvm.Result{Status: xvm.Revert, Output: []byte("why"), GasLeft: 42},
			wantStatus:  vmbridge.StatusRevert,
			wantOutput:  []byte("why"),
			wantGasLeft: 42,
		},
		{
			name:        "out of gas",
			result:      xvm.Result{Status: xvm.OutOfGas},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureOutOfGas,
		},
		{
			name:        "generic failure maps to out of gas",
			result:      xvm.Result{Status: xvm.Failure},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureOutOfGas,
		},
		{
			name:        "undefined instruction",
			result:      xvm.Result{Status: xvm.UndefinedInstruction},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureInvalidInstruction,
		},
		{
			name:        "bad jump destination",
			result:      xvm.Result{Status: xvm.BadJumpDestination},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureBadJump,
		},
		{
			name:        "stack overflow",
			result:      xvm.Result{Status: xvm.StackOverflow},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureStackOverflow,
		},
		{
			name:        "stack underflow",
			result:      xvm.Result{Status: xvm.StackUnderflow},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureStackUnderflow,
		},
		{
			name:        "static mode violation",
			result:      xvm.Result{Status: xvm.StaticModeViolation},
			wantStatus:  vmbridge.StatusFailure,
			wantFailure: vmbridge.FailureStaticViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubEngine("interpreter", func(msg *xvm.Message) xvm.Result {
				return tt.result
			})
			a := buildAdapter(t, NewConfig(nil), stub)
			defer a.Close()

			out := a.Execute(context.Background(), 1000, &stubEnv{gasLimit: 1000})
			if out.Status != tt.wantStatus {
				t.Fatalf("Status = %v, want %v", out.Status, tt.wantStatus)
			}
			if out.Status == vmbridge.StatusFailure && out.Failure != tt.wantFailure {
				t.Errorf("Failure = %v, want %v", out.Failure, tt.wantFailure)
			}
			if !bytes.Equal(out.Output, tt.wantOutput) {
				t.Errorf("Output = %x, want %x", out.Output, tt.wantOutput)
			}
			if tt.wantStatus != vmbridge.StatusFailure && out.GasLeft != tt.wantGasLeft {
				t.Errorf("GasLeft = %d, want %d", out.GasLeft, tt.wantGasLeft)
			}
		})
	}
}

func TestAdapter_UnrecognizedStatus(t *testing.T) {
	stub := newStubEngine("interpreter", func(msg *xvm.Message) xvm.Result {
		return xvm.Result{Status: xvm.Status(77)}
	})
	a := buildAdapter(t, NewConfig(nil), stub)
	defer a.Close()

	out := a.Execute(context.Background(), 1000, &stubEnv{gasLimit: 1000})
	if out.Status != vmbridge.StatusFailure || out.Failure != vmbridge.FailureInternal {
		t.Fatalf("outcome = %+v, want internal failure", out)
	}
	if out.RawCode != 77 {
		t.Errorf("RawCode = %d, want the raw foreign status 77", out.RawCode)
	}
}

func TestAdapter_RejectedFallsBackOnce(t *testing.T) {
	baseline := &stubBaseline{outcome: vmbridge.Success([]byte("fallback"), 900)}
	cfg := NewConfig(func() vmbridge.VM { return baseline })

	stub := newStubEngine("picky", func(msg *xvm.Message) xvm.Result {
		return xvm.Result{Status: xvm.Rejected}
	})
	a := buildAdapter(t, cfg, stub)
	defer a.Close()

	out := a.Execute(context.Background(), 1000, &stubEnv{gasLimit: 1000})

	if stub.executed != 1 {
		t.Errorf("rejecting engine executed %d times, want 1", stub.executed)
	}
	if baseline.calls != 1 {
		t.Errorf("baseline executed %d times, want exactly one fallback hop", baseline.calls)
	}
	if baseline.closed != 1 {
		t.Errorf("fallback VM closed %d times, want 1", baseline.closed)
	}
	if out.Status != vmbridge.StatusSuccess || !bytes.Equal(out.Output, []byte("fallback")) {
		t.Errorf("outcome = %+v, want the fallback's outcome", out)
	}
}

func TestAdapter_RejectedFallbackSurvivesNativeNameCollision(t *testing.T) {
	baseline := &stubBaseline{outcome: vmbridge.Success(nil, 750)}
	cfg := NewConfig(func() vmbridge.VM { return baseline })

	// A loaded engine self-reports its registry name; one that reports
	// "native" overwrites the baseline's entry. The fallback must still
	// reach the real baseline instead of re-entering the rejecting engine.
	stub := newStubEngine("native", func(msg *xvm.Message) xvm.Result {
		return xvm.Result{Status: xvm.Rejected}
	})
	cfg.RegisterBuiltin(NativeName, KindLibrary, stub.create)

	vm, err := cfg.Create(NativeName)
	if err != nil {
		t.Fatalf("Create(%q): %v", NativeName, err)
	}
	defer vm.Close()

	out := vm.Execute(context.Background(), 1000, &stubEnv{gasLimit: 1000})

	if stub.executed != 1 {
		t.Fatalf("rejecting engine executed %d times, want exactly one before the fallback hop", stub.executed)
	}
	if baseline.calls != 1 {
		t.Errorf("baseline executed %d times, want 1", baseline.calls)
	}
	if out.Status != vmbridge.StatusSuccess || out.GasLeft != 750 {
		t.Errorf("outcome = %+v, want the baseline's outcome", out)
	}
}

func TestAdapter_RejectedWithoutBaseline(t *testing.T) {
	stub := newStubEngine("picky", func(msg *xvm.Message) xvm.Result {
		return xvm.Result{Status: xvm.Rejected}
	})
	a := buildAdapter(t, NewConfig(nil), stub)
	defer a.Close()

	out := a.Execute(context.Background(), 1000, &stubEnv{gasLimit: 1000})
	if out.Status != vmbridge.StatusFailure || out.Failure != vmbridge.FailureInternal {
		t.Fatalf("outcome = %+v, want internal failure when no baseline is wired", out)
	}
}

func TestAdapter_MessageTranslation(t *testing.T) {
	var got xvm.Message
	stub := newStubEngine("interpreter", func(msg *xvm.Message) xvm.Result {
		got = *msg
		return xvm.Result{Status: xvm.Success, GasLeft: msg.Gas}
	})
	a := buildAdapter(t, NewConfig(nil), stub)
	defer a.Close()

	env := &stubEnv{
		code:     []byte{0x60, 0x00},
		input:    []byte{0x01},
		depth:    3,
		features: vmbridge.Features{Revert: true},
		number:   1234,
		time:     1700000000,
		gasLimit: 8000000,
	}
	a.Execute(context.Background(), 50000, env)

	if !bytes.Equal(got.Code, env.code) || !bytes.Equal(got.Input, env.input) {
		t.Error("code or input not forwarded")
	}
	if got.Gas != 50000 || got.Depth != 3 {
		t.Errorf("gas/depth = %d/%d, want 50000/3", got.Gas, got.Depth)
	}
	if got.Revision != xvm.RevRevert {
		t.Errorf("Revision = %v, want %v", got.Revision, xvm.RevRevert)
	}
	if got.BlockNumber != 1234 || got.Timestamp != 1700000000 || got.GasLimit != 8000000 {
		t.Error("environment numerics not forwarded")
	}
}

func TestAdapter_PreconditionPanics(t *testing.T) {
	tests := []struct {
		name string
		gas  int64
		env  *stubEnv
	}{
		{name: "negative gas", gas: -1, env: &stubEnv{}},
		{name: "negative gas limit", gas: 0, env: &stubEnv{gasLimit: -1}},
		{name: "negative block number", gas: 0, env: &stubEnv{number: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := buildAdapter(t, NewConfig(nil), newStubEngine("interpreter", nil))
			defer a.Close()
			defer func() {
				if recover() == nil {
					t.Error("Execute did not panic on precondition violation")
				}
			}()
			a.Execute(context.Background(), tt.gas, tt.env)
		})
	}
}

func TestAdapter_CloseReleasesExactlyOnce(t *testing.T) {
	stub := newStubEngine("interpreter", nil)
	a := buildAdapter(t, NewConfig(nil), stub)

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if stub.destroyed != 1 {
		t.Errorf("handle destroyed %d times, want exactly once", stub.destroyed)
	}

	defer func() {
		if recover() == nil {
			t.Error("Execute after Close did not panic")
		}
	}()
	a.Execute(context.Background(), 0, &stubEnv{})
}

// The §8-style end-to-end scenarios, driven by canned engines.

func TestScenario_DefaultEngineOutOfGas(t *testing.T) {
	stub := newStubEngine("interpreter", func(msg *xvm.Message) xvm.Result {
		if msg.Gas <= 21000 {
			return xvm.Result{Status: xvm.OutOfGas}
		}
		return xvm.Result{Status: xvm.Success, GasLeft: msg.Gas - 21000}
	})

	cfg := NewConfig(nil)
	cfg.RegisterBuiltin("interpreter", KindInterpreter, stub.create)
	if err := cfg.SetDefault("interpreter"); err != nil {
		t.Fatal(err)
	}
	for _, tok := range []string{"trace=1", "maxmem=1048576"} {
		if err := cfg.AddOption(tok); err != nil {
			t.Fatal(err)
		}
	}

	vm, err := cfg.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer vm.Close()

	out := vm.Execute(context.Background(), 21000, &stubEnv{gasLimit: 8000000})
	if out.Status != vmbridge.StatusFailure || out.Failure != vmbridge.FailureOutOfGas {
		t.Fatalf("outcome = %+v, want out-of-gas failure", out)
	}

	want := [][2]string{{"trace", "1"}, {"maxmem", "1048576"}}
	if len(stub.options) != len(want) {
		t.Fatalf("engine saw %d options, want %d", len(stub.options), len(want))
	}
	for i, w := range want {
		if stub.options[i] != w {
			t.Errorf("option[%d] = %v, want %v", i, stub.options[i], w)
		}
	}
}

func TestScenario_AlternateEngineRevert(t *testing.T) {
	data := []byte("abort reason")
	stub := newStubEngine("interpreter", func(msg *xvm.Message) xvm.Result {
		return xvm.Result{Status: xvm.Revert, Output: data, GasLeft: msg.Gas - 700}
	})

	cfg := NewConfig(nil)
	cfg.RegisterBuiltin("interpreter", KindInterpreter, stub.create)

	vm, err := cfg.Create("interpreter")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer vm.Close()

	out := vm.Execute(context.Background(), 50000, &stubEnv{gasLimit: 8000000})
	if out.Status != vmbridge.StatusRevert {
		t.Fatalf("Status = %v, want revert", out.Status)
	}
	if !bytes.Equal(out.Output, data) {
		t.Errorf("Output = %q, want the abort data", out.Output)
	}
	if out.GasLeft <= 0 || out.GasLeft > 50000 {
		t.Errorf("GasLeft = %d, want within (0, 50000]", out.GasLeft)
	}
}
