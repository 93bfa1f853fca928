package engine

import (
	"context"

	vmbridge "github.com/hostvm/vm-bridge"
	"github.com/hostvm/vm-bridge/xvm"
)

// stubEngine fabricates xvm.Instance values with canned behavior for
// factory and adapter tests.
type stubEngine struct {
	name      string
	version   string
	abi       int32
	execute   func(msg *xvm.Message) xvm.Result
	options   [][2]string
	destroyed int
	executed  int
}

func newStubEngine(name string, execute func(msg *xvm.Message) xvm.Result) *stubEngine {
	return &stubEngine{name: name, version: "0.1.0", abi: xvm.ABIVersion, execute: execute}
}

func (s *stubEngine) create() *xvm.Instance {
	return &xvm.Instance{
		ABIVersion: s.abi,
		Name:       s.name,
		Version:    s.version,
		Execute: func(vm *xvm.Instance, msg *xvm.Message) xvm.Result {
			s.executed++
			if s.execute == nil {
				return xvm.Result{Status: xvm.Success, GasLeft: msg.Gas}
			}
			return s.execute(msg)
		},
		SetOption: func(vm *xvm.Instance, name, value string) {
			s.options = append(s.options, [2]string{name, value})
		},
		Destroy: func(vm *xvm.Instance) {
			s.destroyed++
		},
	}
}

// stubEnv implements vmbridge.Env with fixed values.
type stubEnv struct {
	code     []byte
	input    []byte
	depth    int
	features vmbridge.Features
	number   int64
	time     int64
	gasLimit int64
}

func (e *stubEnv) Code() []byte                { return e.code }
func (e *stubEnv) Input() []byte               { return e.input }
func (e *stubEnv) Caller() vmbridge.Address    { return vmbridge.Address{0x01} }
func (e *stubEnv) Recipient() vmbridge.Address { return vmbridge.Address{0x02} }
func (e *stubEnv) Depth() int                  { return e.depth }
func (e *stubEnv) Features() vmbridge.Features { return e.features }
func (e *stubEnv) BlockNumber() int64          { return e.number }
func (e *stubEnv) Timestamp() int64            { return e.time }
func (e *stubEnv) GasLimit() int64             { return e.gasLimit }

// stubBaseline is an in-process baseline VM recording its calls.
type stubBaseline struct {
	calls   int
	closed  int
	outcome vmbridge.Outcome
}

func (b *stubBaseline) Execute(ctx context.Context, gas int64, env vmbridge.Env) vmbridge.Outcome {
	b.calls++
	return b.outcome
}

func (b *stubBaseline) Close() error {
	b.closed++
	return nil
}
