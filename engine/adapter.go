package engine

import (
	"context"
	"math"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	vmbridge "github.com/hostvm/vm-bridge"
	"github.com/hostvm/vm-bridge/xvm"
)

const (
	stateIdle int32 = iota
	stateExecuting
	stateClosed
)

// Adapter owns one foreign engine handle for its lifetime and maps the
// engine's per-call status codes into the host's outcome vocabulary.
//
// An Adapter is NOT safe for concurrent calls: one call in flight per
// instance, enforced with a state check that panics on reentrancy. The
// handle must never be shared across adapters and never outlives Close.
type Adapter struct {
	cfg   *Config
	inst  *xvm.Instance
	log   *zap.Logger
	state atomic.Int32
}

func newAdapter(cfg *Config, inst *xvm.Instance, opts []Option) *Adapter {
	for _, o := range opts {
		inst.SetOption(inst, o.Name, o.Value)
	}

	a := &Adapter{cfg: cfg, inst: inst, log: Logger()}

	// Tracer hookup is diagnostics only; with the default no-op logger the
	// engine runs untraced and behavior is identical.
	if inst.SetTracer != nil && a.log.Core().Enabled(zapcore.DebugLevel) {
		log := a.log
		inst.SetTracer(inst, func(step, codeOffset int, status xvm.Status, gasLeft int64, stackItems int) {
			log.Debug("trace",
				zap.Int("step", step),
				zap.Int("code_offset", codeOffset),
				zap.Stringer("status", status),
				zap.Int64("gas_left", gasLeft),
				zap.Int("stack_items", stackItems))
		})
	}

	a.log.Debug("engine ready",
		zap.String("engine", inst.Name),
		zap.String("version", inst.Version))
	return a
}

// Name returns the engine's self-reported name.
func (a *Adapter) Name() string { return a.inst.Name }

// Version returns the engine's self-reported version.
func (a *Adapter) Version() string { return a.inst.Version }

// Execute runs env's code with the given gas budget on the wrapped engine
// and maps the foreign status to an Outcome.
//
// A Rejected status triggers exactly one fallback hop: the identical call
// is re-issued against a fresh baseline engine and its outcome returned.
// The baseline's outcome vocabulary has no rejection member, so a second
// hop cannot occur.
func (a *Adapter) Execute(ctx context.Context, gas int64, env vmbridge.Env) vmbridge.Outcome {
	if gas < 0 {
		panic("engine: negative gas budget")
	}
	if env.GasLimit() < 0 || env.BlockNumber() < 0 || env.Timestamp() < 0 {
		panic("engine: env numeric field outside foreign range")
	}
	if env.Depth() < 0 || env.Depth() > math.MaxInt32 {
		panic("engine: call depth outside foreign range")
	}
	if !a.state.CompareAndSwap(stateIdle, stateExecuting) {
		panic("engine: adapter busy or closed")
	}
	defer a.state.CompareAndSwap(stateExecuting, stateIdle)

	msg := xvm.Message{
		Code:        env.Code(),
		Input:       env.Input(),
		Caller:      env.Caller(),
		Recipient:   env.Recipient(),
		Gas:         gas,
		Depth:       int32(env.Depth()),
		Revision:    vmbridge.RevisionFor(env.Features()),
		BlockNumber: env.BlockNumber(),
		Timestamp:   env.Timestamp(),
		GasLimit:    env.GasLimit(),
	}

	a.log.Debug("message start",
		zap.String("engine", a.inst.Name),
		zap.Int32("depth", msg.Depth),
		zap.Int64("gas", gas))
	res := a.inst.Execute(a.inst, &msg)
	a.log.Debug("message end",
		zap.String("engine", a.inst.Name),
		zap.Stringer("status", res.Status),
		zap.Int64("gas_left", res.GasLeft))

	switch res.Status {
	case xvm.Success:
		return vmbridge.Success(res.Output, res.GasLeft)
	case xvm.Revert:
		return vmbridge.Reverted(res.Output, res.GasLeft)
	case xvm.OutOfGas, xvm.Failure:
		return vmbridge.Failed(vmbridge.FailureOutOfGas)
	case xvm.UndefinedInstruction:
		return vmbridge.Failed(vmbridge.FailureInvalidInstruction)
	case xvm.BadJumpDestination:
		return vmbridge.Failed(vmbridge.FailureBadJump)
	case xvm.StackOverflow:
		return vmbridge.Failed(vmbridge.FailureStackOverflow)
	case xvm.StackUnderflow:
		return vmbridge.Failed(vmbridge.FailureStackUnderflow)
	case xvm.StaticModeViolation:
		return vmbridge.Failed(vmbridge.FailureStaticViolation)
	case xvm.Rejected:
		return a.fallback(ctx, gas, env)
	default:
		a.log.Warn("unrecognized engine status",
			zap.String("engine", a.inst.Name),
			zap.Int32("status", int32(res.Status)))
		out := vmbridge.Failed(vmbridge.FailureInternal)
		out.RawCode = int32(res.Status)
		return out
	}
}

func (a *Adapter) fallback(ctx context.Context, gas int64, env vmbridge.Env) vmbridge.Outcome {
	a.log.Warn("execution rejected by engine, falling back to baseline",
		zap.String("engine", a.inst.Name))

	// The target is the baseline constructor itself, never the registry's
	// "native" entry: a loaded engine may have overwritten that name, and a
	// rejecting engine reached through it would reject again, without bound.
	a.cfg.mu.RLock()
	baseline := a.cfg.baseline
	a.cfg.mu.RUnlock()
	if baseline == nil {
		a.log.Error("baseline fallback unavailable: no baseline engine wired")
		out := vmbridge.Failed(vmbridge.FailureInternal)
		out.RawCode = int32(xvm.Rejected)
		return out
	}

	vm := baseline()
	defer vm.Close()
	return vm.Execute(ctx, gas, env)
}

// Close releases the foreign handle. The first call destroys the handle;
// later calls are no-ops. Closing mid-execution is a programming error.
func (a *Adapter) Close() error {
	for {
		switch s := a.state.Load(); s {
		case stateClosed:
			return nil
		case stateExecuting:
			panic("engine: close during execution")
		default:
			if a.state.CompareAndSwap(s, stateClosed) {
				a.inst.Destroy(a.inst)
				return nil
			}
		}
	}
}

var _ vmbridge.VM = (*Adapter)(nil)
