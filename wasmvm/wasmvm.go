package wasmvm

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/hostvm/vm-bridge/xvm"
)

// Exports every wasm-hosted engine must provide.
const (
	exportABIVersion = "xvm_abi_version"
	exportDescribe   = "xvm_describe"
	exportAlloc      = "xvm_alloc"
	exportExecute    = "xvm_execute"
	exportSetOption  = "xvm_set_option"
)

// Message block layout written into guest memory before xvm_execute.
const (
	msgGasOff       = 0  // i64
	msgNumberOff    = 8  // i64
	msgTimeOff      = 16 // i64
	msgGasLimitOff  = 24 // i64
	msgRevisionOff  = 32 // i32
	msgDepthOff     = 36 // i32
	msgCallerOff    = 40 // 20 bytes
	msgRecipientOff = 60 // 20 bytes
	msgCodePtrOff   = 80 // u32
	msgCodeLenOff   = 84 // u32
	msgInputPtrOff  = 88 // u32
	msgInputLenOff  = 92 // u32
	msgSize         = 96

	// Result block written by the guest at ret_ptr.
	retStatusOff  = 0  // i32
	retGasLeftOff = 8  // i64
	retOutPtrOff  = 16 // u32
	retOutLenOff  = 20 // u32
	retSize       = 24
)

// Engine is a compiled wasm-hosted execution engine. Compile once with
// Load, then hand Create to the registry as the engine's constructor.
type Engine struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// Load compiles the engine module and validates its export contract.
func Load(ctx context.Context, wasmBytes []byte) (*Engine, error) {
	r := wazero.NewRuntime(ctx)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}
	if err := checkExports(compiled); err != nil {
		r.Close(ctx)
		return nil, err
	}

	return &Engine{runtime: r, compiled: compiled}, nil
}

func checkExports(m wazero.CompiledModule) error {
	funcs := m.ExportedFunctions()
	for _, name := range []string{exportABIVersion, exportDescribe, exportAlloc, exportExecute, exportSetOption} {
		if _, ok := funcs[name]; !ok {
			return fmt.Errorf("engine module missing export %q", name)
		}
	}
	if len(m.ExportedMemories()) == 0 {
		return fmt.Errorf("engine module exports no memory")
	}
	return nil
}

// Close releases the underlying runtime. All instances created from this
// engine must be destroyed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Create is an xvm.CreateFn. Each call instantiates a fresh module
// instance so adapters stay isolated from one another. It returns nil
// when instantiation fails; the factory surfaces that as a construction
// error.
func (e *Engine) Create() *xvm.Instance {
	ctx := context.Background()

	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		Logger().Warn("instantiate wasm engine", zap.Error(err))
		return nil
	}

	b := &backend{
		mod:       mod,
		mem:       mod.Memory(),
		allocFn:   mod.ExportedFunction(exportAlloc),
		executeFn: mod.ExportedFunction(exportExecute),
		optionFn:  mod.ExportedFunction(exportSetOption),
	}

	abi, err := b.abiVersion(ctx)
	if err != nil {
		Logger().Warn("read wasm engine ABI version", zap.Error(err))
		mod.Close(ctx)
		return nil
	}
	name, version, err := b.describe(ctx, mod.ExportedFunction(exportDescribe))
	if err != nil {
		Logger().Warn("read wasm engine identity", zap.Error(err))
		mod.Close(ctx)
		return nil
	}

	return &xvm.Instance{
		ABIVersion: abi,
		Name:       name,
		Version:    version,
		Execute:    execute,
		SetOption:  setOption,
		Destroy:    destroy,
		Backend:    b,
	}
}

func execute(vm *xvm.Instance, msg *xvm.Message) xvm.Result {
	return vm.Backend.(*backend).run(context.Background(), msg)
}

func setOption(vm *xvm.Instance, name, value string) {
	vm.Backend.(*backend).setOption(context.Background(), name, value)
}

func destroy(vm *xvm.Instance) {
	b := vm.Backend.(*backend)
	if err := b.mod.Close(context.Background()); err != nil {
		Logger().Warn("close wasm engine instance", zap.Error(err))
	}
}

// backend is the guest-side half of one engine instance.
type backend struct {
	mod       api.Module
	mem       api.Memory
	allocFn   api.Function
	executeFn api.Function
	optionFn  api.Function
}

func (b *backend) abiVersion(ctx context.Context) (int32, error) {
	res, err := b.mod.ExportedFunction(exportABIVersion).Call(ctx)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("%s returned no value", exportABIVersion)
	}
	return int32(uint32(res[0])), nil
}

func (b *backend) describe(ctx context.Context, describeFn api.Function) (name, version string, err error) {
	ret, err := b.alloc(ctx, 16)
	if err != nil {
		return "", "", err
	}
	if _, err := describeFn.Call(ctx, uint64(ret)); err != nil {
		return "", "", err
	}

	raw, ok := b.mem.Read(ret, 16)
	if !ok {
		return "", "", fmt.Errorf("describe result out of bounds at %d", ret)
	}
	name, err = b.readString(binary.LittleEndian.Uint32(raw[0:4]), binary.LittleEndian.Uint32(raw[4:8]))
	if err != nil {
		return "", "", err
	}
	version, err = b.readString(binary.LittleEndian.Uint32(raw[8:12]), binary.LittleEndian.Uint32(raw[12:16]))
	if err != nil {
		return "", "", err
	}
	return name, version, nil
}

func (b *backend) readString(ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	data, ok := b.mem.Read(ptr, length)
	if !ok {
		return "", fmt.Errorf("string out of bounds: ptr=%d len=%d", ptr, length)
	}
	return string(data), nil
}

func (b *backend) alloc(ctx context.Context, size uint32) (uint32, error) {
	res, err := b.allocFn.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	if len(res) == 0 || uint32(res[0]) == 0 {
		return 0, fmt.Errorf("guest allocation of %d bytes failed", size)
	}
	return uint32(res[0]), nil
}

func (b *backend) writeBytes(ctx context.Context, data []byte) (ptr, length uint32, err error) {
	if len(data) == 0 {
		return 0, 0, nil
	}
	ptr, err = b.alloc(ctx, uint32(len(data)))
	if err != nil {
		return 0, 0, err
	}
	if !b.mem.Write(ptr, data) {
		return 0, 0, fmt.Errorf("write out of bounds: ptr=%d len=%d", ptr, len(data))
	}
	return ptr, uint32(len(data)), nil
}

func (b *backend) run(ctx context.Context, msg *xvm.Message) xvm.Result {
	codePtr, codeLen, err := b.writeBytes(ctx, msg.Code)
	if err != nil {
		return b.fault("write code", err)
	}
	inputPtr, inputLen, err := b.writeBytes(ctx, msg.Input)
	if err != nil {
		return b.fault("write input", err)
	}

	block := make([]byte, msgSize)
	binary.LittleEndian.PutUint64(block[msgGasOff:], uint64(msg.Gas))
	binary.LittleEndian.PutUint64(block[msgNumberOff:], uint64(msg.BlockNumber))
	binary.LittleEndian.PutUint64(block[msgTimeOff:], uint64(msg.Timestamp))
	binary.LittleEndian.PutUint64(block[msgGasLimitOff:], uint64(msg.GasLimit))
	binary.LittleEndian.PutUint32(block[msgRevisionOff:], uint32(msg.Revision))
	binary.LittleEndian.PutUint32(block[msgDepthOff:], uint32(msg.Depth))
	copy(block[msgCallerOff:], msg.Caller[:])
	copy(block[msgRecipientOff:], msg.Recipient[:])
	binary.LittleEndian.PutUint32(block[msgCodePtrOff:], codePtr)
	binary.LittleEndian.PutUint32(block[msgCodeLenOff:], codeLen)
	binary.LittleEndian.PutUint32(block[msgInputPtrOff:], inputPtr)
	binary.LittleEndian.PutUint32(block[msgInputLenOff:], inputLen)

	msgPtr, _, err := b.writeBytes(ctx, block)
	if err != nil {
		return b.fault("write message", err)
	}
	retPtr, err := b.alloc(ctx, retSize)
	if err != nil {
		return b.fault("allocate result", err)
	}

	if _, err := b.executeFn.Call(ctx, uint64(msgPtr), uint64(retPtr)); err != nil {
		return b.fault("execute", err)
	}

	raw, ok := b.mem.Read(retPtr, retSize)
	if !ok {
		return b.fault("read result", fmt.Errorf("result out of bounds at %d", retPtr))
	}
	status := xvm.Status(int32(binary.LittleEndian.Uint32(raw[retStatusOff:])))
	gasLeft := int64(binary.LittleEndian.Uint64(raw[retGasLeftOff:]))
	outPtr := binary.LittleEndian.Uint32(raw[retOutPtrOff:])
	outLen := binary.LittleEndian.Uint32(raw[retOutLenOff:])

	var output []byte
	if outLen > 0 {
		data, ok := b.mem.Read(outPtr, outLen)
		if !ok {
			return b.fault("read output", fmt.Errorf("output out of bounds: ptr=%d len=%d", outPtr, outLen))
		}
		// Copy out of linear memory; the guest may reuse it on the next call.
		output = append([]byte(nil), data...)
	}

	return xvm.Result{Status: status, Output: output, GasLeft: gasLeft}
}

func (b *backend) fault(what string, err error) xvm.Result {
	Logger().Warn("wasm engine call failed", zap.String("op", what), zap.Error(err))
	return xvm.Result{Status: xvm.InternalError}
}

func (b *backend) setOption(ctx context.Context, name, value string) {
	namePtr, nameLen, err := b.writeBytes(ctx, []byte(name))
	if err != nil {
		Logger().Warn("set option", zap.String("name", name), zap.Error(err))
		return
	}
	valPtr, valLen, err := b.writeBytes(ctx, []byte(value))
	if err != nil {
		Logger().Warn("set option", zap.String("name", name), zap.Error(err))
		return
	}
	if _, err := b.optionFn.Call(ctx, uint64(namePtr), uint64(nameLen), uint64(valPtr), uint64(valLen)); err != nil {
		Logger().Warn("set option", zap.String("name", name), zap.Error(err))
	}
}
