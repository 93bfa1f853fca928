// Package wasmvm hosts an execution engine compiled to WebAssembly and
// presents it through the xvm foreign interface.
//
// The wasm binary must export a small core contract:
//
//	xvm_abi_version() -> i32                  interface revision
//	xvm_describe(ret_ptr)                     name/version string pointers
//	xvm_alloc(size) -> ptr                    guest-side allocator
//	xvm_execute(msg_ptr, ret_ptr)             run one message
//	xvm_set_option(np, nl, vp, vl)            apply one tuning tuple
//	memory                                    exported linear memory
//
// The module is compiled once per Engine; every Create instantiates a
// fresh anonymous module instance, so adapters built from the same Engine
// stay isolated from each other. All pointers are offsets into the
// instance's linear memory and all integers are little-endian.
package wasmvm
