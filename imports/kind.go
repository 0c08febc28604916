package imports

import "fmt"

// CallKind describes how a call through an import is made.
type CallKind uint8

const (
	// LinkError: the provider's type is not compatible with the import.
	LinkError CallKind = iota
	// RuntimeTypeError: the import's signature has a type the host cannot
	// carry, so every call traps.
	RuntimeTypeError
	// WasmToHost: a direct call into a host function.
	WasmToHost
	// WasmToWasm: a direct call into another wasm module.
	WasmToWasm

	// NumCallKinds is the number of call kinds.
	NumCallKinds = iota
)

func (k CallKind) String() string {
	switch k {
	case LinkError:
		return "link-error"
	case RuntimeTypeError:
		return "runtime-type-error"
	case WasmToHost:
		return "wasm-to-host"
	case WasmToWasm:
		return "wasm-to-wasm"
	default:
		return fmt.Sprintf("callkind(%d)", uint8(k))
	}
}
