package hooks

import (
	"strings"

	"github.com/wasabi-go/wasabi/wasm"
)

// ModuleName is the import module every hook function is declared under.
const ModuleName = "hooks"

// locationParams are the (func_idx, instr_idx) i32 pair every hook starts
// with.
var locationParams = []wasm.ValType{wasm.ValI32, wasm.ValI32}

// ExpandI64 replaces every i64 entry in types with two i32 entries (low
// half, high half), matching the split every i64 operand undergoes at the
// hook call boundary.
func ExpandI64(types []wasm.ValType) []wasm.ValType {
	out := make([]wasm.ValType, 0, len(types))
	for _, t := range types {
		if t == wasm.ValI64 {
			out = append(out, wasm.ValI32, wasm.ValI32)
			continue
		}
		out = append(out, t)
	}
	return out
}

// MangleName builds a hook's mangled import name: the mnemonic, followed by
// one underscore-joined type name per entry in types (for monomorphic hooks
// pass no types; the mnemonic alone is the name).
func MangleName(mnemonic string, types ...wasm.ValType) string {
	if len(types) == 0 {
		return mnemonic
	}
	var b strings.Builder
	b.WriteString(mnemonic)
	for _, t := range types {
		b.WriteByte('_')
		b.WriteString(t.String())
	}
	return b.String()
}

// Registry assigns function indices to hook imports and, on Finalize,
// appends them to a module's Import section in registration order.
//
// New imports are always appended at the end of Module.Imports. That is
// safe under the Wasm function-index-space rule (all function imports
// precede all module-defined functions) only because the caller appends
// every new hook as a function import and never interleaves other import
// kinds after them; Finalize documents the index shift this produces.
type Registry struct {
	module     *wasm.Module
	byName     map[string]uint32
	order      []string
	params     map[string][]wasm.ValType
	base       uint32
	moduleName string
}

// NewRegistry returns a Registry that will append hook imports to m. base
// is the function index the first new hook will receive - always
// m.NumImportedFuncs() taken before any hook is appended, since new hook
// imports are themselves function imports and so take the index-space
// positions immediately after the pre-existing function imports, ahead of
// every module-defined function (whose indices must increase by
// Finalize's return value as a result).
func NewRegistry(m *wasm.Module, base uint32) *Registry {
	return &Registry{
		module:     m,
		byName:     make(map[string]uint32),
		params:     make(map[string][]wasm.ValType),
		base:       base,
		moduleName: ModuleName,
	}
}

// SetModuleName overrides the import module hooks are declared under
// (default ModuleName), for callers that let the hooks import name be
// configured (e.g. the CLI's -hooks-module flag).
func (r *Registry) SetModuleName(name string) {
	r.moduleName = name
}

// Hook returns the function index for the hook named name, registering it
// (with Wasm-level parameter list (i32 func_idx, i32 instr_idx, extra...))
// the first time it is requested. extra must already have any i64 entries
// expanded via ExpandI64.
func (r *Registry) Hook(name string, extra []wasm.ValType) uint32 {
	if idx, ok := r.byName[name]; ok {
		return idx
	}
	idx := r.base + uint32(len(r.order))
	r.byName[name] = idx
	r.order = append(r.order, name)
	params := make([]wasm.ValType, 0, len(locationParams)+len(extra))
	params = append(params, locationParams...)
	params = append(params, extra...)
	r.params[name] = params
	return idx
}

// Count returns the number of distinct hooks registered so far.
func (r *Registry) Count() int {
	return len(r.order)
}

// Finalize appends every registered hook as a function import (under the
// registry's module name, "hooks" unless SetModuleName changed it) to the
// module, in registration order, and returns the number of
// hooks appended. Callers must shift every pre-existing reference to a
// local (non-imported) function index by this amount, since the new
// imports now occupy indices between the old imported functions and the
// old local functions in the function index space.
func (r *Registry) Finalize() int {
	for _, name := range r.order {
		ft := wasm.FuncType{Params: r.params[name]}
		typeIdx := r.module.AddType(ft)
		r.module.Imports = append(r.module.Imports, wasm.Import{
			Module: r.moduleName,
			Name:   name,
			Desc:   wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx},
		})
	}
	return len(r.order)
}

// Names returns the registered hook names in registration order, primarily
// for the shim generator.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Monomorphic registers a hook whose name is fixed by the opcode alone (no
// type-vector suffix).
type Monomorphic struct {
	reg *Registry
}

// NewMonomorphic wraps reg for monomorphic hook registration.
func NewMonomorphic(reg *Registry) *Monomorphic {
	return &Monomorphic{reg: reg}
}

// Get returns the function index for the monomorphic hook name, with extra
// Wasm-level parameters (already i64-expanded) after the location pair.
func (m *Monomorphic) Get(name string, extra []wasm.ValType) uint32 {
	return m.reg.Hook(name, extra)
}

// Polymorphic registers a family of hooks distinguished by a concrete type
// vector, per the seven families enumerated in the instrumentation design:
// return/call_result (function result types), local/global access and drop
// (one of the four primitive types), select (one of the four same-type
// pairs), call/call_indirect (function parameter types).
type Polymorphic struct {
	reg *Registry
}

// NewPolymorphic wraps reg for polymorphic hook registration.
func NewPolymorphic(reg *Registry) *Polymorphic {
	return &Polymorphic{reg: reg}
}

// Get returns the function index for the polymorphic hook named by
// mangling mnemonic with types. wasmParams is the hook's full Wasm-level
// parameter list after the (func_idx, instr_idx) location pair - the
// caller builds it (and applies ExpandI64 to any i64 entries) since the
// parameter order varies by instruction (e.g. local/global hooks put the
// index constant before the value; call hooks put the callee/table index
// before the arguments).
func (p *Polymorphic) Get(mnemonic string, types []wasm.ValType, wasmParams []wasm.ValType) uint32 {
	name := MangleName(mnemonic, types...)
	return p.reg.Hook(name, wasmParams)
}
