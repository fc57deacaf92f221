package instrument

import "github.com/wasabi-go/wasabi/wasm"

// allocator is a function's local index space: parameter types followed by
// declared local types, with fresh locals appended on demand. Fresh-local
// allocation is a simple appending counter, never reused or pooled.
type allocator struct {
	types []wasm.ValType
	fresh []wasm.ValType
}

func newAllocator(params []wasm.ValType, declared []wasm.LocalEntry) *allocator {
	types := make([]wasm.ValType, 0, len(params)+len(declared))
	types = append(types, params...)
	for _, l := range declared {
		for i := uint32(0); i < l.Count; i++ {
			types = append(types, l.ValType)
		}
	}
	return &allocator{types: types}
}

// alloc returns the index of a freshly allocated local of type t.
func (a *allocator) alloc(t wasm.ValType) uint32 {
	idx := uint32(len(a.types))
	a.types = append(a.types, t)
	a.fresh = append(a.fresh, t)
	return idx
}

// allocN allocates one fresh local per entry in ts, in order, and returns
// their indices.
func (a *allocator) allocN(ts []wasm.ValType) []uint32 {
	out := make([]uint32, len(ts))
	for i, t := range ts {
		out[i] = a.alloc(t)
	}
	return out
}

func (a *allocator) typeOf(idx uint32) wasm.ValType {
	return a.types[idx]
}

// freshLocals returns the LocalEntry run-length encoding of every local
// allocated beyond the function's original declared set, to be appended to
// the function body's local declarations.
func (a *allocator) freshLocals() []wasm.LocalEntry {
	var out []wasm.LocalEntry
	for _, t := range a.fresh {
		if n := len(out); n > 0 && out[n-1].ValType == t {
			out[n-1].Count++
			continue
		}
		out = append(out, wasm.LocalEntry{ValType: t, Count: 1})
	}
	return out
}
