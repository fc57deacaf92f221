// Package hooks implements the hook catalog: registration of imported
// "hooks"-module functions and the mapping from an instruction discriminant
// (its mnemonic, plus a concrete type vector for polymorphic instructions)
// to the function index of the hook that observes it.
//
// Every hook's Wasm-level signature begins with two i32 parameters (the
// enclosing function index and the instruction index within it) and returns
// nothing. Any i64 operand is represented as two i32 parameters (low half,
// high half) in that signature - JavaScript has no native 64-bit integer
// type, so the split happens at the import boundary and is reassembled by
// the generated shim.
package hooks
