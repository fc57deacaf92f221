// Package wasm provides WebAssembly binary format parsing and encoding.
//
// This package implements a parser and encoder for the WebAssembly MVP
// (1.0) binary format: the instruction and section surface needed to
// decode a module, walk its function bodies, and re-encode it to an
// equivalent module (not byte-for-byte: custom sections are written after
// all other sections). It does not implement any post-MVP proposal (GC, exception
// handling, SIMD, threads/atomics, bulk memory, tail calls, typed function
// references, multi-memory, or memory64) - none of those are needed to
// locate instrumentation points in ordinary compiled modules.
//
// # Supported Features
//
//	WebAssembly MVP (1.0):
//	  - Core value types (i32, i64, f32, f64) and funcref tables
//	  - Functions, tables, memories, globals
//	  - Control flow, calls, local/global access
//	  - Memory load/store, size/grow
//	  - Import/export of all definitions
//
// # Parsing
//
// Parse a WebAssembly module from binary:
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse with validation enabled:
//
//	module, err := wasm.ParseModuleValidate(data)
//
// # Encoding
//
// Encode a module back to binary:
//
//	encoded := module.Encode()
//
// Round-trip parsing and encoding preserves module semantics:
//
//	original, _ := wasm.ParseModule(data)
//	roundtrip, _ := wasm.ParseModule(original.Encode())
//	// original and roundtrip are semantically equivalent
//
// # Module Structure
//
// A parsed module contains all sections:
//
//	module.Types      []FuncType    // Function signatures
//	module.Funcs      []uint32      // Type indices for functions
//	module.Tables     []TableType   // Table definitions
//	module.Memories   []MemoryType  // Memory definitions
//	module.Globals    []Global      // Global definitions
//	module.Imports    []Import      // Imported definitions
//	module.Exports    []Export      // Exported definitions
//	module.Code       []FuncBody    // Function bodies
//	module.Data       []DataSegment // Data segments
//	module.Elements   []Element     // Element segments
//
// # Instructions
//
// Decode instructions from bytecode:
//
//	instructions, err := wasm.DecodeInstructions(code)
//	for _, instr := range instructions {
//	    fmt.Printf("0x%02x\n", instr.Opcode)
//	}
//
// Encode instructions back to bytecode:
//
//	encoded := wasm.EncodeInstructions(instructions)
//
// # Validation
//
// Validate module structure:
//
//	if err := module.Validate(); err != nil {
//	    log.Printf("invalid module: %v", err)
//	}
//
// Validation checks:
//   - Function and import type indices are in bounds
//   - Function, table, memory and global indices used by exports, element
//     and data segments, and the start function are in bounds
//   - Export names are unique
//   - The start function has type [] -> []
//   - A code section has as many entries as the function section
//   - Memory limits do not exceed MemoryMaxPages
//
// Instruction sequences, operand types and name encodings are not checked.
//
// # LEB128 Encoding
//
// The package provides LEB128 utilities used throughout (r is an
// io.ByteReader):
//
//	v, err := wasm.ReadLEB128u(r)  // Unsigned
//	s, err := wasm.ReadLEB128s(r)  // Signed
package wasm
