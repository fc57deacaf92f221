// Package wasabi instruments WebAssembly MVP binary modules so that every
// observable execution event is intercepted by a user-supplied JavaScript
// analysis, in the style of dynamic-analysis frameworks such as Jalangi.
//
// Given a decoded module, the instrumentation pass rewrites every
// non-imported function body to call an imported "hooks" function around
// each original instruction, carrying the instruction's location, its
// operand values, and its results. A companion JavaScript file maps each
// generated low-level hook to a uniform, high-level analysis callback.
//
// # Architecture Overview
//
// The library is organized into single-purpose packages, leaves first:
//
//	wasabi/
//	├── wasm/         Binary module decoder, encoder, and instruction set
//	├── classify/     Opcode -> operand/result type signature and group
//	├── typestack/    Abstract operand-stack interpreter
//	├── blockstack/   Structured-control-flow label resolver
//	├── moduleinfo/   Static metadata collected for the JS shim
//	├── hooks/        Hook import registry (monomorphic + polymorphic)
//	├── instrument/   Per-function rewrite engine
//	├── jsshim/       JavaScript glue file generator
//	├── errors/       Structured fatal errors for the instrumentation pipeline
//	└── wlog/         Package-level zap logger
//
// # Quick Start
//
//	data, _ := os.ReadFile("in.wasm")
//	m, _ := wasm.ParseModule(data)
//	info, reg, _ := instrument.Instrument(m, instrument.Options{})
//	js, _ := jsshim.Generate(info, reg)
//	os.WriteFile("out.wasm", m.Encode(), 0o644)
//	os.WriteFile("out.js", []byte(js), 0o644)
//
// # Scope
//
// This library only rewrites and re-serializes a module; it never executes
// Wasm. It targets the Wasm MVP feature set: a single memory, a single
// anyfunc table, and the four primitive value types (i32, i64, f32, f64).
// The input module is trusted to already be valid; this package does not
// validate it.
package wasabi
