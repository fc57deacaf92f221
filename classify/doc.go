// Package classify maps every WebAssembly MVP opcode to the instrumentation
// shape it needs: which group it belongs to (Const, Unary, Binary,
// MemoryLoad, MemoryStore, Local, Global, Polymorphic, Control, Other) and,
// where the opcode alone determines it, the concrete operand/result types.
//
// Local/Global access carries a get/set/tee discriminant. Local/Global
// access and the Polymorphic group (drop, select) leave concrete types to
// the caller, since those depend on the referenced local/global's declared
// type or on the live type-stack state rather than on the opcode byte.
package classify
