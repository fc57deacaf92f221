package instrument

import "github.com/wasabi-go/wasabi/wasm"

// builder accumulates the rewritten instruction sequence for one function.
type builder struct {
	out []wasm.Instruction
}

func newBuilder(capHint int) *builder {
	return &builder{out: make([]wasm.Instruction, 0, capHint)}
}

func (b *builder) emit(instr wasm.Instruction) {
	b.out = append(b.out, instr)
}

func (b *builder) i32Const(v int32) {
	b.emit(wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: v}})
}

func (b *builder) i64Const(v int64) {
	b.emit(wasm.Instruction{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: v}})
}

func (b *builder) localGet(idx uint32) {
	b.emit(wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: idx}})
}

func (b *builder) localSet(idx uint32) {
	b.emit(wasm.Instruction{Opcode: wasm.OpLocalSet, Imm: wasm.LocalImm{LocalIdx: idx}})
}

func (b *builder) localTee(idx uint32) {
	b.emit(wasm.Instruction{Opcode: wasm.OpLocalTee, Imm: wasm.LocalImm{LocalIdx: idx}})
}

func (b *builder) call(funcIdx uint32) {
	b.emit(wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: funcIdx}})
}

// loc emits the (func_idx, instr_idx) location constant pair every hook
// call is preceded by.
func (b *builder) loc(funcIdx, instrIdx uint32) {
	b.i32Const(int32(funcIdx))
	b.i32Const(int32(instrIdx))
}

// i64Split emits the i32.wrap_i64 / shift-and-wrap sequence that turns the
// i64 value currently in local into its low and high i32 halves, each
// pushed onto the stack in that order.
func (b *builder) i64Split(local uint32) {
	b.localGet(local)
	b.emit(wasm.Instruction{Opcode: wasm.OpI32WrapI64})
	b.localGet(local)
	b.i64Const(32)
	b.emit(wasm.Instruction{Opcode: wasm.OpI64ShrU})
	b.emit(wasm.Instruction{Opcode: wasm.OpI32WrapI64})
}

// restore emits a local.get for local, splitting into low/high i32 halves
// first if t is i64.
func (b *builder) restore(local uint32, t wasm.ValType) {
	if t == wasm.ValI64 {
		b.i64Split(local)
		return
	}
	b.localGet(local)
}

// restoreAll emits restore for each (local, type) pair in order - the
// restore_locals_with_i64_handling contract.
func (b *builder) restoreAll(locals []uint32, types []wasm.ValType) {
	for i, l := range locals {
		b.restore(l, types[i])
	}
}

// saveStackToLocals implements the save_stack_to_locals contract: the top
// n values on the stack (left-to-right reading order locals[0]..locals[n-1],
// locals[n-1] topmost) are popped into the named locals and then restored
// onto the stack in the same order, without any type conversion.
func (b *builder) saveStackToLocals(locals []uint32) {
	n := len(locals)
	if n == 0 {
		return
	}
	for i := n - 1; i >= 1; i-- {
		b.localSet(locals[i])
	}
	b.localTee(locals[0])
	for i := 1; i < n; i++ {
		b.localGet(locals[i])
	}
}
