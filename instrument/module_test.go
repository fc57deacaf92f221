package instrument

import (
	"testing"

	"github.com/wasabi-go/wasabi/wasm"
)

func newTestModule(ft wasm.FuncType, code []byte) *wasm.Module {
	m := &wasm.Module{}
	typeIdx := m.AddType(ft)
	m.Funcs = []uint32{typeIdx}
	m.Code = []wasm.FuncBody{{Code: code}}
	return m
}

func hookIdx(t *testing.T, m *wasm.Module, name string) uint32 {
	t.Helper()
	for i, imp := range m.Imports {
		if imp.Module == "hooks" && imp.Name == name {
			return uint32(i)
		}
	}
	t.Fatalf("no hook import named %q", name)
	return 0
}

// TestInstrument_EmptyFunction exercises the empty-function case: a body
// consisting of nothing but the closing end. Only begin_function_hook and
// end_function_hook are ever registered.
func TestInstrument_EmptyFunction(t *testing.T) {
	m := newTestModule(wasm.FuncType{}, []byte{wasm.OpEnd})

	info, _, err := Instrument(m, Options{})
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}
	if info == nil {
		t.Fatal("Instrument returned nil info")
	}

	if len(m.Imports) != 2 {
		t.Fatalf("imports = %d, want 2 (begin_function_hook, end_function_hook)", len(m.Imports))
	}
	beginIdx := hookIdx(t, m, "begin_function_hook")
	endIdx := hookIdx(t, m, "end_function_hook")

	funcIdx := uint32(m.NumImportedFuncs()) // the only local function, now shifted past the 2 hooks
	instrs, err := wasm.DecodeInstructions(m.Code[0].Code)
	if err != nil {
		t.Fatalf("decode rewritten body: %v", err)
	}

	want := []wasm.Instruction{
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(funcIdx)}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: -1}},
		{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: beginIdx}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(funcIdx)}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 0}},
		{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: endIdx}},
		{Opcode: wasm.OpEnd},
	}
	assertInstrs(t, instrs, want)
}

// TestInstrument_AddTwoParams exercises (i32,i32)->i32 built from
// get_local 0; get_local 1; i32.add; end - three original instructions,
// each preceded by its own location pair, plus the function prologue and
// epilogue hooks.
func TestInstrument_AddTwoParams(t *testing.T) {
	ft := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32, wasm.ValI32},
		Results: []wasm.ValType{wasm.ValI32},
	}
	code := []byte{
		wasm.OpLocalGet, 0x00,
		wasm.OpLocalGet, 0x01,
		wasm.OpI32Add,
		wasm.OpEnd,
	}
	m := newTestModule(ft, code)

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	getLocalHook := hookIdx(t, m, "get_local_i32")
	addHook := hookIdx(t, m, "i32.add")

	instrs, err := wasm.DecodeInstructions(m.Code[0].Code)
	if err != nil {
		t.Fatalf("decode rewritten body: %v", err)
	}

	callCount := map[uint32]int{}
	for _, instr := range instrs {
		if instr.Opcode == wasm.OpCall {
			callCount[instr.Imm.(wasm.CallImm).FuncIdx]++
		}
	}
	if callCount[getLocalHook] != 2 {
		t.Errorf("get_local_i32 called %d times, want 2", callCount[getLocalHook])
	}
	if callCount[addHook] != 1 {
		t.Errorf("i32.add called %d times, want 1", callCount[addHook])
	}

	// The original instructions still appear in order.
	var origOps []byte
	for _, instr := range instrs {
		switch instr.Opcode {
		case wasm.OpLocalGet, wasm.OpI32Add, wasm.OpEnd:
			origOps = append(origOps, instr.Opcode)
		}
	}
	wantOps := []byte{wasm.OpLocalGet, wasm.OpLocalGet, wasm.OpI32Add, wasm.OpEnd}
	if len(origOps) != len(wantOps) {
		t.Fatalf("original op sequence = %v, want %v", origOps, wantOps)
	}
	for i := range wantOps {
		if origOps[i] != wantOps[i] {
			t.Errorf("original op[%d] = %#x, want %#x", i, origOps[i], wantOps[i])
		}
	}
}

// TestInstrument_I64Return exercises i64.const 42; return; end, checking
// that both the const hook and the return hook receive the value split
// into low/high i32 halves.
func TestInstrument_I64Return(t *testing.T) {
	ft := wasm.FuncType{Results: []wasm.ValType{wasm.ValI64}}
	code := []byte{
		wasm.OpI64Const, 42, // LEB128 42 fits in one byte
		wasm.OpReturn,
		wasm.OpEnd,
	}
	m := newTestModule(ft, code)

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	returnHook := hookIdx(t, m, "return_i64")
	constHook := hookIdx(t, m, "i64.const")

	instrs, err := wasm.DecodeInstructions(m.Code[0].Code)
	if err != nil {
		t.Fatalf("decode rewritten body: %v", err)
	}

	var sawConst, sawReturn bool
	for i, instr := range instrs {
		if instr.Opcode != wasm.OpCall {
			continue
		}
		target := instr.Imm.(wasm.CallImm).FuncIdx
		if target == constHook {
			sawConst = true
			// i64.const's hook args are computed directly as literal
			// constants, not via a runtime split.
			checkI64SplitArgsBefore(t, instrs, i, 42)
		}
		if target == returnHook {
			sawReturn = true
			// return_i64's arg comes from the runtime i64-split sequence
			// (local.get/i32.wrap_i64 for the low half,
			// local.get/i64.const 32/i64.shr_u/i32.wrap_i64 for the high
			// half), not literal constants - check its shape instead.
			if i < 6 {
				t.Fatalf("call to return_i64 at %d has no room for the split sequence", i)
			}
			if instrs[i-1].Opcode != wasm.OpI32WrapI64 {
				t.Errorf("instruction before return_i64 call = %#x, want i32.wrap_i64", instrs[i-1].Opcode)
			}
			var shifts int
			for _, s := range instrs[i-6 : i] {
				if s.Opcode == wasm.OpI64ShrU {
					shifts++
				}
			}
			if shifts != 1 {
				t.Errorf("i64.shr_u count in split sequence = %d, want 1", shifts)
			}
		}
	}
	if !sawConst {
		t.Error("i64.const hook never called")
	}
	if !sawReturn {
		t.Error("return_i64 hook never called")
	}
}

// checkI64SplitArgsBefore verifies the two i32 consts immediately
// preceding the call at instrs[callIdx] encode wantVal's low and high
// halves.
func checkI64SplitArgsBefore(t *testing.T, instrs []wasm.Instruction, callIdx int, wantVal int64) {
	t.Helper()
	if callIdx < 2 {
		t.Fatalf("call at %d has no room for i64-split args", callIdx)
	}
	low, ok1 := instrs[callIdx-2].Imm.(wasm.I32Imm)
	high, ok2 := instrs[callIdx-1].Imm.(wasm.I32Imm)
	if !ok1 || !ok2 {
		t.Fatalf("args before call at %d are not i32 consts: %+v, %+v", callIdx, instrs[callIdx-2], instrs[callIdx-1])
	}
	wantLow := int32(wantVal)
	wantHigh := int32(wantVal >> 32)
	if low.Value != wantLow || high.Value != wantHigh {
		t.Errorf("i64 split = (%d,%d), want (%d,%d)", low.Value, high.Value, wantLow, wantHigh)
	}
}
