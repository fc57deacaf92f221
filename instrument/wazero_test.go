package instrument

import (
	"context"
	"sync"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasabi-go/wasabi/wasm"
)

// recordedCall is one observed invocation of an imported "hooks" function,
// captured as its raw Wasm-level argument words (i64 already split into two
// i32s by the instrumentation pass, so every entry here is i32/f32/f64).
type recordedCall struct {
	name string
	args []uint64
}

// hookRecorder backs a synthetic "hooks" host module: every hook import the
// instrumentation pass registered gets a generic Go function that appends
// its call to calls, so test assertions can check the exact hook sequence
// spec.md §8's scenarios describe without hand-writing one host stub per
// hook name.
type hookRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *hookRecorder) record(name string, stack []uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	args := make([]uint64, len(stack))
	copy(args, stack)
	r.calls = append(r.calls, recordedCall{name: name, args: args})
}

func (r *hookRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.name
	}
	return out
}

// apiValueType converts a wasabi value type (already i64-expanded, so only
// i32/f32/f64 ever reach here) to its wazero counterpart.
func apiValueType(t *testing.T, vt wasm.ValType) api.ValueType {
	t.Helper()
	switch vt {
	case wasm.ValI32:
		return api.ValueTypeI32
	case wasm.ValF32:
		return api.ValueTypeF32
	case wasm.ValF64:
		return api.ValueTypeF64
	default:
		t.Fatalf("hook parameter type %v should have been i64-expanded to i32 pairs", vt)
		return api.ValueTypeI32
	}
}

// instantiateWithRecordingHooks compiles and instantiates m (already
// instrumented) under wazero, backing every "hooks" import with a function
// that appends its call to the returned recorder. It returns the running
// module so the caller can invoke an exported function.
func instantiateWithRecordingHooks(t *testing.T, ctx context.Context, rt wazero.Runtime, m *wasm.Module) (api.Module, *hookRecorder) {
	t.Helper()
	rec := &hookRecorder{}

	builder := rt.NewHostModuleBuilder(hooksModuleNameFor(m))
	for _, imp := range m.Imports {
		if imp.Module != hooksModuleNameFor(m) || imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		ft := m.Types[imp.Desc.TypeIdx]
		params := make([]api.ValueType, len(ft.Params))
		for i, p := range ft.Params {
			params[i] = apiValueType(t, p)
		}
		name := imp.Name // capture for the closure below
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				rec.record(name, stack)
			}), params, nil).
			Export(name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		t.Fatalf("instantiate hooks host module: %v", err)
	}

	encoded := m.Encode()
	compiled, err := rt.CompileModule(ctx, encoded)
	if err != nil {
		t.Fatalf("compile instrumented module: %v", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("under_test"))
	if err != nil {
		t.Fatalf("instantiate instrumented module: %v", err)
	}
	return mod, rec
}

func hooksModuleNameFor(m *wasm.Module) string {
	for _, imp := range m.Imports {
		if imp.Desc.Kind == wasm.KindFunc {
			return imp.Module
		}
	}
	return "hooks"
}

// TestInstrument_ExecuteUnderWazero_AddTwoParams runs the instrumented
// (i32,i32)->i32 add function (spec.md §8 Scenario B) end to end under a
// real Wasm engine and asserts the observed hook call sequence and the
// arguments each hook received, not just the decoded instruction stream.
func TestInstrument_ExecuteUnderWazero_AddTwoParams(t *testing.T) {
	ft := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32, wasm.ValI32},
		Results: []wasm.ValType{wasm.ValI32},
	}
	m := newTestModule(ft, []byte{
		wasm.OpLocalGet, 0x00,
		wasm.OpLocalGet, 0x01,
		wasm.OpI32Add,
		wasm.OpEnd,
	})
	m.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef}}

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	funcIdx := m.NumImportedFuncs()
	m.Exports = append(m.Exports, wasm.Export{Name: "target", Kind: wasm.KindFunc, Idx: uint32(funcIdx)})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, rec := instantiateWithRecordingHooks(t, ctx, rt, m)

	fn := mod.ExportedFunction("target")
	if fn == nil {
		t.Fatal("target function not exported")
	}
	results, err := fn.Call(ctx, 3, 4)
	if err != nil {
		t.Fatalf("call target: %v", err)
	}
	if len(results) != 1 || int32(results[0]) != 7 {
		t.Fatalf("target(3, 4) = %v, want [7]", results)
	}

	wantOrder := []string{
		"begin_function_hook",
		"get_local_i32",
		"get_local_i32",
		"i32.add",
		"end_function_hook",
	}
	if got := rec.names(); !equalStrings(got, wantOrder) {
		t.Fatalf("hook call sequence = %v, want %v", got, wantOrder)
	}

	// get_local_i32(func_idx, instr_idx, local_idx, value)
	first := rec.calls[1]
	if first.args[2] != 0 || int32(first.args[3]) != 3 {
		t.Fatalf("get_local 0 call = %v, want local_idx=0 value=3", first.args)
	}
	second := rec.calls[2]
	if second.args[2] != 1 || int32(second.args[3]) != 4 {
		t.Fatalf("get_local 1 call = %v, want local_idx=1 value=4", second.args)
	}

	// i32.add(func_idx, instr_idx, a, b, result)
	add := rec.calls[3]
	if int32(add.args[2]) != 3 || int32(add.args[3]) != 4 || int32(add.args[4]) != 7 {
		t.Fatalf("i32.add call = %v, want a=3 b=4 result=7", add.args)
	}
}

// TestInstrument_ExecuteUnderWazero_I64Return runs spec.md §8 Scenario C
// (a function returning i64) and asserts the i64 value is split into the
// correct (low, high) i32 pair at both the i64.const hook and the return
// hook - exercising the i64-splitting the JS shim's Long(low, high)
// reassembly depends on.
func TestInstrument_ExecuteUnderWazero_I64Return(t *testing.T) {
	ft := wasm.FuncType{Results: []wasm.ValType{wasm.ValI64}}
	// i64.const 42; return; end
	m := newTestModule(ft, []byte{
		wasm.OpI64Const, 42,
		wasm.OpReturn,
		wasm.OpEnd,
	})
	m.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef}}

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	funcIdx := m.NumImportedFuncs()
	m.Exports = append(m.Exports, wasm.Export{Name: "target", Kind: wasm.KindFunc, Idx: uint32(funcIdx)})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, rec := instantiateWithRecordingHooks(t, ctx, rt, m)

	fn := mod.ExportedFunction("target")
	if fn == nil {
		t.Fatal("target function not exported")
	}
	results, err := fn.Call(ctx)
	if err != nil {
		t.Fatalf("call target: %v", err)
	}
	if len(results) != 1 || int64(results[0]) != 42 {
		t.Fatalf("target() = %v, want [42]", results)
	}

	wantOrder := []string{"begin_function_hook", "i64.const", "return_i64", "end_function_hook"}
	if got := rec.names(); !equalStrings(got, wantOrder) {
		t.Fatalf("hook call sequence = %v, want %v", got, wantOrder)
	}

	// i64.const(func_idx, instr_idx, value_low, value_high)
	constCall := rec.calls[1]
	if int32(constCall.args[2]) != 42 || int32(constCall.args[3]) != 0 {
		t.Fatalf("i64.const call = %v, want low=42 high=0", constCall.args)
	}

	// return_i64(func_idx, instr_idx, value_low, value_high)
	returnCall := rec.calls[2]
	if int32(returnCall.args[2]) != 42 || int32(returnCall.args[3]) != 0 {
		t.Fatalf("return_i64 call = %v, want low=42 high=0", returnCall.args)
	}
}

// TestInstrument_IfElse runs spec.md §8 Scenario D (if/else) end to end.
// The condition is true, so only the then-arm's hooks fire: if_hook sees
// the condition value, begin_if_hook opens the true arm, and the shared
// end_else_hook fires once (with the if's own begin index) as control
// exits past the unexecuted else-arm directly to end_function_hook.
func TestInstrument_IfElse(t *testing.T) {
	ft := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32},
		Results: []wasm.ValType{wasm.ValI32},
	}
	body := wasm.EncodeInstructions([]wasm.Instruction{
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
		{Opcode: wasm.OpIf, Imm: wasm.BlockImm{Type: wasm.BlockTypeI32}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 10}},
		{Opcode: wasm.OpElse},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 20}},
		{Opcode: wasm.OpEnd},
		{Opcode: wasm.OpEnd},
	})
	m := newTestModule(ft, body)
	m.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef}}

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	funcIdx := m.NumImportedFuncs()
	m.Exports = append(m.Exports, wasm.Export{Name: "target", Kind: wasm.KindFunc, Idx: uint32(funcIdx)})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, rec := instantiateWithRecordingHooks(t, ctx, rt, m)

	fn := mod.ExportedFunction("target")
	if fn == nil {
		t.Fatal("target function not exported")
	}
	results, err := fn.Call(ctx, 1)
	if err != nil {
		t.Fatalf("call target: %v", err)
	}
	if len(results) != 1 || int32(results[0]) != 10 {
		t.Fatalf("target(1) = %v, want [10]", results)
	}

	wantOrder := []string{
		"begin_function_hook",
		"get_local_i32",
		"if_hook",
		"begin_if_hook",
		"i32.const",
		"end_else_hook",
		"end_function_hook",
	}
	if got := rec.names(); !equalStrings(got, wantOrder) {
		t.Fatalf("hook call sequence = %v, want %v", got, wantOrder)
	}

	// if_hook(func_idx, instr_idx, cond)
	ifCall := rec.calls[2]
	if int32(ifCall.args[2]) != 1 {
		t.Fatalf("if_hook call = %v, want cond=1", ifCall.args)
	}
	// i32.const(func_idx, instr_idx, value) - the then-arm's literal 10
	constCall := rec.calls[4]
	if int32(constCall.args[2]) != 10 {
		t.Fatalf("i32.const call = %v, want value=10", constCall.args)
	}
	// end_else_hook(func_idx, instr_idx, if_begin_idx) - if opens at
	// instruction 1 (after local.get 0)
	endElseCall := rec.calls[5]
	if int32(endElseCall.args[2]) != 1 {
		t.Fatalf("end_else_hook call = %v, want if_begin_idx=1", endElseCall.args)
	}
}

// TestInstrument_BrTable runs spec.md §8 Scenario E (br_table inside nested
// blocks) end to end, asserting br_table_hook receives the br_table's
// recorded table index and the runtime selector value, and that the branch
// actually exits to the label the real instruction names.
func TestInstrument_BrTable(t *testing.T) {
	ft := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32},
		Results: []wasm.ValType{wasm.ValI32},
	}
	body := wasm.EncodeInstructions([]wasm.Instruction{
		{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{Type: wasm.BlockTypeVoid}}, // outer
		{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{Type: wasm.BlockTypeVoid}}, // inner
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
		{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: []uint32{0, 1}, Default: 2}},
		{Opcode: wasm.OpEnd}, // closes inner
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 50}},
		{Opcode: wasm.OpReturn},
		{Opcode: wasm.OpEnd}, // closes outer
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 42}},
		{Opcode: wasm.OpEnd}, // closes function
	})
	m := newTestModule(ft, body)
	m.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef}}

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	funcIdx := m.NumImportedFuncs()
	m.Exports = append(m.Exports, wasm.Export{Name: "target", Kind: wasm.KindFunc, Idx: uint32(funcIdx)})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, rec := instantiateWithRecordingHooks(t, ctx, rt, m)

	fn := mod.ExportedFunction("target")
	if fn == nil {
		t.Fatal("target function not exported")
	}
	// selector 1 selects table entry 1 -> label 1, which branches past the
	// outer block, skipping the inner block's "i32.const 50; return" path
	// entirely and landing on the outer "i32.const 42".
	results, err := fn.Call(ctx, 1)
	if err != nil {
		t.Fatalf("call target: %v", err)
	}
	if len(results) != 1 || int32(results[0]) != 42 {
		t.Fatalf("target(1) = %v, want [42]", results)
	}

	wantOrder := []string{
		"begin_function_hook",
		"begin_block_hook",
		"begin_block_hook",
		"get_local_i32",
		"br_table_hook",
		"i32.const",
		"end_function_hook",
	}
	if got := rec.names(); !equalStrings(got, wantOrder) {
		t.Fatalf("hook call sequence = %v, want %v", got, wantOrder)
	}

	// br_table_hook(func_idx, instr_idx, table_idx, selector)
	brTableCall := rec.calls[4]
	if int32(brTableCall.args[2]) != 0 || int32(brTableCall.args[3]) != 1 {
		t.Fatalf("br_table_hook call = %v, want table_idx=0 selector=1", brTableCall.args)
	}
	// i32.const(func_idx, instr_idx, value) - the surviving literal 42
	constCall := rec.calls[5]
	if int32(constCall.args[2]) != 42 {
		t.Fatalf("i32.const call = %v, want value=42", constCall.args)
	}
}

// TestInstrument_Call runs spec.md §8 Scenario F (call) end to end: a
// caller passes an i32 and an i64 argument to a callee returning f64,
// exercising the double save/restore around call's pre-hook (call_i32_i64)
// and post-hook (call_result_f64).
func TestInstrument_Call(t *testing.T) {
	callerFt := wasm.FuncType{Results: []wasm.ValType{wasm.ValF64}}
	calleeFt := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32, wasm.ValI64},
		Results: []wasm.ValType{wasm.ValF64},
	}

	m := &wasm.Module{}
	callerTypeIdx := m.AddType(callerFt)
	calleeTypeIdx := m.AddType(calleeFt)
	m.Funcs = []uint32{callerTypeIdx, calleeTypeIdx}
	m.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef}}

	callerBody := wasm.EncodeInstructions([]wasm.Instruction{
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 7}},
		{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: 9}},
		{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: 1}}, // calls the callee, original index 1
		{Opcode: wasm.OpEnd},
	})
	calleeBody := wasm.EncodeInstructions([]wasm.Instruction{
		{Opcode: wasm.OpF64Const, Imm: wasm.F64Imm{Value: 2.5}},
		{Opcode: wasm.OpEnd},
	})
	m.Code = []wasm.FuncBody{{Code: callerBody}, {Code: calleeBody}}

	if _, _, err := Instrument(m, Options{}); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	base := m.NumImportedFuncs()
	m.Exports = append(m.Exports, wasm.Export{Name: "target", Kind: wasm.KindFunc, Idx: uint32(base)})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, rec := instantiateWithRecordingHooks(t, ctx, rt, m)

	fn := mod.ExportedFunction("target")
	if fn == nil {
		t.Fatal("target function not exported")
	}
	results, err := fn.Call(ctx)
	if err != nil {
		t.Fatalf("call target: %v", err)
	}
	if len(results) != 1 || api.DecodeF64(results[0]) != 2.5 {
		t.Fatalf("target() = %v, want [2.5]", results)
	}

	// The actual call transfers control to the callee mid-sequence: its own
	// begin/end prologue-epilogue hooks fire between the pre-call hook and
	// the post-call hook, not after the caller's own end_function_hook.
	wantOrder := []string{
		"begin_function_hook", // caller prologue
		"i32.const",
		"i64.const",
		"call_i32_i64",
		"begin_function_hook", // callee prologue
		"f64.const",
		"end_function_hook", // callee epilogue
		"call_result_f64",
		"end_function_hook", // caller epilogue
	}
	if got := rec.names(); !equalStrings(got, wantOrder) {
		t.Fatalf("hook call sequence = %v, want %v", got, wantOrder)
	}

	// call_i32_i64(func_idx, instr_idx, target, arg0, arg1_low, arg1_high)
	preCall := rec.calls[3]
	if int32(preCall.args[3]) != 7 || int32(preCall.args[4]) != 9 || int32(preCall.args[5]) != 0 {
		t.Fatalf("call_i32_i64 call = %v, want arg0=7 arg1=(9,0)", preCall.args)
	}
	// call_result_f64(func_idx, instr_idx, result)
	postCall := rec.calls[7]
	if api.DecodeF64(postCall.args[2]) != 2.5 {
		t.Fatalf("call_result_f64 call = %v, want result=2.5", postCall.args)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
