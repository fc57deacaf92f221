package jsshim

import (
	"strings"
	"testing"

	"github.com/wasabi-go/wasabi/instrument"
	"github.com/wasabi-go/wasabi/wasm"
)

func newTestModule(ft wasm.FuncType, code []byte) *wasm.Module {
	m := &wasm.Module{}
	typeIdx := m.AddType(ft)
	m.Funcs = []uint32{typeIdx}
	m.Code = []wasm.FuncBody{{Code: code}}
	return m
}

func TestGenerate_EmptyFunction(t *testing.T) {
	m := newTestModule(wasm.FuncType{}, []byte{wasm.OpEnd})
	info, reg, err := instrument.Instrument(m, instrument.Options{})
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	out, err := Generate(info, reg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"Wasabi.module.info",
		"Wasabi.module.lowlevelHooks",
		`"begin_function"`,
		`"end_function"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	// No other instruction family was exercised, so its forwarder must be absent.
	if strings.Contains(out, `"i32.add"`) {
		t.Errorf("output unexpectedly contains an i32.add forwarder:\n%s", out)
	}
}

func TestGenerate_AddTwoParams(t *testing.T) {
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
	info, reg, err := instrument.Instrument(m, instrument.Options{})
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	out, err := Generate(info, reg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(out, `"i32.add": function (func, instr, first, second, result) {`) {
		t.Errorf("missing i32.add binary forwarder:\n%s", out)
	}
	if !strings.Contains(out, `binary({func, instr}, "i32.add", first, second, result);`) {
		t.Errorf("i32.add forwarder body malformed:\n%s", out)
	}
	if !strings.Contains(out, `"get_local_i32": function (func, instr, index, v) {`) {
		t.Errorf("missing get_local_i32 forwarder:\n%s", out)
	}
	if !strings.Contains(out, `local({func, instr}, "local.get", index, v);`) {
		t.Errorf("get_local_i32 forwarder body malformed:\n%s", out)
	}
}

func TestGenerate_I64Return(t *testing.T) {
	ft := wasm.FuncType{Results: []wasm.ValType{wasm.ValI64}}
	code := []byte{
		wasm.OpI64Const, 42,
		wasm.OpReturn,
		wasm.OpEnd,
	}
	m := newTestModule(ft, code)
	info, reg, err := instrument.Instrument(m, instrument.Options{})
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	out, err := Generate(info, reg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(out, `"i64.const": function (func, instr, v_low, v_high) {`) {
		t.Errorf("missing i64.const forwarder with split params:\n%s", out)
	}
	if !strings.Contains(out, `const_({func, instr}, new Long(v_low, v_high));`) {
		t.Errorf("i64.const forwarder body doesn't reassemble Long:\n%s", out)
	}
	if !strings.Contains(out, `"return_i64": function (func, instr, result0_low, result0_high) {`) {
		t.Errorf("missing return_i64 forwarder:\n%s", out)
	}
	if !strings.Contains(out, `return_({func, instr}, [new Long(result0_low, result0_high)]);`) {
		t.Errorf("return_i64 forwarder body malformed:\n%s", out)
	}
}

func TestSplitPolyName(t *testing.T) {
	tests := []struct {
		name       string
		wantPrefix string
		wantTypes  []wasm.ValType
	}{
		{"drop_i32", "drop", []wasm.ValType{wasm.ValI32}},
		{"select_f64_f64", "select", []wasm.ValType{wasm.ValF64, wasm.ValF64}},
		{"get_local_i64", "get_local", []wasm.ValType{wasm.ValI64}},
		{"call_indirect_i32_f32", "call_indirect", []wasm.ValType{wasm.ValI32, wasm.ValF32}},
		{"return", "return", nil},
		{"call_result_i64", "call_result", []wasm.ValType{wasm.ValI64}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefix, types, ok := splitPolyName(tc.name)
			if !ok {
				t.Fatalf("splitPolyName(%q) failed to parse", tc.name)
			}
			if prefix != tc.wantPrefix {
				t.Errorf("prefix = %q, want %q", prefix, tc.wantPrefix)
			}
			if len(types) != len(tc.wantTypes) {
				t.Fatalf("types = %v, want %v", types, tc.wantTypes)
			}
			for i := range types {
				if types[i] != tc.wantTypes[i] {
					t.Errorf("types[%d] = %v, want %v", i, types[i], tc.wantTypes[i])
				}
			}
		})
	}
}
