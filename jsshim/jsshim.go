// Package jsshim generates the JavaScript glue file a host runtime loads
// alongside an instrumented module: it forwards every low-level Wasm hook
// call to the uniform high-level analysis callback set, and carries the
// static module metadata the high-level callbacks need (function
// signatures, global types, br_table targets).
//
// The forwarder shapes are carried over from js_codegen.rs (the original
// implementation this repository's instrumentation pass was distilled
// from), re-expressed as Go string-building code rather than transliterated:
// the Rust source generated one string per AST instruction variant, typed
// against its own ast::highlevel::Instr; this package generates the same
// shapes from the name and parameter types a hook was actually registered
// under in this repository's hooks.Registry.
package jsshim

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wasabi-go/wasabi/classify"
	"github.com/wasabi-go/wasabi/hooks"
	"github.com/wasabi-go/wasabi/moduleinfo"
	"github.com/wasabi-go/wasabi/wasm"
)

const header = `/*
 * Auto-generated from a WebAssembly module to analyze.
 * DO NOT EDIT.
 */
`

// controlForwarder is one of the fixed-shape monomorphic control hooks
// whose JavaScript body never varies with operand types. hookName is the
// name the Wasm-level import was registered under (see instrument's
// rewriteControl/rewriteBlockLike/rewriteIf/rewriteElse/rewriteEnd); js is
// the literal property this hook contributes to Wasabi.module.lowlevelHooks.
type controlForwarder struct {
	hookName string
	js       string
}

// controlForwarders lists every fixed-shape control hook in the order the
// original js_codegen.rs emitted them. begin_else_hook's forwarder omits
// the if_instr parameter the Rust original carried: this repository's
// begin_else call site (instrument.rewriteElse) only pushes the location
// pair, not the owning if's begin index - only end_else_hook carries that
// (see the end_else_hook reuse note in rewriteElse/rewriteEnd).
var controlForwarders = []controlForwarder{
	{"nop_hook", `"nop": function (func, instr) {
        nop({func, instr});
    },`},
	{"unreachable_hook", `"unreachable": function (func, instr) {
        unreachable({func, instr});
    },`},
	{"current_memory_hook", `"memory_size": function (func, instr, currentSizePages) {
        memory_size({func, instr}, currentSizePages);
    },`},
	{"grow_memory_hook", `"memory_grow": function (func, instr, byPages, previousSizePages) {
        memory_grow({func, instr}, byPages, previousSizePages);
    },`},
	{"begin_function_hook", `"begin_function": function (func, instr) {
        begin({func, instr}, "function");
    },`},
	{"end_function_hook", `"end_function": function (func, instr) {
        end({func, instr}, "function", {func, instr: -1});
    },`},
	{"begin_block_hook", `"begin_block": function (func, instr) {
        begin({func, instr}, "block");
    },`},
	{"end_block_hook", `"end_block": function (func, instr, begin_instr) {
        end({func, instr}, "block", {func, instr: begin_instr});
    },`},
	{"begin_loop_hook", `"begin_loop": function (func, instr) {
        begin({func, instr}, "loop");
    },`},
	{"end_loop_hook", `"end_loop": function (func, instr, begin_instr) {
        end({func, instr}, "loop", {func, instr: begin_instr});
    },`},
	{"begin_if_hook", `"begin_if": function (func, instr) {
        begin({func, instr}, "if");
    },`},
	{"end_if_hook", `"end_if": function (func, instr, if_instr) {
        end({func, instr}, "if", {func, instr: if_instr});
    },`},
	{"begin_else_hook", `"begin_else": function (func, instr) {
        begin({func, instr}, "else");
    },`},
	{"end_else_hook", `"end_else": function (func, instr, if_instr) {
        end({func, instr}, "else", {func, instr: if_instr});
    },`},
	{"if_hook", `"if_": function (func, instr, condition) {
        if_({func, instr}, condition === 1);
    },`},
	{"br_hook", `"br": function (func, instr, target_label, target_instr) {
        br({func, instr}, {label: target_label, location: {func, instr: target_instr}});
    },`},
	{"br_if_hook", `"br_if": function (func, instr, target_label, target_instr, condition) {
        br_if({func, instr}, {label: target_label, location: {func, instr: target_instr}}, condition === 1);
    },`},
	{"br_table_hook", `"br_table": function (func, instr, br_table_info_idx, table_idx) {
        br_table({func, instr}, Wasabi.module.info.brTables[br_table_info_idx].table, Wasabi.module.info.brTables[br_table_info_idx].default, table_idx);
    },`},
}

var controlHookNames = func() map[string]bool {
	out := make(map[string]bool, len(controlForwarders))
	for _, e := range controlForwarders {
		out[e.hookName] = true
	}
	return out
}()

// polyPrefixes are the polymorphic hook families' base mnemonics, longest
// first so "call_indirect"/"call_result" are tried before "call" when
// matching a registered hook name.
var polyPrefixes = func() []string {
	p := []string{
		"call_indirect", "call_result", "get_local", "set_local",
		"tee_local", "get_global", "set_global", "select", "return",
		"call", "drop",
	}
	sort.Slice(p, func(i, j int) bool { return len(p[i]) > len(p[j]) })
	return p
}()

// Generate builds the complete JavaScript shim source for a module
// instrument.Instrument has already rewritten: info's JSON becomes
// Wasabi.module.info, and reg.Names() (the hooks actually registered)
// becomes Wasabi.module.lowlevelHooks, one forwarder per name.
func Generate(info *moduleinfo.Info, reg *hooks.Registry) (string, error) {
	infoJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("jsshim: marshal module info: %w", err)
	}

	used := make(map[string]bool)
	for _, n := range reg.Names() {
		used[n] = true
	}

	var parts []string
	for _, e := range controlForwarders {
		if used[e.hookName] {
			parts = append(parts, e.js)
		}
	}

	mono := monomorphicInfo()
	for _, name := range reg.Names() {
		if controlHookNames[name] {
			continue
		}
		if mi, ok := mono[name]; ok {
			parts = append(parts, genMonomorphic(mi))
			continue
		}
		forwarder, err := genPolymorphic(name)
		if err != nil {
			return "", err
		}
		parts = append(parts, forwarder)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\nWasabi.module.info = ")
	b.Write(infoJSON)
	b.WriteString(";\n\nWasabi.module.lowlevelHooks = {\n")
	b.WriteString(indent(strings.Join(parts, "\n\n")))
	b.WriteString("\n};\n")
	return b.String(), nil
}

// monomorphicInfo reverse-indexes classify's opcode tables by mnemonic, for
// the five families (const, unary, binary, load, store) whose hook name is
// the bare mnemonic with no type-vector suffix.
func monomorphicInfo() map[string]classify.Info {
	out := make(map[string]classify.Info)
	for op := 0; op < 256; op++ {
		info, ok := classify.Classify(byte(op))
		if !ok {
			continue
		}
		switch info.Group {
		case classify.GroupConst, classify.GroupUnary, classify.GroupBinary,
			classify.GroupMemoryLoad, classify.GroupMemoryStore:
			out[info.Mnemonic] = info
		}
	}
	return out
}

func genMonomorphic(info classify.Info) string {
	switch info.Group {
	case classify.GroupConst:
		return fmt.Sprintf(`%q: function (func, instr, %s) {
        const_({func, instr}, %s);
    },`, info.Mnemonic, arg("v", info.ValType), long("v", info.ValType))
	case classify.GroupUnary:
		return fmt.Sprintf(`%q: function (func, instr, %s, %s) {
        unary({func, instr}, %q, %s, %s);
    },`, info.Mnemonic, arg("input", info.InType), arg("result", info.OutType),
			info.Mnemonic, long("input", info.InType), long("result", info.OutType))
	case classify.GroupBinary:
		return fmt.Sprintf(`%q: function (func, instr, %s, %s, %s) {
        binary({func, instr}, %q, %s, %s, %s);
    },`, info.Mnemonic, arg("first", info.AType), arg("second", info.BType), arg("result", info.OutType),
			info.Mnemonic, long("first", info.AType), long("second", info.BType), long("result", info.OutType))
	case classify.GroupMemoryLoad:
		return fmt.Sprintf(`%q: function (func, instr, offset, align, addr, %s) {
        load({func, instr}, %q, {addr, offset, align}, %s);
    },`, info.Mnemonic, arg("v", info.ValType), info.Mnemonic, long("v", info.ValType))
	case classify.GroupMemoryStore:
		return fmt.Sprintf(`%q: function (func, instr, offset, align, addr, %s) {
        store({func, instr}, %q, {addr, offset, align}, %s);
    },`, info.Mnemonic, arg("v", info.ValType), info.Mnemonic, long("v", info.ValType))
	}
	return ""
}

// genPolymorphic builds the forwarder for a polymorphic hook name (one of
// the seven families hooks.Polymorphic.Get mangles names for), recovering
// its family and concrete type vector from the name itself.
func genPolymorphic(name string) (string, error) {
	prefix, types, ok := splitPolyName(name)
	if !ok {
		return "", fmt.Errorf("jsshim: unrecognized hook name %q", name)
	}
	switch prefix {
	case "get_local", "set_local", "tee_local", "get_global", "set_global":
		return genLocalGlobal(name, prefix, types[0]), nil
	case "drop":
		return genDrop(name, types[0]), nil
	case "select":
		return genSelect(name, types), nil
	case "return":
		return genReturnLike(name, types, "return_"), nil
	case "call_result":
		return genReturnLike(name, types, "call_post"), nil
	case "call":
		return genCall(name, types), nil
	case "call_indirect":
		return genCallIndirect(name, types), nil
	}
	return "", fmt.Errorf("jsshim: unhandled hook family %q", prefix)
}

// splitPolyName recovers a polymorphic hook's family prefix and type vector
// from its mangled name (hooks.MangleName: prefix, then one underscore-
// joined "i32"/"i64"/"f32"/"f64" token per type). Value-type mnemonics never
// contain an underscore themselves, so splitting the remainder after the
// longest matching prefix on "_" is unambiguous.
func splitPolyName(name string) (prefix string, types []wasm.ValType, ok bool) {
	for _, p := range polyPrefixes {
		if name == p {
			return p, nil, true
		}
		rest, found := strings.CutPrefix(name, p+"_")
		if !found {
			continue
		}
		toks := strings.Split(rest, "_")
		ts := make([]wasm.ValType, 0, len(toks))
		valid := true
		for _, tk := range toks {
			t, ok := valTypeFromString(tk)
			if !ok {
				valid = false
				break
			}
			ts = append(ts, t)
		}
		if valid {
			return p, ts, true
		}
	}
	return "", nil, false
}

func valTypeFromString(s string) (wasm.ValType, bool) {
	switch s {
	case "i32":
		return wasm.ValI32, true
	case "i64":
		return wasm.ValI64, true
	case "f32":
		return wasm.ValF32, true
	case "f64":
		return wasm.ValF64, true
	}
	return 0, false
}

func genLocalGlobal(name, prefix string, t wasm.ValType) string {
	jsOp := map[string]string{
		"get_local":  "local.get",
		"set_local":  "local.set",
		"tee_local":  "local.tee",
		"get_global": "global.get",
		"set_global": "global.set",
	}[prefix]
	family := "local"
	if strings.HasSuffix(prefix, "global") {
		family = "global"
	}
	return fmt.Sprintf(`%q: function (func, instr, index, %s) {
        %s({func, instr}, %q, index, %s);
    },`, name, arg("v", t), family, jsOp, long("v", t))
}

func genDrop(name string, t wasm.ValType) string {
	return fmt.Sprintf(`%q: function (func, instr, %s) {
        drop({func, instr}, %s);
    },`, name, arg("v", t), long("v", t))
}

func genSelect(name string, types []wasm.ValType) string {
	t0, t1 := types[0], types[1]
	return fmt.Sprintf(`%q: function (func, instr, condition, %s, %s) {
        select({func, instr}, condition === 1, %s, %s);
    },`, name, arg("first", t0), arg("second", t1), long("first", t0), long("second", t1))
}

// genReturnLike builds both the return and call_result forwarders: they
// share a shape (a variable-length result/argument vector reported as a
// single array) and differ only in which high-level callback they forward
// to, matching js_codegen.rs's own textual-substitution shortcut for
// call_post from the return template.
func genReturnLike(name string, types []wasm.ValType, jsCallback string) string {
	params := make([]string, 0, len(types))
	longs := make([]string, 0, len(types))
	for i, t := range types {
		rn := fmt.Sprintf("result%d", i)
		params = append(params, arg(rn, t))
		longs = append(longs, long(rn, t))
	}
	paramStr := ""
	if len(params) > 0 {
		paramStr = ", " + strings.Join(params, ", ")
	}
	return fmt.Sprintf(`%q: function (func, instr%s) {
        %s({func, instr}, [%s]);
    },`, name, paramStr, jsCallback, strings.Join(longs, ", "))
}

func genCall(name string, types []wasm.ValType) string {
	params := make([]string, 0, len(types))
	longs := make([]string, 0, len(types))
	for i, t := range types {
		an := fmt.Sprintf("arg%d", i)
		params = append(params, arg(an, t))
		longs = append(longs, long(an, t))
	}
	paramStr := ""
	if len(params) > 0 {
		paramStr = ", " + strings.Join(params, ", ")
	}
	return fmt.Sprintf(`%q: function (func, instr, targetFunc%s) {
        call_pre({func, instr}, targetFunc, false, [%s]);
    },`, name, paramStr, strings.Join(longs, ", "))
}

func genCallIndirect(name string, types []wasm.ValType) string {
	params := make([]string, 0, len(types))
	longs := make([]string, 0, len(types))
	for i, t := range types {
		an := fmt.Sprintf("arg%d", i)
		params = append(params, arg(an, t))
		longs = append(longs, long(an, t))
	}
	paramStr := ""
	if len(params) > 0 {
		paramStr = ", " + strings.Join(params, ", ")
	}
	return fmt.Sprintf(`%q: function (func, instr, targetTableIdx%s) {
        call_pre({func, instr}, Wasabi.resolveTableIdx(targetTableIdx), true, [%s]);
    },`, name, paramStr, strings.Join(longs, ", "))
}

// arg renders a hook parameter name for the JS forwarder's own parameter
// list: i64 values arrive as two i32 halves at the Wasm/JS boundary.
func arg(name string, t wasm.ValType) string {
	if t == wasm.ValI64 {
		return name + "_low, " + name + "_high"
	}
	return name
}

// long renders the value passed on to the high-level callback: i64 halves
// are reassembled into a single Long (the JS runtime's 64-bit integer type).
func long(name string, t wasm.ValType) string {
	if t == wasm.ValI64 {
		return fmt.Sprintf("new Long(%s_low, %s_high)", name, name)
	}
	return name
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
