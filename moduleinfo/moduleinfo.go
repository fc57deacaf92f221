package moduleinfo

import "github.com/wasabi-go/wasabi/wasm"

// FuncSig is a function's parameter and result type vectors, serialized as
// mnemonic value-type strings ("i32", "i64", "f32", "f64").
type FuncSig struct {
	Params  []string `json:"params"`
	Results []string `json:"results"`
}

// GlobalSig is a global's value type and mutability.
type GlobalSig struct {
	Type    string `json:"type"`
	Mutable bool   `json:"mutable"`
}

// BrTable is one br_table's target set, recorded once per AddBrTable call
// (identical (targets, default) pairs get separate records) and referenced
// by its index in the info record.
type BrTable struct {
	Targets []uint32 `json:"table"`
	Default uint32   `json:"default"`
}

// Info is the complete set of static metadata emitted into the shim.
type Info struct {
	Functions []FuncSig   `json:"functions"`
	Globals   []GlobalSig `json:"globals"`
	BrTables  []BrTable   `json:"brTables"`
}

// Collect gathers function signatures and global types from m's current
// (final) index space. Call it after the instrumentation pass has finished
// appending hook imports and renumbering call sites, so the reported
// indices match the output module.
func Collect(m *wasm.Module) *Info {
	info := &Info{}

	total := m.NumImportedFuncs() + len(m.Funcs)
	for i := 0; i < total; i++ {
		ft := m.GetFuncType(uint32(i))
		sig := FuncSig{}
		if ft != nil {
			sig.Params = valTypeStrings(ft.Params)
			sig.Results = valTypeStrings(ft.Results)
		}
		info.Functions = append(info.Functions, sig)
	}

	for _, imp := range m.Imports {
		if imp.Desc.Kind == wasm.KindGlobal && imp.Desc.Global != nil {
			info.Globals = append(info.Globals, GlobalSig{
				Type:    imp.Desc.Global.ValType.String(),
				Mutable: imp.Desc.Global.Mutable,
			})
		}
	}
	for _, g := range m.Globals {
		info.Globals = append(info.Globals, GlobalSig{
			Type:    g.Type.ValType.String(),
			Mutable: g.Type.Mutable,
		})
	}

	return info
}

// AddBrTable records a br_table (targets, default) pair and returns the
// index it was recorded under, for the instrumentation pass to pass to the
// br_table hook.
func (info *Info) AddBrTable(targets []uint32, def uint32) int {
	idx := len(info.BrTables)
	cp := make([]uint32, len(targets))
	copy(cp, targets)
	info.BrTables = append(info.BrTables, BrTable{Targets: cp, Default: def})
	return idx
}

func valTypeStrings(ts []wasm.ValType) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
