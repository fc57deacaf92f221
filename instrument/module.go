package instrument

import (
	"github.com/wasabi-go/wasabi/errors"
	"github.com/wasabi-go/wasabi/hooks"
	"github.com/wasabi-go/wasabi/moduleinfo"
	"github.com/wasabi-go/wasabi/wasm"
	"github.com/wasabi-go/wasabi/wlog"
)

// Options configures an instrumentation run.
type Options struct {
	// HooksModule is the import module name the generated hook imports are
	// declared under. Defaults to hooks.ModuleName ("hooks") when empty.
	HooksModule string
}

// Instrument rewrites every module-defined function body in m so each
// original instruction is surrounded by calls into hook imports, appends
// the hooks actually used to m's import section, renumbers every
// pre-existing reference to a local function accordingly, and ensures
// table 0 is exported. It returns the static metadata and the hook
// registry the JS shim generator (package jsshim) needs.
func Instrument(m *wasm.Module, opts Options) (*moduleinfo.Info, *hooks.Registry, error) {
	importedBefore := uint32(m.NumImportedFuncs())
	wlog.Infof("instrumenting module: %d imported funcs, %d local funcs", importedBefore, len(m.Code))

	reg := hooks.NewRegistry(m, importedBefore)
	if opts.HooksModule != "" {
		reg.SetModuleName(opts.HooksModule)
	}
	mono := hooks.NewMonomorphic(reg)
	poly := hooks.NewPolymorphic(reg)
	identity := func(orig uint32) uint32 { return orig }

	for i := range m.Code {
		ft := m.GetFuncType(importedBefore + uint32(i))
		if ft == nil {
			return nil, nil, errors.NotFound(errors.PhaseInstrument, "function type", "")
		}
		if _, _, err := rewriteFunction(m, mono, poly, nil, 0, identity, ft, &m.Code[i]); err != nil {
			return nil, nil, err
		}
	}

	shift := uint32(reg.Finalize())
	wlog.Infof("registered %d distinct hooks", shift)
	renumber(m, importedBefore, shift)
	ensureTableExport(m)

	info := moduleinfo.Collect(m)

	remap := func(orig uint32) uint32 {
		if orig < importedBefore {
			return orig
		}
		return orig + shift
	}

	for i := range m.Code {
		finalFuncIdx := importedBefore + shift + uint32(i)
		ft := m.GetFuncType(finalFuncIdx)
		if ft == nil {
			return nil, nil, errors.NotFound(errors.PhaseInstrument, "function type", "")
		}
		newCode, fresh, err := rewriteFunction(m, mono, poly, info, finalFuncIdx, remap, ft, &m.Code[i])
		if err != nil {
			return nil, nil, err
		}
		m.Code[i].Code = wasm.EncodeInstructions(newCode)
		m.Code[i].Locals = append(m.Code[i].Locals, fresh...)
	}

	return info, reg, nil
}

// renumber shifts every pre-existing reference to a local (non-imported)
// function index by shift, since shift new hook imports have just been
// inserted ahead of them in the function index space.
func renumber(m *wasm.Module, importedBefore, shift uint32) {
	if shift == 0 {
		return
	}
	if m.Start != nil && *m.Start >= importedBefore {
		shifted := *m.Start + shift
		m.Start = &shifted
	}
	for i := range m.Exports {
		e := &m.Exports[i]
		if e.Kind == wasm.KindFunc && e.Idx >= importedBefore {
			e.Idx += shift
		}
	}
	for i := range m.Elements {
		funcIdxs := m.Elements[i].FuncIdxs
		for j, f := range funcIdxs {
			if f >= importedBefore {
				funcIdxs[j] = f + shift
			}
		}
	}
}

// ensureTableExport exports table 0 as "table" if no export already names
// it, so analysis code can translate call_indirect targets.
func ensureTableExport(m *wasm.Module) {
	for _, e := range m.Exports {
		if e.Kind == wasm.KindTable && e.Idx == 0 {
			return
		}
	}
	m.Exports = append(m.Exports, wasm.Export{Name: "table", Kind: wasm.KindTable, Idx: 0})
}
