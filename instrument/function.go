package instrument

import (
	"fmt"

	"github.com/wasabi-go/wasabi/blockstack"
	"github.com/wasabi-go/wasabi/classify"
	"github.com/wasabi-go/wasabi/errors"
	"github.com/wasabi-go/wasabi/hooks"
	"github.com/wasabi-go/wasabi/moduleinfo"
	"github.com/wasabi-go/wasabi/typestack"
	"github.com/wasabi-go/wasabi/wasm"
)

// rewriter holds the state threaded through one function body's rewrite.
type rewriter struct {
	module  *wasm.Module
	mono    *hooks.Monomorphic
	poly    *hooks.Polymorphic
	info    *moduleinfo.Info // nil during the discovery pass; its br_tables are not needed there
	alloc   *allocator
	ts      *typestack.Stack
	bs      *blockstack.Stack
	b       *builder
	funcIdx uint32 // this function's own final index, embedded as the location's func_idx
	remap   func(origFuncIdx uint32) uint32
	results []wasm.ValType
}

// rewriteFunction rewrites one function body per the per-instruction rules.
// funcIdx is the value embedded in every location constant for this
// function - during the discovery pass it is a placeholder (the output is
// discarded); during the real pass it is the function's final, post-hook
// index. remap translates an original call target index to its final
// index; during the discovery pass it may be the identity function.
func rewriteFunction(
	m *wasm.Module,
	mono *hooks.Monomorphic,
	poly *hooks.Polymorphic,
	info *moduleinfo.Info,
	funcIdx uint32,
	remap func(uint32) uint32,
	ft *wasm.FuncType,
	body *wasm.FuncBody,
) ([]wasm.Instruction, []wasm.LocalEntry, error) {
	instrs, err := wasm.DecodeInstructions(body.Code)
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseInstrument, errors.KindInvalidData, err,
			fmt.Sprintf("function %d: decoding body", funcIdx))
	}

	r := &rewriter{
		module:  m,
		mono:    mono,
		poly:    poly,
		info:    info,
		alloc:   newAllocator(ft.Params, body.Locals),
		ts:      typestack.New(),
		bs:      blockstack.New(),
		b:       newBuilder(len(instrs) * 4),
		funcIdx: funcIdx,
		remap:   remap,
		results: ft.Results,
	}

	// Function prologue: no originating instruction exists yet, so the
	// location pair carries the sentinel instr_idx -1.
	r.b.i32Const(int32(r.funcIdx))
	r.b.i32Const(-1)
	r.b.call(r.mono.Get("begin_function_hook", nil))

	for i, instr := range instrs {
		if err := r.rewriteOne(uint32(i), instr); err != nil {
			return nil, nil, errors.Wrap(errors.PhaseInstrument, errors.KindUnsupported, err,
				fmt.Sprintf("function %d instruction %d (opcode 0x%02x)", funcIdx, i, instr.Opcode))
		}
	}

	if r.bs.Depth() != 0 {
		return nil, nil, errors.New(errors.PhaseInstrument, errors.KindInvalidData).
			Detail("function %d: block stack not empty after end of body", funcIdx).Build()
	}

	return r.b.out, r.alloc.freshLocals(), nil
}

func (r *rewriter) rewriteOne(idx uint32, instr wasm.Instruction) error {
	info, ok := classify.Classify(instr.Opcode)
	if !ok {
		return errors.Unsupported(errors.PhaseInstrument, fmt.Sprintf("opcode 0x%02x", instr.Opcode))
	}

	switch info.Group {
	case classify.GroupConst:
		return r.rewriteConst(idx, instr, info)
	case classify.GroupUnary:
		return r.rewriteUnary(idx, instr, info)
	case classify.GroupBinary:
		return r.rewriteBinary(idx, instr, info)
	case classify.GroupMemoryLoad:
		return r.rewriteLoad(idx, instr, info)
	case classify.GroupMemoryStore:
		return r.rewriteStore(idx, instr, info)
	case classify.GroupLocal:
		return r.rewriteLocal(idx, instr, info)
	case classify.GroupGlobal:
		return r.rewriteGlobal(idx, instr, info)
	case classify.GroupPolymorphic:
		if instr.Opcode == wasm.OpDrop {
			return r.rewriteDrop(idx, instr)
		}
		return r.rewriteSelect(idx, instr)
	case classify.GroupControl:
		return r.rewriteControl(idx, instr, info)
	default:
		return errors.Unsupported(errors.PhaseInstrument, info.Group.String())
	}
}

func (r *rewriter) rewriteConst(idx uint32, instr wasm.Instruction, info classify.Info) error {
	r.b.loc(r.funcIdx, idx)
	switch v := instr.Imm.(type) {
	case wasm.I32Imm:
		r.b.i32Const(v.Value)
	case wasm.I64Imm:
		r.b.i32Const(int32(v.Value))
		r.b.i32Const(int32(v.Value >> 32))
	case wasm.F32Imm:
		r.b.emit(instr)
	case wasm.F64Imm:
		r.b.emit(instr)
	}
	r.b.call(r.mono.Get(info.Mnemonic, hooks.ExpandI64([]wasm.ValType{info.ValType})))
	r.b.emit(instr)
	r.ts.Push(info.ValType)
	return nil
}

func (r *rewriter) rewriteUnary(idx uint32, instr wasm.Instruction, info classify.Info) error {
	if err := r.ts.Op([]wasm.ValType{info.InType}, nil); err != nil {
		return err
	}
	in := r.alloc.alloc(info.InType)
	out := r.alloc.alloc(info.OutType)
	r.b.localTee(in)
	r.b.emit(instr)
	r.b.localTee(out)
	r.b.loc(r.funcIdx, idx)
	r.b.restoreAll([]uint32{in, out}, []wasm.ValType{info.InType, info.OutType})
	r.b.call(r.mono.Get(info.Mnemonic, hooks.ExpandI64([]wasm.ValType{info.InType, info.OutType})))
	r.ts.Push(info.OutType)
	return nil
}

func (r *rewriter) rewriteBinary(idx uint32, instr wasm.Instruction, info classify.Info) error {
	if err := r.ts.Op([]wasm.ValType{info.AType, info.BType}, nil); err != nil {
		return err
	}
	a := r.alloc.alloc(info.AType)
	b := r.alloc.alloc(info.BType)
	r.b.saveStackToLocals([]uint32{a, b})
	r.b.emit(instr)
	out := r.alloc.alloc(info.OutType)
	r.b.localTee(out)
	r.b.loc(r.funcIdx, idx)
	r.b.restoreAll([]uint32{a, b, out}, []wasm.ValType{info.AType, info.BType, info.OutType})
	r.b.call(r.mono.Get(info.Mnemonic, hooks.ExpandI64([]wasm.ValType{info.AType, info.BType, info.OutType})))
	r.ts.Push(info.OutType)
	return nil
}

func (r *rewriter) rewriteLoad(idx uint32, instr wasm.Instruction, info classify.Info) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32}, nil); err != nil {
		return err
	}
	mem := instr.Imm.(wasm.MemoryImm)
	addr := r.alloc.alloc(wasm.ValI32)
	val := r.alloc.alloc(info.ValType)
	r.b.localTee(addr)
	r.b.emit(instr)
	r.b.localTee(val)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(mem.Offset))
	r.b.i32Const(int32(mem.Align))
	r.b.restoreAll([]uint32{addr, val}, []wasm.ValType{wasm.ValI32, info.ValType})
	extra := append([]wasm.ValType{wasm.ValI32, wasm.ValI32}, hooks.ExpandI64([]wasm.ValType{wasm.ValI32, info.ValType})...)
	r.b.call(r.mono.Get(info.Mnemonic, extra))
	r.ts.Push(info.ValType)
	return nil
}

func (r *rewriter) rewriteStore(idx uint32, instr wasm.Instruction, info classify.Info) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32, info.ValType}, nil); err != nil {
		return err
	}
	mem := instr.Imm.(wasm.MemoryImm)
	addr := r.alloc.alloc(wasm.ValI32)
	val := r.alloc.alloc(info.ValType)
	r.b.saveStackToLocals([]uint32{addr, val})
	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(mem.Offset))
	r.b.i32Const(int32(mem.Align))
	r.b.restoreAll([]uint32{addr, val}, []wasm.ValType{wasm.ValI32, info.ValType})
	extra := append([]wasm.ValType{wasm.ValI32, wasm.ValI32}, hooks.ExpandI64([]wasm.ValType{wasm.ValI32, info.ValType})...)
	r.b.call(r.mono.Get(info.Mnemonic, extra))
	return nil
}

func (r *rewriter) rewriteLocal(idx uint32, instr wasm.Instruction, info classify.Info) error {
	localIdx := instr.Imm.(wasm.LocalImm).LocalIdx
	t := r.alloc.typeOf(localIdx)

	switch info.VarOp {
	case classify.VarGet:
		r.ts.Push(t)
	case classify.VarSet:
		if err := r.ts.Op([]wasm.ValType{t}, nil); err != nil {
			return err
		}
	case classify.VarTee:
		if err := r.ts.Op([]wasm.ValType{t}, []wasm.ValType{t}); err != nil {
			return err
		}
	}

	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(localIdx))
	r.b.restore(localIdx, t)
	extra := append([]wasm.ValType{wasm.ValI32}, hooks.ExpandI64([]wasm.ValType{t})...)
	r.b.call(r.poly.Get(info.Mnemonic, []wasm.ValType{t}, extra))
	return nil
}

func (r *rewriter) rewriteGlobal(idx uint32, instr wasm.Instruction, info classify.Info) error {
	globalIdx := instr.Imm.(wasm.GlobalImm).GlobalIdx
	t, ok := globalValType(r.module, globalIdx)
	if !ok {
		return errors.NotFound(errors.PhaseInstrument, "global", fmt.Sprintf("%d", globalIdx))
	}

	switch info.VarOp {
	case classify.VarGet:
		r.ts.Push(t)
	case classify.VarSet:
		if err := r.ts.Op([]wasm.ValType{t}, nil); err != nil {
			return err
		}
	}

	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(globalIdx))
	r.restoreGlobal(globalIdx, t)
	extra := append([]wasm.ValType{wasm.ValI32}, hooks.ExpandI64([]wasm.ValType{t})...)
	r.b.call(r.poly.Get(info.Mnemonic, []wasm.ValType{t}, extra))
	return nil
}

// restoreGlobal re-reads the (possibly just-written) global and splits it
// if it is i64; globals have no local index to reuse for the split-read
// trick that local.get/local.set-backed locals get, so a scratch local
// holds the value just long enough to split it.
func (r *rewriter) restoreGlobal(globalIdx uint32, t wasm.ValType) {
	if t != wasm.ValI64 {
		r.b.emit(wasm.Instruction{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{GlobalIdx: globalIdx}})
		return
	}
	scratch := r.alloc.alloc(wasm.ValI64)
	r.b.emit(wasm.Instruction{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{GlobalIdx: globalIdx}})
	r.b.localSet(scratch)
	r.b.i64Split(scratch)
}

func (r *rewriter) rewriteDrop(idx uint32, instr wasm.Instruction) error {
	t, err := r.ts.Peek()
	if err != nil {
		return err
	}
	if _, err := r.ts.Pop(); err != nil {
		return err
	}
	tmp := r.alloc.alloc(t)
	r.b.localTee(tmp) // captures the value drop is about to discard
	r.b.loc(r.funcIdx, idx)
	r.b.restore(tmp, t)
	r.b.call(r.poly.Get("drop", []wasm.ValType{t}, hooks.ExpandI64([]wasm.ValType{t})))
	r.b.emit(instr)
	return nil
}

func (r *rewriter) rewriteSelect(idx uint32, instr wasm.Instruction) error {
	top, err := r.ts.PeekN(3)
	if err != nil {
		return err
	}
	t := top[0]
	if top[1] != t || top[2] != wasm.ValI32 {
		return errors.TypeMismatch(errors.PhaseInstrument, nil,
			"select operands must be two equally-typed values under an i32 condition")
	}
	if err := r.ts.Op([]wasm.ValType{t, t, wasm.ValI32}, []wasm.ValType{t}); err != nil {
		return err
	}

	arg0 := r.alloc.alloc(t)
	arg1 := r.alloc.alloc(t)
	cond := r.alloc.alloc(wasm.ValI32)
	r.b.saveStackToLocals([]uint32{arg0, arg1, cond})
	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.localGet(cond)
	r.b.restoreAll([]uint32{arg0, arg1}, []wasm.ValType{t, t})
	extra := append([]wasm.ValType{wasm.ValI32}, hooks.ExpandI64([]wasm.ValType{t, t})...)
	r.b.call(r.poly.Get("select", []wasm.ValType{t, t}, extra))
	return nil
}

func (r *rewriter) rewriteControl(idx uint32, instr wasm.Instruction, info classify.Info) error {
	switch instr.Opcode {
	case wasm.OpNop:
		r.b.emit(instr)
		r.b.loc(r.funcIdx, idx)
		r.b.call(r.mono.Get("nop_hook", nil))
		return nil
	case wasm.OpUnreachable:
		r.b.emit(instr)
		r.b.loc(r.funcIdx, idx)
		r.b.call(r.mono.Get("unreachable_hook", nil))
		return nil
	case wasm.OpBlock:
		return r.rewriteBlockLike(idx, instr, blockstack.KindBlock, "begin_block_hook")
	case wasm.OpLoop:
		return r.rewriteBlockLike(idx, instr, blockstack.KindLoop, "begin_loop_hook")
	case wasm.OpIf:
		return r.rewriteIf(idx, instr)
	case wasm.OpElse:
		return r.rewriteElse(idx, instr)
	case wasm.OpEnd:
		return r.rewriteEnd(idx, instr)
	case wasm.OpMemorySize:
		return r.rewriteCurrentMemory(idx, instr)
	case wasm.OpMemoryGrow:
		return r.rewriteGrowMemory(idx, instr)
	case wasm.OpReturn:
		return r.rewriteReturn(idx, instr)
	case wasm.OpCall:
		return r.rewriteCall(idx, instr)
	case wasm.OpCallIndirect:
		return r.rewriteCallIndirect(idx, instr)
	case wasm.OpBr:
		return r.rewriteBr(idx, instr)
	case wasm.OpBrIf:
		return r.rewriteBrIf(idx, instr)
	case wasm.OpBrTable:
		return r.rewriteBrTable(idx, instr)
	}
	return errors.Unsupported(errors.PhaseInstrument, fmt.Sprintf("control opcode 0x%02x", instr.Opcode))
}

func (r *rewriter) rewriteBlockLike(idx uint32, instr wasm.Instruction, kind blockstack.Kind, hookName string) error {
	bt := instr.Imm.(wasm.BlockImm).Type
	if kind == blockstack.KindLoop {
		r.bs.PushLoop(int(idx))
	} else {
		r.bs.PushBlock(int(idx))
	}
	r.ts.BeginBlock(bt)

	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.call(r.mono.Get(hookName, nil))
	return nil
}

func (r *rewriter) rewriteIf(idx uint32, instr wasm.Instruction) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32}, nil); err != nil {
		return err
	}
	bt := instr.Imm.(wasm.BlockImm).Type

	cond := r.alloc.alloc(wasm.ValI32)
	r.b.localTee(cond)
	r.b.loc(r.funcIdx, idx)
	r.b.localGet(cond)
	r.b.call(r.mono.Get("if_hook", []wasm.ValType{wasm.ValI32}))

	r.bs.PushIf(int(idx))
	r.ts.BeginBlock(bt)

	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.call(r.mono.Get("begin_if_hook", nil))
	return nil
}

func (r *rewriter) rewriteElse(idx uint32, instr wasm.Instruction) error {
	ifFrame, err := r.bs.Else(int(idx))
	if err != nil {
		return err
	}
	bt, err := r.ts.EndBlock()
	if err != nil {
		return err
	}
	r.ts.BeginBlock(bt)

	// The if->else transition reuses end_else_hook (rewriteEnd calls it
	// again for else->end); the pushed begin index here is the if's.
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(ifFrame.BeginIdx))
	r.b.call(r.mono.Get("end_else_hook", []wasm.ValType{wasm.ValI32}))

	r.b.emit(instr)
	r.b.loc(r.funcIdx, idx)
	r.b.call(r.mono.Get("begin_else_hook", nil))
	return nil
}

func (r *rewriter) rewriteEnd(idx uint32, instr wasm.Instruction) error {
	frame, err := r.bs.End()
	if err != nil {
		return err
	}
	if frame.Kind != blockstack.KindFunction {
		if _, err := r.ts.EndBlock(); err != nil {
			return err
		}
	}

	r.b.loc(r.funcIdx, idx)
	switch frame.Kind {
	case blockstack.KindFunction:
		r.b.call(r.mono.Get("end_function_hook", nil))
	case blockstack.KindBlock:
		r.b.i32Const(int32(frame.BeginIdx))
		r.b.call(r.mono.Get("end_block_hook", []wasm.ValType{wasm.ValI32}))
	case blockstack.KindLoop:
		r.b.i32Const(int32(frame.BeginIdx))
		r.b.call(r.mono.Get("end_loop_hook", []wasm.ValType{wasm.ValI32}))
	case blockstack.KindIf:
		r.b.i32Const(int32(frame.BeginIdx))
		r.b.call(r.mono.Get("end_if_hook", []wasm.ValType{wasm.ValI32}))
	case blockstack.KindElse:
		// Same end_else_hook as the if->else transition in rewriteElse;
		// here the pushed begin index is the else's.
		r.b.i32Const(int32(frame.BeginIdx))
		r.b.call(r.mono.Get("end_else_hook", []wasm.ValType{wasm.ValI32}))
	}
	r.b.emit(instr)
	return nil
}

func (r *rewriter) rewriteCurrentMemory(idx uint32, instr wasm.Instruction) error {
	res := r.alloc.alloc(wasm.ValI32)
	r.b.emit(instr)
	r.b.localTee(res)
	r.b.loc(r.funcIdx, idx)
	r.b.localGet(res)
	r.b.call(r.mono.Get("current_memory_hook", []wasm.ValType{wasm.ValI32}))
	r.ts.Push(wasm.ValI32)
	return nil
}

func (r *rewriter) rewriteGrowMemory(idx uint32, instr wasm.Instruction) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32}, nil); err != nil {
		return err
	}
	in := r.alloc.alloc(wasm.ValI32)
	res := r.alloc.alloc(wasm.ValI32)
	r.b.localTee(in)
	r.b.emit(instr)
	r.b.localTee(res)
	r.b.loc(r.funcIdx, idx)
	r.b.localGet(in)
	r.b.localGet(res)
	r.b.call(r.mono.Get("grow_memory_hook", []wasm.ValType{wasm.ValI32, wasm.ValI32}))
	r.ts.Push(wasm.ValI32)
	return nil
}

func (r *rewriter) rewriteReturn(idx uint32, instr wasm.Instruction) error {
	resLocals := r.alloc.allocN(r.results)
	r.b.saveStackToLocals(resLocals)
	r.b.loc(r.funcIdx, idx)
	r.b.restoreAll(resLocals, r.results)
	r.b.call(r.poly.Get("return", r.results, hooks.ExpandI64(r.results)))
	r.b.emit(instr)
	return nil
}

func (r *rewriter) rewriteCall(idx uint32, instr wasm.Instruction) error {
	origTarget := instr.Imm.(wasm.CallImm).FuncIdx
	finalTarget := r.remap(origTarget)
	ft := r.module.GetFuncType(finalTarget)
	if ft == nil {
		return errors.NotFound(errors.PhaseInstrument, "call target", fmt.Sprintf("%d", origTarget))
	}
	a, res := ft.Params, ft.Results

	if err := r.ts.Op(a, res); err != nil {
		return err
	}

	argLocals := r.alloc.allocN(a)
	r.b.saveStackToLocals(argLocals)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(finalTarget))
	r.b.restoreAll(argLocals, a)
	preExtra := append([]wasm.ValType{wasm.ValI32}, hooks.ExpandI64(a)...)
	r.b.call(r.poly.Get("call", a, preExtra))
	r.b.emit(wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: finalTarget}})

	resLocals := r.alloc.allocN(res)
	r.b.saveStackToLocals(resLocals)
	r.b.loc(r.funcIdx, idx)
	r.b.restoreAll(resLocals, res)
	r.b.call(r.poly.Get("call_result", res, hooks.ExpandI64(res)))
	return nil
}

func (r *rewriter) rewriteCallIndirect(idx uint32, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.CallIndirectImm)
	if int(imm.TypeIdx) >= len(r.module.Types) {
		return errors.OutOfBounds(errors.PhaseInstrument, nil, int(imm.TypeIdx), len(r.module.Types))
	}
	ft := r.module.Types[imm.TypeIdx]
	a, res := ft.Params, ft.Results

	if err := r.ts.Op(append(append([]wasm.ValType{}, a...), wasm.ValI32), res); err != nil {
		return err
	}

	tblIdx := r.alloc.alloc(wasm.ValI32)
	r.b.localSet(tblIdx)
	argLocals := r.alloc.allocN(a)
	r.b.saveStackToLocals(argLocals)
	r.b.localGet(tblIdx) // restore the real call_indirect's table-index operand

	r.b.loc(r.funcIdx, idx)
	r.b.localGet(tblIdx) // hook's "target" argument, in place of a static func index
	r.b.restoreAll(argLocals, a)
	preExtra := append([]wasm.ValType{wasm.ValI32}, hooks.ExpandI64(a)...)
	r.b.call(r.poly.Get("call_indirect", a, preExtra))
	r.b.emit(instr)

	resLocals := r.alloc.allocN(res)
	r.b.saveStackToLocals(resLocals)
	r.b.loc(r.funcIdx, idx)
	r.b.restoreAll(resLocals, res)
	r.b.call(r.poly.Get("call_result", res, hooks.ExpandI64(res)))
	return nil
}

func (r *rewriter) rewriteBr(idx uint32, instr wasm.Instruction) error {
	label := instr.Imm.(wasm.BranchImm).LabelIdx
	target, err := r.bs.LabelToInstrIdx(label)
	if err != nil {
		return err
	}
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(label))
	r.b.i32Const(int32(target))
	r.b.call(r.mono.Get("br_hook", []wasm.ValType{wasm.ValI32, wasm.ValI32}))
	r.b.emit(instr)
	return nil
}

func (r *rewriter) rewriteBrIf(idx uint32, instr wasm.Instruction) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32}, nil); err != nil {
		return err
	}
	label := instr.Imm.(wasm.BranchImm).LabelIdx
	target, err := r.bs.LabelToInstrIdx(label)
	if err != nil {
		return err
	}
	cond := r.alloc.alloc(wasm.ValI32)
	r.b.localTee(cond)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(label))
	r.b.i32Const(int32(target))
	r.b.localGet(cond)
	r.b.call(r.mono.Get("br_if_hook", []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32}))
	r.b.emit(instr)
	return nil
}

func (r *rewriter) rewriteBrTable(idx uint32, instr wasm.Instruction) error {
	if err := r.ts.Op([]wasm.ValType{wasm.ValI32}, nil); err != nil {
		return err
	}
	imm := instr.Imm.(wasm.BrTableImm)
	k := 0
	if r.info != nil {
		k = r.info.AddBrTable(imm.Labels, imm.Default)
	}
	sel := r.alloc.alloc(wasm.ValI32)
	r.b.localTee(sel)
	r.b.loc(r.funcIdx, idx)
	r.b.i32Const(int32(k))
	r.b.localGet(sel)
	r.b.call(r.mono.Get("br_table_hook", []wasm.ValType{wasm.ValI32, wasm.ValI32}))
	r.b.emit(instr)
	return nil
}

func globalValType(m *wasm.Module, idx uint32) (wasm.ValType, bool) {
	imported := uint32(0)
	for _, imp := range m.Imports {
		if imp.Desc.Kind == wasm.KindGlobal {
			if imported == idx {
				return imp.Desc.Global.ValType, true
			}
			imported++
		}
	}
	localIdx := idx - imported
	if int(localIdx) >= len(m.Globals) {
		return 0, false
	}
	return m.Globals[localIdx].Type.ValType, true
}
