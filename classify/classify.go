package classify

import "github.com/wasabi-go/wasabi/wasm"

// Group is one of the instrumentation-shape buckets every opcode falls into.
type Group int

const (
	GroupConst Group = iota
	GroupUnary
	GroupBinary
	GroupMemoryLoad
	GroupMemoryStore
	GroupLocal
	GroupGlobal
	GroupPolymorphic
	GroupControl
	GroupOther
)

func (g Group) String() string {
	switch g {
	case GroupConst:
		return "const"
	case GroupUnary:
		return "unary"
	case GroupBinary:
		return "binary"
	case GroupMemoryLoad:
		return "memory_load"
	case GroupMemoryStore:
		return "memory_store"
	case GroupLocal:
		return "local"
	case GroupGlobal:
		return "global"
	case GroupPolymorphic:
		return "polymorphic"
	case GroupControl:
		return "control"
	default:
		return "other"
	}
}

// VarOp discriminates local/global accesses (and the get/set/tee shape of
// Polymorphic drop/select is not modeled here - those have no VarOp).
type VarOp int

const (
	VarGet VarOp = iota
	VarSet
	VarTee
)

func (v VarOp) String() string {
	switch v {
	case VarGet:
		return "get"
	case VarSet:
		return "set"
	case VarTee:
		return "tee"
	default:
		return "?"
	}
}

// Info is the static classification of a single opcode. Only the fields
// relevant to Group are meaningful; others are zero.
type Info struct {
	Group    Group
	Mnemonic string

	// ValType holds the Const result type, the MemoryLoad result type, or
	// the MemoryStore value type.
	ValType wasm.ValType

	// InType/OutType hold the Unary operand and result types.
	InType  wasm.ValType
	OutType wasm.ValType

	// AType/BType/OutType hold the Binary operand and result types
	// (comparisons set OutType to i32 regardless of AType/BType).
	AType wasm.ValType
	BType wasm.ValType

	// VarOp discriminates Local/Global accesses.
	VarOp VarOp
}

// Classify returns the static classification of op, or ok=false if op is
// not part of the supported MVP opcode set.
func Classify(op byte) (Info, bool) {
	if info, ok := constTable[op]; ok {
		return info, true
	}
	if info, ok := unaryTable[op]; ok {
		return info, true
	}
	if info, ok := binaryTable[op]; ok {
		return info, true
	}
	if info, ok := loadTable[op]; ok {
		return info, true
	}
	if info, ok := storeTable[op]; ok {
		return info, true
	}
	switch op {
	case wasm.OpLocalGet:
		return Info{Group: GroupLocal, Mnemonic: "get_local", VarOp: VarGet}, true
	case wasm.OpLocalSet:
		return Info{Group: GroupLocal, Mnemonic: "set_local", VarOp: VarSet}, true
	case wasm.OpLocalTee:
		return Info{Group: GroupLocal, Mnemonic: "tee_local", VarOp: VarTee}, true
	case wasm.OpGlobalGet:
		return Info{Group: GroupGlobal, Mnemonic: "get_global", VarOp: VarGet}, true
	case wasm.OpGlobalSet:
		return Info{Group: GroupGlobal, Mnemonic: "set_global", VarOp: VarSet}, true
	case wasm.OpDrop:
		return Info{Group: GroupPolymorphic, Mnemonic: "drop"}, true
	case wasm.OpSelect:
		return Info{Group: GroupPolymorphic, Mnemonic: "select"}, true
	case wasm.OpMemorySize:
		return Info{Group: GroupControl, Mnemonic: "current_memory"}, true
	case wasm.OpMemoryGrow:
		return Info{Group: GroupControl, Mnemonic: "grow_memory"}, true
	case wasm.OpUnreachable:
		return Info{Group: GroupControl, Mnemonic: "unreachable"}, true
	case wasm.OpNop:
		return Info{Group: GroupControl, Mnemonic: "nop"}, true
	case wasm.OpBlock:
		return Info{Group: GroupControl, Mnemonic: "block"}, true
	case wasm.OpLoop:
		return Info{Group: GroupControl, Mnemonic: "loop"}, true
	case wasm.OpIf:
		return Info{Group: GroupControl, Mnemonic: "if"}, true
	case wasm.OpElse:
		return Info{Group: GroupControl, Mnemonic: "else"}, true
	case wasm.OpEnd:
		return Info{Group: GroupControl, Mnemonic: "end"}, true
	case wasm.OpBr:
		return Info{Group: GroupControl, Mnemonic: "br"}, true
	case wasm.OpBrIf:
		return Info{Group: GroupControl, Mnemonic: "br_if"}, true
	case wasm.OpBrTable:
		return Info{Group: GroupControl, Mnemonic: "br_table"}, true
	case wasm.OpReturn:
		return Info{Group: GroupControl, Mnemonic: "return"}, true
	case wasm.OpCall:
		return Info{Group: GroupControl, Mnemonic: "call"}, true
	case wasm.OpCallIndirect:
		return Info{Group: GroupControl, Mnemonic: "call_indirect"}, true
	}
	return Info{}, false
}

var constTable = map[byte]Info{
	wasm.OpI32Const: {Group: GroupConst, Mnemonic: "i32.const", ValType: wasm.ValI32},
	wasm.OpI64Const: {Group: GroupConst, Mnemonic: "i64.const", ValType: wasm.ValI64},
	wasm.OpF32Const: {Group: GroupConst, Mnemonic: "f32.const", ValType: wasm.ValF32},
	wasm.OpF64Const: {Group: GroupConst, Mnemonic: "f64.const", ValType: wasm.ValF64},
}

var loadTable = map[byte]Info{
	wasm.OpI32Load:    {Group: GroupMemoryLoad, Mnemonic: "i32.load", ValType: wasm.ValI32},
	wasm.OpI32Load8S:  {Group: GroupMemoryLoad, Mnemonic: "i32.load8_s", ValType: wasm.ValI32},
	wasm.OpI32Load8U:  {Group: GroupMemoryLoad, Mnemonic: "i32.load8_u", ValType: wasm.ValI32},
	wasm.OpI32Load16S: {Group: GroupMemoryLoad, Mnemonic: "i32.load16_s", ValType: wasm.ValI32},
	wasm.OpI32Load16U: {Group: GroupMemoryLoad, Mnemonic: "i32.load16_u", ValType: wasm.ValI32},
	wasm.OpI64Load:    {Group: GroupMemoryLoad, Mnemonic: "i64.load", ValType: wasm.ValI64},
	wasm.OpI64Load8S:  {Group: GroupMemoryLoad, Mnemonic: "i64.load8_s", ValType: wasm.ValI64},
	wasm.OpI64Load8U:  {Group: GroupMemoryLoad, Mnemonic: "i64.load8_u", ValType: wasm.ValI64},
	wasm.OpI64Load16S: {Group: GroupMemoryLoad, Mnemonic: "i64.load16_s", ValType: wasm.ValI64},
	wasm.OpI64Load16U: {Group: GroupMemoryLoad, Mnemonic: "i64.load16_u", ValType: wasm.ValI64},
	wasm.OpI64Load32S: {Group: GroupMemoryLoad, Mnemonic: "i64.load32_s", ValType: wasm.ValI64},
	wasm.OpI64Load32U: {Group: GroupMemoryLoad, Mnemonic: "i64.load32_u", ValType: wasm.ValI64},
	wasm.OpF32Load:    {Group: GroupMemoryLoad, Mnemonic: "f32.load", ValType: wasm.ValF32},
	wasm.OpF64Load:    {Group: GroupMemoryLoad, Mnemonic: "f64.load", ValType: wasm.ValF64},
}

var storeTable = map[byte]Info{
	wasm.OpI32Store:   {Group: GroupMemoryStore, Mnemonic: "i32.store", ValType: wasm.ValI32},
	wasm.OpI32Store8:  {Group: GroupMemoryStore, Mnemonic: "i32.store8", ValType: wasm.ValI32},
	wasm.OpI32Store16: {Group: GroupMemoryStore, Mnemonic: "i32.store16", ValType: wasm.ValI32},
	wasm.OpI64Store:   {Group: GroupMemoryStore, Mnemonic: "i64.store", ValType: wasm.ValI64},
	wasm.OpI64Store8:  {Group: GroupMemoryStore, Mnemonic: "i64.store8", ValType: wasm.ValI64},
	wasm.OpI64Store16: {Group: GroupMemoryStore, Mnemonic: "i64.store16", ValType: wasm.ValI64},
	wasm.OpI64Store32: {Group: GroupMemoryStore, Mnemonic: "i64.store32", ValType: wasm.ValI64},
	wasm.OpF32Store:   {Group: GroupMemoryStore, Mnemonic: "f32.store", ValType: wasm.ValF32},
	wasm.OpF64Store:   {Group: GroupMemoryStore, Mnemonic: "f64.store", ValType: wasm.ValF64},
}

func unary(mnemonic string, in, out wasm.ValType) Info {
	return Info{Group: GroupUnary, Mnemonic: mnemonic, InType: in, OutType: out}
}

var unaryTable = map[byte]Info{
	wasm.OpI32Eqz: unary("i32.eqz", wasm.ValI32, wasm.ValI32),
	wasm.OpI64Eqz: unary("i64.eqz", wasm.ValI64, wasm.ValI32),

	wasm.OpI32Clz:    unary("i32.clz", wasm.ValI32, wasm.ValI32),
	wasm.OpI32Ctz:    unary("i32.ctz", wasm.ValI32, wasm.ValI32),
	wasm.OpI32Popcnt: unary("i32.popcnt", wasm.ValI32, wasm.ValI32),
	wasm.OpI64Clz:    unary("i64.clz", wasm.ValI64, wasm.ValI64),
	wasm.OpI64Ctz:    unary("i64.ctz", wasm.ValI64, wasm.ValI64),
	wasm.OpI64Popcnt: unary("i64.popcnt", wasm.ValI64, wasm.ValI64),

	wasm.OpF32Abs:      unary("f32.abs", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Neg:      unary("f32.neg", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Ceil:     unary("f32.ceil", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Floor:    unary("f32.floor", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Trunc:    unary("f32.trunc", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Nearest:  unary("f32.nearest", wasm.ValF32, wasm.ValF32),
	wasm.OpF32Sqrt:     unary("f32.sqrt", wasm.ValF32, wasm.ValF32),
	wasm.OpF64Abs:      unary("f64.abs", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Neg:      unary("f64.neg", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Ceil:     unary("f64.ceil", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Floor:    unary("f64.floor", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Trunc:    unary("f64.trunc", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Nearest:  unary("f64.nearest", wasm.ValF64, wasm.ValF64),
	wasm.OpF64Sqrt:     unary("f64.sqrt", wasm.ValF64, wasm.ValF64),

	wasm.OpI32WrapI64:        unary("i32.wrap_i64", wasm.ValI64, wasm.ValI32),
	wasm.OpI32TruncF32S:      unary("i32.trunc_f32_s", wasm.ValF32, wasm.ValI32),
	wasm.OpI32TruncF32U:      unary("i32.trunc_f32_u", wasm.ValF32, wasm.ValI32),
	wasm.OpI32TruncF64S:      unary("i32.trunc_f64_s", wasm.ValF64, wasm.ValI32),
	wasm.OpI32TruncF64U:      unary("i32.trunc_f64_u", wasm.ValF64, wasm.ValI32),
	wasm.OpI64ExtendI32S:     unary("i64.extend_i32_s", wasm.ValI32, wasm.ValI64),
	wasm.OpI64ExtendI32U:     unary("i64.extend_i32_u", wasm.ValI32, wasm.ValI64),
	wasm.OpI64TruncF32S:      unary("i64.trunc_f32_s", wasm.ValF32, wasm.ValI64),
	wasm.OpI64TruncF32U:      unary("i64.trunc_f32_u", wasm.ValF32, wasm.ValI64),
	wasm.OpI64TruncF64S:      unary("i64.trunc_f64_s", wasm.ValF64, wasm.ValI64),
	wasm.OpI64TruncF64U:      unary("i64.trunc_f64_u", wasm.ValF64, wasm.ValI64),
	wasm.OpF32ConvertI32S:    unary("f32.convert_i32_s", wasm.ValI32, wasm.ValF32),
	wasm.OpF32ConvertI32U:    unary("f32.convert_i32_u", wasm.ValI32, wasm.ValF32),
	wasm.OpF32ConvertI64S:    unary("f32.convert_i64_s", wasm.ValI64, wasm.ValF32),
	wasm.OpF32ConvertI64U:    unary("f32.convert_i64_u", wasm.ValI64, wasm.ValF32),
	wasm.OpF32DemoteF64:      unary("f32.demote_f64", wasm.ValF64, wasm.ValF32),
	wasm.OpF64ConvertI32S:    unary("f64.convert_i32_s", wasm.ValI32, wasm.ValF64),
	wasm.OpF64ConvertI32U:    unary("f64.convert_i32_u", wasm.ValI32, wasm.ValF64),
	wasm.OpF64ConvertI64S:    unary("f64.convert_i64_s", wasm.ValI64, wasm.ValF64),
	wasm.OpF64ConvertI64U:    unary("f64.convert_i64_u", wasm.ValI64, wasm.ValF64),
	wasm.OpF64PromoteF32:     unary("f64.promote_f32", wasm.ValF32, wasm.ValF64),
	wasm.OpI32ReinterpretF32: unary("i32.reinterpret_f32", wasm.ValF32, wasm.ValI32),
	wasm.OpI64ReinterpretF64: unary("i64.reinterpret_f64", wasm.ValF64, wasm.ValI64),
	wasm.OpF32ReinterpretI32: unary("f32.reinterpret_i32", wasm.ValI32, wasm.ValF32),
	wasm.OpF64ReinterpretI64: unary("f64.reinterpret_i64", wasm.ValI64, wasm.ValF64),
}

func binary(mnemonic string, a, b, out wasm.ValType) Info {
	return Info{Group: GroupBinary, Mnemonic: mnemonic, AType: a, BType: b, OutType: out}
}

var binaryTable = map[byte]Info{
	wasm.OpI32Eq:   binary("i32.eq", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Ne:   binary("i32.ne", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32LtS:  binary("i32.lt_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32LtU:  binary("i32.lt_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32GtS:  binary("i32.gt_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32GtU:  binary("i32.gt_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32LeS:  binary("i32.le_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32LeU:  binary("i32.le_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32GeS:  binary("i32.ge_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32GeU:  binary("i32.ge_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),

	wasm.OpI64Eq:  binary("i64.eq", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64Ne:  binary("i64.ne", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64LtS: binary("i64.lt_s", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64LtU: binary("i64.lt_u", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64GtS: binary("i64.gt_s", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64GtU: binary("i64.gt_u", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64LeS: binary("i64.le_s", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64LeU: binary("i64.le_u", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64GeS: binary("i64.ge_s", wasm.ValI64, wasm.ValI64, wasm.ValI32),
	wasm.OpI64GeU: binary("i64.ge_u", wasm.ValI64, wasm.ValI64, wasm.ValI32),

	wasm.OpF32Eq: binary("f32.eq", wasm.ValF32, wasm.ValF32, wasm.ValI32),
	wasm.OpF32Ne: binary("f32.ne", wasm.ValF32, wasm.ValF32, wasm.ValI32),
	wasm.OpF32Lt: binary("f32.lt", wasm.ValF32, wasm.ValF32, wasm.ValI32),
	wasm.OpF32Gt: binary("f32.gt", wasm.ValF32, wasm.ValF32, wasm.ValI32),
	wasm.OpF32Le: binary("f32.le", wasm.ValF32, wasm.ValF32, wasm.ValI32),
	wasm.OpF32Ge: binary("f32.ge", wasm.ValF32, wasm.ValF32, wasm.ValI32),

	wasm.OpF64Eq: binary("f64.eq", wasm.ValF64, wasm.ValF64, wasm.ValI32),
	wasm.OpF64Ne: binary("f64.ne", wasm.ValF64, wasm.ValF64, wasm.ValI32),
	wasm.OpF64Lt: binary("f64.lt", wasm.ValF64, wasm.ValF64, wasm.ValI32),
	wasm.OpF64Gt: binary("f64.gt", wasm.ValF64, wasm.ValF64, wasm.ValI32),
	wasm.OpF64Le: binary("f64.le", wasm.ValF64, wasm.ValF64, wasm.ValI32),
	wasm.OpF64Ge: binary("f64.ge", wasm.ValF64, wasm.ValF64, wasm.ValI32),

	wasm.OpI32Add:  binary("i32.add", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Sub:  binary("i32.sub", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Mul:  binary("i32.mul", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32DivS: binary("i32.div_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32DivU: binary("i32.div_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32RemS: binary("i32.rem_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32RemU: binary("i32.rem_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32And:  binary("i32.and", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Or:   binary("i32.or", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Xor:  binary("i32.xor", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Shl:  binary("i32.shl", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32ShrS: binary("i32.shr_s", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32ShrU: binary("i32.shr_u", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Rotl: binary("i32.rotl", wasm.ValI32, wasm.ValI32, wasm.ValI32),
	wasm.OpI32Rotr: binary("i32.rotr", wasm.ValI32, wasm.ValI32, wasm.ValI32),

	wasm.OpI64Add:  binary("i64.add", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Sub:  binary("i64.sub", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Mul:  binary("i64.mul", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64DivS: binary("i64.div_s", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64DivU: binary("i64.div_u", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64RemS: binary("i64.rem_s", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64RemU: binary("i64.rem_u", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64And:  binary("i64.and", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Or:   binary("i64.or", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Xor:  binary("i64.xor", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Shl:  binary("i64.shl", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64ShrS: binary("i64.shr_s", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64ShrU: binary("i64.shr_u", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Rotl: binary("i64.rotl", wasm.ValI64, wasm.ValI64, wasm.ValI64),
	wasm.OpI64Rotr: binary("i64.rotr", wasm.ValI64, wasm.ValI64, wasm.ValI64),

	wasm.OpF32Add:      binary("f32.add", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Sub:      binary("f32.sub", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Mul:      binary("f32.mul", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Div:      binary("f32.div", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Min:      binary("f32.min", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Max:      binary("f32.max", wasm.ValF32, wasm.ValF32, wasm.ValF32),
	wasm.OpF32Copysign: binary("f32.copysign", wasm.ValF32, wasm.ValF32, wasm.ValF32),

	wasm.OpF64Add:      binary("f64.add", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Sub:      binary("f64.sub", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Mul:      binary("f64.mul", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Div:      binary("f64.div", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Min:      binary("f64.min", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Max:      binary("f64.max", wasm.ValF64, wasm.ValF64, wasm.ValF64),
	wasm.OpF64Copysign: binary("f64.copysign", wasm.ValF64, wasm.ValF64, wasm.ValF64),
}
