package krk

// OpCode is a single bytecode instruction (§6.1). Every indexed opcode has a
// short (1-byte operand) and _LONG (3-byte operand) form; the compiler picks
// the short form when the index fits in a byte (chunk.go: WriteIndexed).
type OpCode byte

const (
	OpConstant OpCode = iota
	OpConstantLong
	OpPop
	OpDup
	OpSwap
	OpNone
	OpTrue
	OpFalse

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpFloorDiv
	OpModulo
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitShiftL
	OpBitShiftR
	OpNegate
	OpNot
	OpInvert

	OpEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpIs
	OpContains

	OpDefineGlobal
	OpDefineGlobalLong
	OpGetGlobal
	OpGetGlobalLong
	OpSetGlobal
	OpSetGlobalLong
	OpDelGlobal
	OpDelGlobalLong
	OpGetLocal
	OpGetLocalLong
	OpSetLocal
	OpSetLocalLong
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	OpGetProperty
	OpGetPropertyLong
	OpSetProperty
	OpSetPropertyLong
	OpDelProperty
	OpDelPropertyLong
	OpGetSuper
	OpGetSuperLong

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpLoop

	OpClosure
	OpClosureLong
	OpClass
	OpClassLong
	OpInherit
	OpMethod
	OpMethodLong
	OpCall
	OpCallMethod
	OpCallMethodLong
	OpReturn

	OpBuildTuple
	OpBuildList
	OpBuildDict
	OpBuildSet
	OpUnpack

	OpPushTry
	OpPushWith
	OpRaise
	OpRaiseFrom
	OpFilterExcept
	OpPopHandler

	OpInvokeIter
	OpInvokeNext

	OpGetItem
	OpSetItem
	OpDelItem

	OpYield
	OpAwait

	opCodeCount
)

var opCodeNames = [opCodeCount]string{
	OpConstant: "CONSTANT", OpConstantLong: "CONSTANT_LONG",
	OpPop: "POP", OpDup: "DUP", OpSwap: "SWAP",
	OpNone: "NONE", OpTrue: "TRUE", OpFalse: "FALSE",
	OpAdd: "ADD", OpSubtract: "SUBTRACT", OpMultiply: "MULTIPLY", OpDivide: "DIVIDE",
	OpFloorDiv: "FLOORDIV", OpModulo: "MODULO", OpPow: "POW",
	OpBitAnd: "BITAND", OpBitOr: "BITOR", OpBitXor: "BITXOR",
	OpBitShiftL: "BITSHIFTL", OpBitShiftR: "BITSHIFTR",
	OpNegate: "NEGATE", OpNot: "NOT", OpInvert: "INVERT",
	OpEqual: "EQUAL", OpLess: "LESS", OpGreater: "GREATER",
	OpLessEqual: "LESS_EQUAL", OpGreaterEqual: "GREATER_EQUAL",
	OpIs: "IS", OpContains: "CONTAINS",
	OpDefineGlobal: "DEFINE_GLOBAL", OpDefineGlobalLong: "DEFINE_GLOBAL_LONG",
	OpGetGlobal: "GET_GLOBAL", OpGetGlobalLong: "GET_GLOBAL_LONG",
	OpSetGlobal: "SET_GLOBAL", OpSetGlobalLong: "SET_GLOBAL_LONG",
	OpDelGlobal: "DEL_GLOBAL", OpDelGlobalLong: "DEL_GLOBAL_LONG",
	OpGetLocal: "GET_LOCAL", OpGetLocalLong: "GET_LOCAL_LONG",
	OpSetLocal: "SET_LOCAL", OpSetLocalLong: "SET_LOCAL_LONG",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE", OpCloseUpvalue: "CLOSE_UPVALUE",
	OpGetProperty: "GET_PROPERTY", OpGetPropertyLong: "GET_PROPERTY_LONG",
	OpSetProperty: "SET_PROPERTY", OpSetPropertyLong: "SET_PROPERTY_LONG",
	OpDelProperty: "DEL_PROPERTY", OpDelPropertyLong: "DEL_PROPERTY_LONG",
	OpGetSuper: "GET_SUPER", OpGetSuperLong: "GET_SUPER_LONG",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpJumpIfTrue: "JUMP_IF_TRUE", OpLoop: "LOOP",
	OpClosure: "CLOSURE", OpClosureLong: "CLOSURE_LONG",
	OpClass: "CLASS", OpClassLong: "CLASS_LONG", OpInherit: "INHERIT",
	OpMethod: "METHOD", OpMethodLong: "METHOD_LONG",
	OpCall: "CALL", OpCallMethod: "CALL_METHOD", OpCallMethodLong: "CALL_METHOD_LONG",
	OpReturn: "RETURN",
	OpBuildTuple: "BUILD_TUPLE", OpBuildList: "BUILD_LIST", OpBuildDict: "BUILD_DICT", OpBuildSet: "BUILD_SET",
	OpUnpack: "UNPACK",
	OpPushTry: "PUSH_TRY", OpPushWith: "PUSH_WITH", OpRaise: "RAISE", OpRaiseFrom: "RAISE_FROM",
	OpFilterExcept: "FILTER_EXCEPT", OpPopHandler: "POP_HANDLER",
	OpInvokeIter: "INVOKE_ITER", OpInvokeNext: "INVOKE_NEXT",
	OpGetItem: "GET_ITEM", OpSetItem: "SET_ITEM", OpDelItem: "DEL_ITEM",
	OpYield: "YIELD", OpAwait: "AWAIT",
}

func (op OpCode) String() string {
	if int(op) < len(opCodeNames) && opCodeNames[op] != "" {
		return opCodeNames[op]
	}
	return "UNKNOWN"
}
