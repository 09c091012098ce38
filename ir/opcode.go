package ir

// Opcode identifies the operation a Node performs. The generic set is
// produced by the front end; the synthetic set is introduced by the Tree
// Rewriter and must never reappear in generic form once rewriting is
// complete (see Opcode.IsSynthetic and the rewriter idempotence
// property in spec.md §8).
type Opcode uint32

const (
	// Generic opcodes, as handed down by the front end.

	// OpConstant is a literal value carried in Node.Value.
	OpConstant Opcode = 1 + iota
	// OpName references a global/static symbol (Node.Snum), pre-load.
	OpName
	// OpLabel references a literal/static label number (Node.Val2).
	OpLabel
	// OpLocal references a local-variable stack offset (Node.Value),
	// pre-load; becomes a synthetic load/store once rewritten.
	OpLocal
	// OpArgument references an argument-area stack offset, relative to
	// the function's argument base, pre-load.
	OpArgument
	// OpReg references a register-variable slot (bc/ix/iy), pre-load.
	OpReg
	// OpDeref dereferences Left (generic pointer read).
	OpDeref
	// OpAssign stores Right into the address described by Left.
	OpAssign
	// OpPlus, OpMinus, OpStar, OpSlash, OpPercent: arithmetic.
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	// OpAnd, OpOr, OpXor: bitwise logical.
	OpAnd
	OpOr
	OpXor
	// OpShiftLeft, OpShiftRight: bit shifts.
	OpShiftLeft
	OpShiftRight
	// OpEq, OpNe, OpLt, OpLe, OpGt, OpGe: comparisons, CCONLY-capable.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	// OpAndAnd, OpOrOr: short-circuit logical AND/OR.
	OpAndAnd
	OpOrOr
	// OpBool materialises a 0/1 value from an arbitrary subtree.
	OpBool
	// OpNot is logical negation ("bang").
	OpNot
	// OpCast converts Right's type to Node.Type.
	OpCast
	// OpPlusPlus, OpMinusMinus: postfix increment/decrement of Left.
	OpPlusPlus
	OpMinusMinus
	// OpPlusEq, OpMinusEq: compound assignment of Right into Left.
	OpPlusEq
	OpMinusEq
	// OpFuncCall invokes the function addressed by Left with the
	// arguments supplied as an OpComma-chained list in Right.
	OpFuncCall
	// OpComma discards Left's value, yields Right's.
	OpComma
	// OpCleanup is a synthetic-ish bookkeeping op inserted by the front
	// end after a call: drop N bytes of argument space (Node.Value).
	OpCleanup

	opGenericEnd

	// Synthetic opcodes, introduced only by the Tree Rewriter. Every one
	// of these must be covered by the Code Selector; see
	// Opcode.IsSynthetic.

	// OpNameRef loads from a named global/static (was Deref(Name)).
	OpNameRef
	// OpNameStore stores to a named global/static (was Assign(Name, _)).
	OpNameStore
	// OpLabelRef loads from a literal/static label (was Deref(Label)).
	OpLabelRef
	// OpLabelStore stores to a literal/static label.
	OpLabelStore
	// OpLocalRef loads from a local/argument stack slot (Node.Value is
	// the offset from the current stack pointer).
	OpLocalRef
	// OpLocalStore stores to a local/argument stack slot.
	OpLocalStore
	// OpRegRef loads from a register-variable slot (Node.Value names the
	// slot: 1=bc, 2=ix, 3=iy).
	OpRegRef
	// OpRegStore stores to a register-variable slot.
	OpRegStore
	// OpRegDeref dereferences a register-variable plus a constant offset
	// (Node.Value = slot, Node.Val2 = offset).
	OpRegDeref
	// OpRegDerefStore is the store mirror of OpRegDeref.
	OpRegDerefStore
	// OpBitTest tests bit Node.Value of Right, producing a flag result
	// only (introduced by the Flag Propagator, not the rewriter, but
	// shares the "never reappears generic" discipline).
	OpBitTest
	// OpByteEq, OpByteNe: byte-sized equality/inequality against the
	// constant in Node.Value (collapsed from cast-to-u8 == constant).
	OpByteEq
	OpByteNe
	// OpCallName is a direct call to the function named by Node.Snum
	// (collapsed from OpFuncCall of an OpName of function-pointer type).
	OpCallName
)

// IsSynthetic reports whether op was introduced by the Tree Rewriter (or
// the Flag Propagator's bit-test special case) rather than handed down by
// the front end.
func (op Opcode) IsSynthetic() bool { return op > opGenericEnd }

// IsComparison reports whether op is one of the comparison operators that
// can produce a flags-only (CCONLY) result.
func (op Opcode) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpByteEq, OpByteNe:
		return true
	default:
		return false
	}
}

// IsCommutative reports whether op's operands may be swapped without
// changing meaning — the set the rewriter's commutative-reorder rule
// applies to.
func (op Opcode) IsCommutative() bool {
	switch op {
	case OpAnd, OpOr, OpXor, OpStar, OpPlus:
		return true
	default:
		return false
	}
}

var opcodeNames = map[Opcode]string{
	OpConstant: "const", OpName: "name", OpLabel: "label", OpLocal: "local",
	OpArgument: "argument", OpReg: "reg", OpDeref: "deref", OpAssign: "assign",
	OpPlus: "plus", OpMinus: "minus", OpStar: "star", OpSlash: "slash",
	OpPercent: "percent", OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpShiftLeft: "shl", OpShiftRight: "shr", OpEq: "eq", OpNe: "ne",
	OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge", OpAndAnd: "andand",
	OpOrOr: "oror", OpBool: "bool", OpNot: "not", OpCast: "cast",
	OpPlusPlus: "plusplus", OpMinusMinus: "minusminus", OpPlusEq: "pluseq",
	OpMinusEq: "minuseq", OpFuncCall: "funccall", OpComma: "comma",
	OpCleanup: "cleanup",
	OpNameRef:  "nref", OpNameStore: "nstore", OpLabelRef: "lbref",
	OpLabelStore: "lbstore", OpLocalRef: "lref", OpLocalStore: "lstore",
	OpRegRef: "rref", OpRegStore: "rstore", OpRegDeref: "rderef",
	OpRegDerefStore: "rstoreoff", OpBitTest: "btst", OpByteEq: "byteeq",
	OpByteNe: "bytene", OpCallName: "callname",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "op(?)"
}
