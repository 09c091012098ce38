// Package codegen is the Code Selector and Helper Dispatcher: it walks
// a rewritten, flag-propagated tree and emits Z80 assembly text,
// falling back to a runtime helper-library call for any operation with
// no cheap inline sequence. Grounded on backend-z80.c's
// gen_shortcut/gen_direct/gen_node ladder and its helper-naming scheme,
// and on wazero's backend.Compiler for the overall orchestration shape
// (Compile/lowerBlock/MarkLowered become CompileFunction/Statement/Value).
package codegen

import (
	"fmt"
	"strings"

	"z80cc/ir"
)

// helperName builds the runtime-library symbol a binary operator must
// call when no inline sequence applies: __<op><width><sign>, where
// width is empty for byte operands, "de" for 16-bit operands and "del"
// for 32-bit and wider (long) operands, and sign is "u" for unsigned
// operands (omitted for signed, matching the original's convention that
// signed is the default). Mirrors the helper/helper_s naming in
// backend-z80.c.
func helperName(base string, typ ir.Type) string {
	var b strings.Builder
	b.WriteString("__")
	b.WriteString(base)
	size := typ.Size()
	switch {
	case size <= 1:
		// Byte helpers carry no width suffix; they're the common case.
	case size == 2:
		b.WriteString("de")
	case size >= 4:
		b.WriteString("del")
	}
	if typ.IsUnsigned() && base != "assign" {
		b.WriteString("u")
	}
	return b.String()
}

// opHelperBase maps a generic arithmetic/bitwise/comparison opcode to
// the helper-name base used when no fast-path sequence applies.
var opHelperBase = map[ir.Opcode]string{
	ir.OpStar:    "mul",
	ir.OpSlash:   "div",
	ir.OpPercent: "rem",
	ir.OpAnd:     "band",
	ir.OpOr:      "bor",
	ir.OpXor:     "bxor",
	ir.OpShiftLeft:  "shl",
	ir.OpShiftRight: "shr",
	ir.OpEq:      "cmpeq",
	ir.OpNe:      "cmpne",
	ir.OpLt:      "cmplt",
	ir.OpLe:      "cmplteq",
	ir.OpGt:      "cmpgt",
	ir.OpGe:      "cmpgteq",
}

// HelperFor returns the runtime symbol to call for op at type typ, and
// ok=false if op has no helper-dispatchable form (the caller has a bug
// if it reaches here for such an op).
func HelperFor(op ir.Opcode, typ ir.Type) (string, bool) {
	base, ok := opHelperBase[op]
	if !ok {
		return "", false
	}
	return helperName(base, typ), true
}

// cStyle reports whether a binary operator's helper call must use the
// C argument-passing convention (push both operands, call, caller cleans up)
// rather than the register convention (left in DE, right in HL, or
// vice versa) the rest of the dispatcher prefers for speed. Assignment
// is always register-style; any float operand or a float result type
// forces C-style regardless of the operator, since the float helper
// library is built expecting stack-passed arguments throughout.
// Mirrors backend-z80.c's c_style predicate.
func cStyle(op ir.Opcode, typ ir.Type, left, right *ir.Node) bool {
	if op == ir.OpAssign || op == ir.OpPlusEq || op == ir.OpMinusEq {
		return false
	}
	if typ.IsFloat() {
		return true
	}
	if left != nil && left.Type.IsFloat() {
		return true
	}
	if right != nil && right.Type.IsFloat() {
		return true
	}
	return false
}

// DispatchSite describes one helper call's calling-convention shape, as
// decided by cStyle, ready for an emitter to lay down the actual push/
// call/cleanup sequence.
type DispatchSite struct {
	Name    string
	CStyle  bool
	ArgSize int // total bytes of arguments the call consumes (C-style only)
}

// PlanCall decides the calling convention for invoking a helper for op
// at type typ with the given operands, returning the fully-formed site.
func PlanCall(op ir.Opcode, typ ir.Type, left, right *ir.Node) (DispatchSite, bool) {
	name, ok := HelperFor(op, typ)
	if !ok {
		return DispatchSite{}, false
	}
	style := cStyle(op, typ, left, right)
	site := DispatchSite{Name: name, CStyle: style}
	if style {
		if left != nil {
			site.ArgSize += left.Type.StackSize()
		}
		if right != nil {
			site.ArgSize += right.Type.StackSize()
		}
	}
	return site, true
}

// loadByteHelper/loadWordHelper name the local/argument-access helpers
// generate_lref falls back to once an offset exceeds every inline
// addressing mode (see frame.Access); N is the offset in bytes.
func loadByteHelper(n int) string  { return fmt.Sprintf("__ldbyte%d", n) }
func loadWordHelper(n int) string  { return fmt.Sprintf("__ldword%d", n) }
func storeByteHelper(n int) string { return fmt.Sprintf("__stbyte%d", n) }
func storeWordHelper(n int) string { return fmt.Sprintf("__stword%d", n) }

// assignLongHelper names the 32-bit constant-assignment fast-path
// helper family: __assign<N>l stores an N-byte-offset 32-bit constant,
// mirroring the original's assign0la/assignl0de special cases for the
// all-zero and mixed-zero forms.
func assignLongHelper(offset int) string {
	return fmt.Sprintf("__assign%dl", offset)
}

// boolHelper is the fallback used to materialise a 0/1 value from an
// arbitrary multi-byte subtree when no inline zero test applies.
const boolHelper = "__bool"

// hiRegHelper is the 32-bit high-word store helper T_REQ falls back to
// when storing a long through a register-indexed pointer.
const hiRegHelper = "__hireg"
