package rewrite

import (
	"testing"

	"z80cc/ir"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func constNode(v int32) *ir.Node {
	return &ir.Node{Op: ir.OpConstant, Type: ir.TypeInt16, Value: v}
}

func TestFoldConstantOffsetIntoLocal(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	n := ir.New(ir.OpPlus, ir.TypeInt16, local, constNode(6))
	got := Rewrite(n)
	assert(t, got.Op == ir.OpLocal, "expected OpLocal, got %v", got.Op)
	assert(t, got.Value == 10, "expected folded offset 10, got %d", got.Value)
}

func TestCanonicalizeDerefOfName(t *testing.T) {
	name := &ir.Node{Op: ir.OpName, Type: ir.TypeInt16, Snum: 7}
	n := ir.New(ir.OpDeref, ir.TypeInt16, name, nil)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpNameRef, "expected OpNameRef, got %v", got.Op)
	assert(t, got.Snum == 7, "expected Snum preserved, got %d", got.Snum)
}

func TestCanonicalizeAssignToLocal(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 2}
	val := constNode(9)
	n := ir.New(ir.OpAssign, ir.TypeInt16, local, val)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpLocalStore, "expected OpLocalStore, got %v", got.Op)
	assert(t, got.Right == val, "expected stored value preserved")
}

func TestByteCompareShortcut(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	cast := ir.New(ir.OpCast, ir.TypeUint8, nil, local)
	n := ir.New(ir.OpEq, ir.TypeInt16, cast, constNode(65))
	got := Rewrite(n)
	assert(t, got.Op == ir.OpByteEq, "expected OpByteEq, got %v", got.Op)
	assert(t, got.Value == 65, "expected constant 65 carried in Value, got %d", got.Value)
	assert(t, got.Left == local, "expected cast elided down to the local")
}

func TestByteCompareNotAppliedWhenConstantTooWide(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	cast := ir.New(ir.OpCast, ir.TypeUint8, nil, local)
	n := ir.New(ir.OpEq, ir.TypeInt16, cast, constNode(300))
	got := Rewrite(n)
	assert(t, got.Op == ir.OpEq, "expected comparison left generic when constant exceeds a byte, got %v", got.Op)
}

func TestRegIndexedDerefWithinRange(t *testing.T) {
	reg := &ir.Node{Op: ir.OpReg, Type: ir.TypeInt16, Value: 2} // ix
	n := ir.New(ir.OpDeref, ir.TypeInt16, ir.New(ir.OpPlus, ir.TypeInt16, reg, constNode(10)), nil)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpRegDeref, "expected OpRegDeref, got %v", got.Op)
	assert(t, got.Value == 2 && got.Val2 == 10, "expected slot=2 off=10, got slot=%d off=%d", got.Value, got.Val2)
}

func TestRegIndexedDerefBCRejectsNonzeroOffset(t *testing.T) {
	reg := &ir.Node{Op: ir.OpReg, Type: ir.TypeInt16, Value: regSlotBC}
	inner := ir.New(ir.OpPlus, ir.TypeInt16, reg, constNode(4))
	n := ir.New(ir.OpDeref, ir.TypeInt16, inner, nil)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpDeref, "bc with nonzero offset must not collapse to OpRegDeref, got %v", got.Op)
}

func TestElideCastSameWidthSameSign(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeUint16, Value: 4}
	n := ir.New(ir.OpCast, ir.TypeUint16, nil, local)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpLocal, "expected cast elided, got %v", got.Op)
	assert(t, got.Value == 4, "expected identity fields preserved, got %d", got.Value)
}

func TestElideCastSignOnlyDifference(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	n := ir.New(ir.OpCast, ir.TypeUint16, nil, local)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpLocal, "sign-only cast at equal width must be elided, got %v", got.Op)
	assert(t, got.Value == 4, "expected identity fields preserved, got %d", got.Value)
}

func TestElideCastKeptAcrossPointerBoundary(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeUint16, Value: 4}
	n := ir.New(ir.OpCast, ir.TypeUint16|ir.TypePointer, nil, local)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpCast, "pointer/non-pointer cast at equal width must not be elided, got %v", got.Op)
}

func TestCollapseDirectCall(t *testing.T) {
	name := &ir.Node{Op: ir.OpName, Type: ir.TypeInt16, Snum: 12}
	n := ir.New(ir.OpFuncCall, ir.TypeInt16, name, nil)
	got := Rewrite(n)
	assert(t, got.Op == ir.OpCallName, "expected OpCallName, got %v", got.Op)
	assert(t, got.Snum == 12, "expected callee symbol preserved, got %d", got.Snum)
}

func TestCommutativeReorderPutsSimplerOperandOnRight(t *testing.T) {
	complex := &ir.Node{Op: ir.OpRegDeref, Type: ir.TypeInt16}
	simple := &ir.Node{Op: ir.OpConstant, Type: ir.TypeInt16, Value: 3}
	n := ir.New(ir.OpPlus, ir.TypeInt16, complex, simple)
	got := Rewrite(n)
	assert(t, got.Right == simple, "expected simpler constant operand reordered to the right")
}

func TestRewriteIsIdempotent(t *testing.T) {
	local := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	n := ir.New(ir.OpPlus, ir.TypeInt16, local, constNode(6))
	once := Rewrite(n)
	snapshot := *once
	twice := Rewrite(once)
	assert(t, *twice == snapshot, "second rewrite pass must be a no-op, got %+v want %+v", *twice, snapshot)
}
