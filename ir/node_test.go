package ir

import "testing"

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestTypeSize(t *testing.T) {
	cases := []struct {
		t    Type
		size int
		ssz  int
	}{
		{TypeUint8, 1, 2},
		{TypeInt8, 1, 2},
		{TypeUint16, 2, 2},
		{TypeUint32, 4, 4},
		{TypeFloat64, 8, 8},
		{TypeVoid, 0, 0},
		{TypeUint16 | TypePointer, 2, 2},
		{TypeUint8 | TypePointer, 2, 2},
	}
	for _, c := range cases {
		assert(t, c.t.Size() == c.size, "Size(%v) = %d, want %d", c.t, c.t.Size(), c.size)
		assert(t, c.t.StackSize() == c.ssz, "StackSize(%v) = %d, want %d", c.t, c.t.StackSize(), c.ssz)
	}
}

func TestTypePointerFlagIndependentOfBase(t *testing.T) {
	p := TypeUint8 | TypePointer
	assert(t, p.IsPointer(), "expected pointer flag set")
	assert(t, p.Base() == TypeUint8, "Base() = %v, want TypeUint8", p.Base())
	assert(t, p.Size() == 2, "pointer size must be 16-bit regardless of base, got %d", p.Size())
}

func TestSquashFromPreservesIdentityFields(t *testing.T) {
	inner := &Node{Op: OpName, Value: 4, Val2: 9, Snum: 3}
	outer := &Node{Op: OpDeref, Right: inner}
	outer.SquashFrom(OpNameRef, inner)
	assert(t, outer.Op == OpNameRef, "op not rewritten")
	assert(t, outer.Value == 4 && outer.Val2 == 9 && outer.Snum == 3, "identity fields not copied: %+v", outer)
}

func TestOpcodeSyntheticNeverOverlapsGeneric(t *testing.T) {
	assert(t, !OpPlus.IsSynthetic(), "OpPlus must be generic")
	assert(t, OpNameRef.IsSynthetic(), "OpNameRef must be synthetic")
	assert(t, OpCallName.IsSynthetic(), "OpCallName must be synthetic")
}
