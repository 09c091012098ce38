package codegen

import (
	"bytes"
	"strings"
	"testing"

	"z80cc/frame"
	"z80cc/ir"
	"z80cc/target"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

type fakeResolver struct{}

func (fakeResolver) Name(snum int32) string  { return "sym" }
func (fakeResolver) Label(n int32) string    { return "lbl" }

func newTestCompiler() (*Compiler, *bytes.Buffer) {
	var buf bytes.Buffer
	st := frame.New(&buf, target.Z80, 2, false)
	return New(target.Z80, fakeResolver{}, st), &buf
}

func TestCompileConstantLoad(t *testing.T) {
	c, buf := newTestCompiler()
	n := &ir.Node{Op: ir.OpConstant, Type: ir.TypeInt16, Value: 42}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "ld hl,0x2a"), "expected constant load, got:\n%s", buf.String())
}

func TestCompileFunctionBalancesStack(t *testing.T) {
	c, buf := newTestCompiler()
	body := &ir.Node{Op: ir.OpConstant, Type: ir.TypeInt16, Value: 1}
	err := c.CompileFunction("main", body, 0, 0, true, false)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "ret"), "expected epilogue ret, got:\n%s", buf.String())
}

func TestDirectAddSmallConstantUsesIncSequence(t *testing.T) {
	c, buf := newTestCompiler()
	left := &ir.Node{Op: ir.OpLocal, Type: ir.TypeInt16, Value: 4}
	n := ir.New(ir.OpPlus, ir.TypeInt16, left, &ir.Node{Op: ir.OpConstant, Value: 2})
	// local ref shape, pre-rewrite, so pretend already canonicalised:
	n.Left.Op = ir.OpLocalRef
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Count(buf.String(), "inc hl") == 2, "expected two inc hl, got:\n%s", buf.String())
}

func TestDirectMultiplyByPowerOfTwo(t *testing.T) {
	c, buf := newTestCompiler()
	left := &ir.Node{Op: ir.OpLocalRef, Type: ir.TypeInt16, Value: 4}
	n := ir.New(ir.OpStar, ir.TypeInt16, left, &ir.Node{Op: ir.OpConstant, Value: 4})
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Count(buf.String(), "add hl,hl") == 2, "expected two doublings for *4, got:\n%s", buf.String())
}

func TestBinaryHelperCallForGeneralMultiply(t *testing.T) {
	c, buf := newTestCompiler()
	left := &ir.Node{Op: ir.OpLocalRef, Type: ir.TypeInt16, Value: 4}
	right := &ir.Node{Op: ir.OpLocalRef, Type: ir.TypeInt16, Value: 6}
	n := ir.New(ir.OpStar, ir.TypeInt16, left, right)
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "call __mulde"), "expected helper call, got:\n%s", buf.String())
}

func TestRegVarBCLoadUsesDirectTransfer(t *testing.T) {
	c, buf := newTestCompiler()
	n := &ir.Node{Op: ir.OpRegRef, Type: ir.TypeInt16, Value: 1}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	out := buf.String()
	assert(t, strings.Contains(out, "ld l,c") && strings.Contains(out, "ld h,b"), "expected bc transfer, got:\n%s", out)
}

func TestRegVarIXLoadUsesPushPop(t *testing.T) {
	c, buf := newTestCompiler()
	n := &ir.Node{Op: ir.OpRegRef, Type: ir.TypeInt16, Value: 2}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	out := buf.String()
	assert(t, strings.Contains(out, "push ix") && strings.Contains(out, "pop hl"), "expected push/pop transfer, got:\n%s", out)
}

func TestRegDerefOnBCAcceptsOffsetZero(t *testing.T) {
	c, _ := newTestCompiler()
	n := &ir.Node{Op: ir.OpRegDeref, Type: ir.TypeInt16, Value: 1, Val2: 0}
	_, err := c.Value(n)
	assert(t, err == nil, "offset 0 on bc must be accepted, got %v", err)
}

func TestByteEqCompareGoesThroughHelper(t *testing.T) {
	c, buf := newTestCompiler()
	n := &ir.Node{Op: ir.OpByteEq, Type: ir.TypeUint8, Left: &ir.Node{Op: ir.OpLocalRef, Type: ir.TypeUint8}, Value: 65}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "call __cmpeq"), "expected byte-compare helper call, got:\n%s", buf.String())
}

func TestCallNameEmitsDirectCall(t *testing.T) {
	c, buf := newTestCompiler()
	n := &ir.Node{Op: ir.OpCallName, Type: ir.TypeInt16, Snum: 3}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "call sym"), "expected direct call, got:\n%s", buf.String())
}

func TestCallNameBankedWrapsWithPushPopAF(t *testing.T) {
	var buf bytes.Buffer
	st := frame.New(&buf, target.Z80.WithBanked(), 2, false)
	c := New(target.Z80.WithBanked(), fakeResolver{}, st)
	n := &ir.Node{Op: ir.OpCallName, Type: ir.TypeInt16, Snum: 3}
	_, err := c.Value(n)
	assert(t, err == nil, "unexpected error: %v", err)
	out := buf.String()
	assert(t, strings.Contains(out, "push af") && strings.Contains(out, "pop af"), "expected banked call wrapping, got:\n%s", out)
}

func TestHelperNameWidthAndSign(t *testing.T) {
	name, ok := HelperFor(ir.OpStar, ir.TypeUint16)
	assert(t, ok, "expected helper for star")
	assert(t, name == "__muldeu", "expected __muldeu, got %s", name)

	name, ok = HelperFor(ir.OpStar, ir.TypeInt8)
	assert(t, ok, "expected helper for byte star")
	assert(t, name == "__mul", "expected __mul, got %s", name)
}

func TestCStyleForcedByFloatOperand(t *testing.T) {
	floatNode := &ir.Node{Type: ir.TypeFloat32}
	intNode := &ir.Node{Type: ir.TypeInt16}
	assert(t, cStyle(ir.OpPlus, ir.TypeInt16, floatNode, intNode), "float operand must force c-style")
	assert(t, !cStyle(ir.OpAssign, ir.TypeFloat32, floatNode, floatNode), "assignment must never be c-style")
}

func TestSwitchBelowThresholdEmitsLinearChain(t *testing.T) {
	c, buf := newTestCompiler()
	c.Switch([]SwitchCase{{Value: 1, Label: "L1"}, {Value: 2, Label: "L2"}}, "Ldefault")
	out := buf.String()
	assert(t, strings.Contains(out, "jp z,L1") && strings.Contains(out, "jp z,L2"), "expected linear compare chain, got:\n%s", out)
	assert(t, strings.Contains(out, "jp Ldefault"), "expected default fallthrough jump, got:\n%s", out)
}

func TestDataEmitsDirectivesAndOmitsZeroAddend(t *testing.T) {
	c, buf := newTestCompiler()
	c.Data("g", []DataItem{{Width: 2, Value: 7}, {Width: 1, SymbolName: "other", Value: 0}, {Width: 0, Space: 4}})
	out := buf.String()
	assert(t, strings.Contains(out, "g:"), "expected label, got:\n%s", out)
	assert(t, strings.Contains(out, ".word 7"), "expected word directive, got:\n%s", out)
	assert(t, strings.Contains(out, ".byte other") && !strings.Contains(out, "other+0"), "expected zero addend omitted, got:\n%s", out)
	assert(t, strings.Contains(out, ".ds 4"), "expected reserved-space directive, got:\n%s", out)
}
