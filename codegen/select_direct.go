package codegen

import "z80cc/ir"

// incDecShortcutMax bounds the constant delta a PLUS/MINUS against a
// constant right operand may use repeated inc/dec for, instead of a
// full add via DE. Mirrors the small-constant fast path in gen_direct's
// T_PLUS/T_MINUS handling.
const incDecShortcutMax = 4

// direct is the middle tier of the selection ladder: it inspects a
// node's right operand (already reordered to be the simpler one by the
// rewriter's commutative-reorder rule, for commutative ops) and, when
// that operand is a compile-time constant or otherwise "direct", emits
// a cheaper sequence than the generic helper-call path node would fall
// back to. Mirrors backend-z80.c's gen_direct.
func (c *Compiler) direct(n *ir.Node) (bool, error) {
	switch n.Op {
	case ir.OpPlus, ir.OpMinus:
		return c.directAddSub(n)
	case ir.OpStar:
		return c.directMultiply(n)
	case ir.OpSlash:
		return c.directDivide(n)
	case ir.OpPercent:
		return c.directRemainder(n)
	case ir.OpAnd, ir.OpOr, ir.OpXor:
		return c.directLogic(n)
	}
	return false, nil
}

func constOperand(n *ir.Node) (int32, bool) {
	if n != nil && n.Op == ir.OpConstant {
		return n.Value, true
	}
	return 0, false
}

// directAddSub special-cases a small constant delta as repeated
// inc/dec, and otherwise loads the left operand into hl, the right into
// de, and adds/subtracts directly rather than dispatching a helper call
// — Z80 has native 16-bit add/subtract-with-carry, so PLUS/MINUS never
// need __addde/__subde helpers the way STAR/SLASH do. Mirrors the
// T_PLUS/T_MINUS arm of gen_direct.
func (c *Compiler) directAddSub(n *ir.Node) (bool, error) {
	k, ok := constOperand(n.Right)
	if !ok {
		return c.directAddSubGeneral(n)
	}
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	op := "inc"
	if n.Op == ir.OpMinus {
		op = "dec"
	}
	if k >= 0 && k <= incDecShortcutMax {
		for i := int32(0); i < k; i++ {
			c.State.Emit("%s hl", op)
		}
		return true, nil
	}
	c.State.Emit("ld de,0x%x", uint16(k))
	if n.Op == ir.OpPlus {
		c.State.Emit("add hl,de")
	} else {
		c.State.Emit("or a")
		c.State.Emit("sbc hl,de")
	}
	return true, nil
}

func (c *Compiler) directAddSubGeneral(n *ir.Node) (bool, error) {
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	c.State.Push("hl")
	if _, err := c.Value(n.Right); err != nil {
		return false, err
	}
	c.State.Emit("ex de,hl")
	c.State.Pop("hl")
	if n.Op == ir.OpPlus {
		c.State.Emit("add hl,de")
	} else {
		c.State.Emit("or a")
		c.State.Emit("sbc hl,de")
	}
	return true, nil
}

// directMultiply uses the shift-and-add expansion for a cheap constant
// right operand, falling through to the helper-dispatching node tier
// otherwise. Mirrors gen_direct's T_STAR case.
func (c *Compiler) directMultiply(n *ir.Node) (bool, error) {
	k, ok := constOperand(n.Right)
	if !ok || n.Size() > 2 || !canFastMultiply(uint16(k)) {
		return false, nil
	}
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	c.emitFastMultiply(uint16(k))
	return true, nil
}

// directDivide uses the power-of-two shift expansion for a cheap
// constant right operand. Mirrors gen_direct's T_SLASH case.
func (c *Compiler) directDivide(n *ir.Node) (bool, error) {
	k, ok := constOperand(n.Right)
	if !ok || n.Size() > 2 || !n.Type.IsUnsigned() || !canFastDivide(uint16(k)) {
		return false, nil
	}
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	c.emitFastDivide(uint16(k))
	return true, nil
}

// directRemainder uses the AND-mask expansion for a cheap constant
// right operand. Mirrors gen_direct's T_PERCENT case.
func (c *Compiler) directRemainder(n *ir.Node) (bool, error) {
	k, ok := constOperand(n.Right)
	if !ok || n.Size() > 2 || !n.Type.IsUnsigned() || !canFastDivide(uint16(k)) {
		return false, nil
	}
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	c.emitFastRemainder(uint16(k))
	return true, nil
}

// directLogic special-cases AND/OR/XOR against a byte-sized constant:
// 0/255 degenerate to a constant result or a no-op for several of the
// operators, and the general byte case goes through the accumulator
// rather than a 16-bit helper call. Mirrors gen_logicc.
func (c *Compiler) directLogic(n *ir.Node) (bool, error) {
	k, ok := constOperand(n.Right)
	if !ok || n.Size() > 1 {
		return false, nil
	}
	b := uint8(k)
	if _, err := c.Value(n.Left); err != nil {
		return false, err
	}
	switch n.Op {
	case ir.OpAnd:
		switch b {
		case 0:
			c.State.Emit("ld a,0x0")
		case 0xFF:
			// no-op: AND with all-ones leaves the value unchanged
		default:
			c.State.Emit("and 0x%x", b)
		}
	case ir.OpOr:
		switch b {
		case 0:
			// no-op
		case 0xFF:
			c.State.Emit("ld a,0xff")
		default:
			c.State.Emit("or 0x%x", b)
		}
	case ir.OpXor:
		switch b {
		case 0:
			// no-op
		case 0xFF:
			c.State.Emit("cpl")
		default:
			c.State.Emit("xor 0x%x", b)
		}
	}
	return true, nil
}
