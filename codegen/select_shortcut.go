package codegen

import (
	"z80cc/ir"
)

// shortcut is the top-priority tier of the selection ladder: the
// handful of shapes cheap enough to special-case before falling back to
// direct/node's more general handling. A false, nil return means "try
// the next tier", never an error — only node (the final tier) may
// report "no rule matched" as an internal-consistency failure. Mirrors
// backend-z80.c's gen_shortcut.
func (c *Compiler) shortcut(n *ir.Node) (bool, error) {
	if c.State.Unreachable {
		return true, nil
	}

	switch n.Op {
	case ir.OpComma:
		if err := c.Statement(n.Left); err != nil {
			return false, err
		}
		_, err := c.Value(n.Right)
		return true, err

	case ir.OpLocalStore:
		return c.shortcutStoreLocalConstant(n)

	case ir.OpPlusPlus, ir.OpMinusMinus:
		return c.shortcutRegIncDec(n)

	case ir.OpPlusEq, ir.OpMinusEq:
		return c.shortcutLocalIncDec(n)
	}

	return false, nil
}

// shortcutStoreLocalConstant special-cases storing a known 16-bit
// constant directly into an offset-0 word local via the `ex (sp),hl` /
// `push` trick, sparing a full load-then-store round trip through a
// register. Mirrors gen_shortcut's T_LSTORE offset-0 fast path.
func (c *Compiler) shortcutStoreLocalConstant(n *ir.Node) (bool, error) {
	if n.Right == nil || n.Right.Op != ir.OpConstant || n.Value != 0 || n.Size() != 2 {
		return false, nil
	}
	if c.State.UseFP {
		return false, nil
	}
	c.State.Emit("ld hl,0x%x", uint16(n.Right.Value))
	c.State.Emit("ex (sp),hl")
	c.State.Pop("hl")
	c.State.Push("hl")
	return true, nil
}

// regIncDecThreshold bounds how large a constant increment/decrement of
// a register variable may be before the shortcut's repeated inc/dec
// sequence is no longer cheaper than a full add. Mirrors
// reg_canincdec's cost check in backend-z80.c.
const regIncDecThreshold = 4

// shortcutRegIncDec special-cases `regvar++`/`regvar--` with repeated
// inc/dec on the register pair directly, skipping the generic
// load-increment-store sequence entirely since the register variable
// never needs to visit hl. Mirrors gen_shortcut's register-targeted
// T_PLUSPLUS/T_MINUSMINUS case; note the original's T_PLUSPLUS case
// falls through into T_PLUSEQ handling when the incremented value is
// actually used by the caller (the result is the *pre*-increment
// value), which this shortcut only short-circuits for the
// pure-side-effect (value discarded) case.
func (c *Compiler) shortcutRegIncDec(n *ir.Node) (bool, error) {
	if n.Left == nil || n.Left.Op != ir.OpRegRef {
		return false, nil
	}
	if !n.Flags.Has(ir.FlagNoReturn) {
		// Fall through: the caller wants the pre-increment value, which
		// needs the full read-modify-write path in node/direct.
		return false, nil
	}
	name := regNames[int(n.Left.Value)]
	op := "inc"
	if n.Op == ir.OpMinusMinus {
		op = "dec"
	}
	c.State.Emit("%s %s", op, name)
	return true, nil
}

// shortcutLocalIncDec special-cases `local += k`/`local -= k` for a
// small byte-sized constant k against a frame-pointer-addressed local,
// emitting repeated `inc (iy + n)`/`dec (iy + n)` in place rather than
// the generic load/add/store round trip through hl. If the result is
// consumed, the updated value is reloaded afterward. Mirrors the
// repeated_op("inc (hl)", v) fast path T_PLUSEQ takes for a byte target
// in backend-z80.c, generalised to the frame-pointer addressing this
// module uses for locals instead of a bare (hl) dereference.
func (c *Compiler) shortcutLocalIncDec(n *ir.Node) (bool, error) {
	if n.Left == nil || n.Left.Op != ir.OpLocalRef {
		return false, nil
	}
	if !c.State.UseFP || n.Left.Size() > 1 {
		return false, nil
	}
	k, ok := constOperand(n.Right)
	if !ok || k < 1 || k > incDecShortcutMax {
		return false, nil
	}
	op := "inc"
	if n.Op == ir.OpMinusEq {
		op = "dec"
	}
	offset := int(n.Left.Value)
	for i := int32(0); i < k; i++ {
		c.State.Emit("%s (iy + %d)", op, offset)
	}
	if n.Flags.Has(ir.FlagNoReturn) {
		return true, nil
	}
	return true, c.loadLocal(n.Left)
}
