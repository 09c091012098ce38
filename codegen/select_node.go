package codegen

import (
	"z80cc/errtags"
	"z80cc/flags"
	"z80cc/frame"
	"z80cc/ir"
)

// node is the fallback tier of the selection ladder: it must have a
// case for every opcode the rewriter/flag-propagator can hand it, since
// nothing runs after it. Where shortcut/direct haven't already produced
// cheaper code, node falls back to the generic register-convention or
// helper-call sequence. Mirrors the tail of backend-z80.c's gen_node.
func (c *Compiler) node(n *ir.Node) (bool, error) {
	switch n.Op {
	case ir.OpConstant:
		c.loadConstant(n)
		return true, nil

	case ir.OpNameRef:
		c.emitNameRef(n)
		return true, nil

	case ir.OpLabelRef:
		c.emitLabelRef(n)
		return true, nil

	case ir.OpLocalRef:
		return true, c.loadLocal(n)

	case ir.OpRegRef:
		c.loadRegVar(int(n.Value))
		return true, nil

	case ir.OpRegDeref:
		return true, c.loadRegDeref(n)

	case ir.OpNameStore:
		if _, err := c.Value(n.Right); err != nil {
			return false, err
		}
		c.emitNameStore(n)
		return true, nil

	case ir.OpLabelStore:
		if _, err := c.Value(n.Right); err != nil {
			return false, err
		}
		c.emitLabelStore(n)
		return true, nil

	case ir.OpLocalStore:
		if _, err := c.Value(n.Right); err != nil {
			return false, err
		}
		return true, c.storeLocal(n)

	case ir.OpRegStore:
		if _, err := c.Value(n.Right); err != nil {
			return false, err
		}
		c.storeRegVar(int(n.Value))
		return true, nil

	case ir.OpRegDerefStore:
		return true, c.storeRegDeref(n)

	case ir.OpPlus, ir.OpMinus, ir.OpStar, ir.OpSlash, ir.OpPercent,
		ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShiftLeft, ir.OpShiftRight:
		return true, c.binaryHelperCall(n)

	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe, ir.OpByteEq, ir.OpByteNe:
		return true, c.compare(n)

	case ir.OpBitTest:
		return true, c.bitTest(n)

	case ir.OpAndAnd, ir.OpOrOr:
		return true, c.shortCircuit(n)

	case ir.OpBool:
		return true, c.boolify(n)

	case ir.OpNot:
		return true, c.logicalNot(n)

	case ir.OpCast:
		return true, c.cast(n)

	case ir.OpPlusPlus, ir.OpMinusMinus:
		return true, c.incDecPostfix(n)

	case ir.OpPlusEq, ir.OpMinusEq:
		return true, c.compoundAssign(n)

	case ir.OpCallName:
		return true, c.callName(n)

	case ir.OpFuncCall:
		return true, c.callIndirect(n)

	case ir.OpCleanup:
		c.State.Cleanup(int(n.Value), true)
		return true, nil

	case ir.OpDeref:
		return true, c.genericDeref(n)

	case ir.OpAssign:
		return true, c.genericAssign(n)

	default:
		return false, errtags.New("gs", "unhandled opcode in code selector: "+n.Op.String())
	}
}

func (c *Compiler) loadConstant(n *ir.Node) {
	if n.Size() <= 1 {
		c.State.Emit("ld a,0x%x", uint8(n.Value))
		return
	}
	c.State.Emit("ld hl,0x%x", uint16(n.Value))
}

// emitNameRef/emitLabelRef load a global/static (or literal label) into
// a or hl depending on width, always including the folded constant
// displacement (foldConstantOffset leaves it in n.Value, even when
// it's zero). Mirrors load_a_with/load_r_with's T_NREF/T_LBREF arms.
func (c *Compiler) emitNameRef(n *ir.Node) {
	sym := c.Resolver.Name(n.Snum)
	if n.Size() <= 1 {
		c.State.Emit("ld a,(%s+%d)", sym, uint16(n.Value))
		return
	}
	c.State.Emit("ld hl,(%s+%d)", sym, uint16(n.Value))
}

func (c *Compiler) emitLabelRef(n *ir.Node) {
	label := c.Resolver.Label(n.Val2)
	if n.Size() <= 1 {
		c.State.Emit("ld a,(%s+%d)", label, uint16(n.Value))
		return
	}
	c.State.Emit("ld hl,(%s+%d)", label, uint16(n.Value))
}

// emitNameStore/emitLabelStore store a or hl (by width) into a
// global/static or literal label at its folded offset, matching the
// T_NSTORE special-case in gen_deop: a byte-sized store always goes
// through the accumulator, never hl, since that is what the value was
// actually computed in. Mirrors backend-z80.c:2124-2139.
func (c *Compiler) emitNameStore(n *ir.Node) {
	sym := c.Resolver.Name(n.Snum)
	if n.Size() <= 1 {
		c.State.Emit("ld (%s+%d),a", sym, uint16(n.Value))
		return
	}
	c.State.Emit("ld (%s+%d),hl", sym, uint16(n.Value))
}

func (c *Compiler) emitLabelStore(n *ir.Node) {
	label := c.Resolver.Label(n.Val2)
	if n.Size() <= 1 {
		c.State.Emit("ld (%s+%d),a", label, uint16(n.Value))
		return
	}
	c.State.Emit("ld (%s+%d),hl", label, uint16(n.Value))
}

func (c *Compiler) loadLocal(n *ir.Node) error {
	acc, err := c.State.ResolveAccess(int(n.Value), n.Size())
	if err != nil {
		return err
	}
	emitLoadLocal(c.State, acc, n.Size())
	return nil
}

func emitLoadLocal(s *frame.State, acc frame.Access, width int) {
	reg := "hl"
	if width <= 1 {
		reg = "a"
	}
	switch acc.Kind {
	case frame.AccessFramePointer:
		s.Emit("ld %s,(iy + %d)", reg, acc.Offset)
	case frame.AccessStackRelative:
		s.Emit("ld %s,(sp + %d)", reg, acc.Offset)
	case frame.AccessInlineHL:
		s.Emit("ld hl,0x%x", uint16(acc.Offset))
		s.Emit("add hl,sp")
		s.Emit("ld a,(hl)")
	case frame.AccessHelperOffset:
		if width <= 1 {
			s.Emit("call %s", loadByteHelper(acc.Offset))
		} else {
			s.Emit("call %s", loadWordHelper(acc.Offset))
		}
	case frame.AccessHelperEncoded:
		if width <= 1 {
			s.Emit("call __ldbyten")
		} else {
			s.Emit("call __ldwordn")
		}
		s.EmitRaw("\t.word %d", acc.Offset)
	}
}

func (c *Compiler) storeLocal(n *ir.Node) error {
	acc, err := c.State.ResolveAccess(int(n.Value), n.Size())
	if err != nil {
		return err
	}
	emitStoreLocal(c.State, acc, n.Size())
	return nil
}

func emitStoreLocal(s *frame.State, acc frame.Access, width int) {
	reg := "hl"
	if width <= 1 {
		reg = "a"
	}
	switch acc.Kind {
	case frame.AccessFramePointer:
		s.Emit("ld (iy + %d),%s", acc.Offset, reg)
	case frame.AccessStackRelative:
		s.Emit("ld (sp + %d),%s", acc.Offset, reg)
	case frame.AccessInlineHL:
		s.Emit("push af")
		s.Emit("ld hl,0x%x", uint16(acc.Offset))
		s.Emit("add hl,sp")
		s.Emit("inc hl")
		s.Emit("inc hl")
		s.Emit("pop af")
		s.Emit("ld (hl),a")
	case frame.AccessHelperOffset:
		if width <= 1 {
			s.Emit("call %s", storeByteHelper(acc.Offset))
		} else {
			s.Emit("call %s", storeWordHelper(acc.Offset))
		}
	case frame.AccessHelperEncoded:
		if width <= 1 {
			s.Emit("call __stbyten")
		} else {
			s.Emit("call __stwordn")
		}
		s.EmitRaw("\t.word %d", acc.Offset)
	}
}

// loadRegDeref dereferences a register variable plus a constant offset.
// ix/iy address it directly via their native indexed-load form; bc has
// no indexed-addressing mode at all, so the rewriter only ever admits
// bc at offset 0 (see rewrite.regPlusConst), letting this fall back to
// a plain `ld a,(bc)`-shaped load through hl.
func (c *Compiler) loadRegDeref(n *ir.Node) error {
	slot := int(n.Value)
	if slot == regSlotBC {
		c.loadRegVarInto("hl", slot)
		if n.Size() <= 1 {
			c.State.Emit("ld a,(hl)")
		} else {
			c.State.Emit("ld e,(hl)")
			c.State.Emit("inc hl")
			c.State.Emit("ld d,(hl)")
			c.State.Emit("ex de,hl")
		}
		return nil
	}
	reg := regNames[slot]
	if n.Size() <= 1 {
		c.State.Emit("ld a,(%s+%d)", reg, n.Val2)
	} else {
		c.State.Emit("ld l,(%s+%d)", reg, n.Val2)
		c.State.Emit("ld h,(%s+%d)", reg, n.Val2+1)
	}
	return nil
}

func (c *Compiler) storeRegDeref(n *ir.Node) error {
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	if n.Size() > 2 {
		c.State.Emit("call %s", hiRegHelper)
	}
	c.storeRegDerefValue(int(n.Value), n.Val2, n.Size())
	return nil
}

func (c *Compiler) genericDeref(n *ir.Node) error {
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	if n.Size() <= 1 {
		c.State.Emit("ld a,(hl)")
	} else {
		c.State.Emit("ld e,(hl)")
		c.State.Emit("inc hl")
		c.State.Emit("ld d,(hl)")
		c.State.Emit("ex de,hl")
	}
	return nil
}

func (c *Compiler) genericAssign(n *ir.Node) error {
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	c.State.Push("hl")
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	c.State.Pop("de")
	if n.Size() <= 1 {
		c.State.Emit("ld (hl),e")
	} else {
		c.State.Emit("ld (hl),e")
		c.State.Emit("inc hl")
		c.State.Emit("ld (hl),d")
	}
	return nil
}

func (c *Compiler) binaryHelperCall(n *ir.Node) error {
	site, ok := PlanCall(n.Op, n.Type, n.Left, n.Right)
	if !ok {
		return errtags.New("gs", "no helper for operator "+n.Op.String())
	}
	if site.CStyle {
		if _, err := c.Value(n.Left); err != nil {
			return err
		}
		c.State.Push("hl")
		if _, err := c.Value(n.Right); err != nil {
			return err
		}
		c.State.Push("hl")
		c.State.Emit("call %s", site.Name)
		c.State.Cleanup(site.ArgSize, true)
		return nil
	}
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	c.State.Emit("ex de,hl")
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	c.State.Emit("call %s", site.Name)
	return nil
}

func (c *Compiler) compare(n *ir.Node) error {
	if n.Op == ir.OpByteEq || n.Op == ir.OpByteNe {
		op := ir.OpEq
		if n.Op == ir.OpByteNe {
			op = ir.OpNe
		}
		if _, err := c.Value(n.Left); err != nil {
			return err
		}
		c.State.Emit("ex de,hl")
		c.State.Emit("ld hl,0x%x", uint8(n.Value))
		name, _ := HelperFor(op, ir.TypeUint8)
		c.State.Emit("call %s", name)
	} else if err := c.binaryHelperCall(n); err != nil {
		return err
	}
	if n.Flags.Has(ir.FlagUseCC) {
		c.State.Emit("xor a")
		c.State.Emit("cp l")
	}
	return nil
}

func (c *Compiler) bitTest(n *ir.Node) error {
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	c.State.Emit("bit %d,l", n.Value)
	c.State.Polarity = frame.Inverted
	return nil
}

func (c *Compiler) shortCircuit(n *ir.Node) error {
	endLabel := c.AllocateLabel()
	shortCircuitOnFalse := n.Op == ir.OpAndAnd
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	mnemonic := "jp nz,"
	if shortCircuitOnFalse {
		mnemonic = "jp z,"
	}
	if !flags.IsCCOnly(n.Left) {
		c.State.Emit("xor a")
		c.State.Emit("cp l")
		mnemonic = "jp z,"
		if !shortCircuitOnFalse {
			mnemonic = "jp nz,"
		}
	}
	target := c.AllocateLabel()
	c.State.Emit("%s%s", mnemonic, target)
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	c.State.Emit("jp %s", endLabel)
	c.State.Label(target)
	if shortCircuitOnFalse {
		c.State.Emit("ld hl,0x0")
	} else {
		c.State.Emit("ld hl,0x1")
	}
	c.State.Label(endLabel)
	return nil
}

func (c *Compiler) boolify(n *ir.Node) error {
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	if n.Flags.Has(ir.FlagIsBool) {
		return nil
	}
	if n.Left.Size() <= 2 && !n.Left.Type.IsFloat() {
		zero := c.AllocateLabel()
		done := c.AllocateLabel()
		c.State.Emit("xor a")
		c.State.Emit("or l")
		if n.Left.Size() == 2 {
			c.State.Emit("or h")
		}
		c.State.Emit("jp z,%s", zero)
		c.State.Emit("ld hl,0x1")
		c.State.Emit("jp %s", done)
		c.State.Label(zero)
		c.State.Emit("ld hl,0x0")
		c.State.Label(done)
		return nil
	}
	c.State.Emit("call %s", boolHelper)
	return nil
}

func (c *Compiler) logicalNot(n *ir.Node) error {
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	if flags.IsCCOnly(n.Left) {
		c.State.Polarity = frame.Polarity{True: c.State.Polarity.False, False: c.State.Polarity.True}
		return nil
	}
	c.State.Emit("call __lognot")
	return nil
}

func (c *Compiler) cast(n *ir.Node) error {
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	src, dst := n.Right.Type, n.Type
	if dst.Size() <= 1 && src.Size() > 1 {
		// narrowing to a byte: value already sits in L-compatible form
		// after any wider op; nothing further to emit.
		return nil
	}
	if dst.Size() > 1 && src.Size() <= 1 {
		if src.IsUnsigned() {
			c.State.Emit("ld h,0x0")
		} else {
			c.State.Emit("call __sexthl")
		}
	}
	return nil
}

func (c *Compiler) incDecPostfix(n *ir.Node) error {
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	c.State.Push("hl")
	op := "inc"
	if n.Op == ir.OpMinusMinus {
		op = "dec"
	}
	c.State.Emit("%s hl", op)
	if _, err := c.storeBack(n.Left); err != nil {
		return err
	}
	c.State.Pop("hl")
	return nil
}

func (c *Compiler) compoundAssign(n *ir.Node) error {
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	c.State.Push("hl")
	if _, err := c.Value(n.Right); err != nil {
		return err
	}
	c.State.Emit("ex de,hl")
	c.State.Pop("hl")
	if n.Op == ir.OpPlusEq {
		c.State.Emit("add hl,de")
	} else {
		c.State.Emit("or a")
		c.State.Emit("sbc hl,de")
	}
	_, err := c.storeBack(n.Left)
	return err
}

// storeBack re-emits n's address-target as a store of the value
// currently in HL/A; used by the postfix inc/dec and compound-assign
// handlers, which must both read and rewrite the same lvalue.
func (c *Compiler) storeBack(n *ir.Node) (bool, error) {
	store := n.Clone()
	switch n.Op {
	case ir.OpNameRef:
		store.Op = ir.OpNameStore
	case ir.OpLabelRef:
		store.Op = ir.OpLabelStore
	case ir.OpLocalRef:
		store.Op = ir.OpLocalStore
	case ir.OpRegRef:
		store.Op = ir.OpRegStore
	case ir.OpRegDeref:
		store.Op = ir.OpRegDerefStore
	default:
		return false, errtags.New("gs", "unsupported lvalue in increment/compound assign: "+n.Op.String())
	}
	switch store.Op {
	case ir.OpNameStore:
		c.emitNameStore(store)
		return true, nil
	case ir.OpLabelStore:
		c.emitLabelStore(store)
		return true, nil
	case ir.OpLocalStore:
		return true, c.storeLocal(store)
	case ir.OpRegStore:
		c.storeRegVar(int(store.Value))
		return true, nil
	case ir.OpRegDerefStore:
		c.storeRegDerefValue(int(store.Value), store.Val2, n.Size())
		return true, nil
	}
	return false, nil
}

// storeRegDerefValue stores the value already sitting in hl/a into
// register-variable slot at offset off, without re-evaluating any
// source expression. Shared by storeRegDeref (which first evaluates its
// Right child) and storeBack (which already holds the post-increment
// value in hl).
func (c *Compiler) storeRegDerefValue(slot int, off int32, size int) {
	if slot == regSlotBC {
		c.State.Push("hl")
		c.loadRegVarInto("de", slot)
		c.State.Pop("hl")
		if size <= 1 {
			c.State.Emit("ld (de),l")
		} else {
			c.State.Emit("ld (de),l")
			c.State.Emit("inc de")
			c.State.Emit("ld (de),h")
		}
		return
	}
	reg := regNames[slot]
	if size <= 1 {
		c.State.Emit("ld (%s+%d),l", reg, off)
		return
	}
	c.State.Emit("ld (%s+%d),l", reg, off)
	c.State.Emit("ld (%s+%d),h", reg, off+1)
}

func (c *Compiler) callName(n *ir.Node) error {
	argBytes, err := c.pushAllArgs(n.Right)
	if err != nil {
		return err
	}
	if c.Features.Banked {
		c.State.Emit("push af")
		c.State.Emit("call %s+0", c.Resolver.Name(n.Snum))
		c.State.Emit("pop af")
	} else {
		c.State.Emit("call %s", c.Resolver.Name(n.Snum))
	}
	c.State.Cleanup(argBytes, n.Type != ir.TypeVoid)
	return nil
}

func (c *Compiler) callIndirect(n *ir.Node) error {
	argBytes, err := c.pushAllArgs(n.Right)
	if err != nil {
		return err
	}
	if _, err := c.Value(n.Left); err != nil {
		return err
	}
	c.State.Emit("call (hl)")
	c.State.Cleanup(argBytes, n.Type != ir.TypeVoid)
	return nil
}
