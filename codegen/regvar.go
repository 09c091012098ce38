package codegen

// regNames maps a register-variable slot number to its Z80 register
// pair name, mirroring backend-z80.c's regnames table (slot 0 unused,
// 1=bc, 2=ix, 3=iy).
var regNames = map[int]string{1: "bc", 2: "ix", 3: "iy"}

// regSlotBC is the slot number for the bc register-variable, the only
// pair with a register-to-register transfer path (`ld l,c` / `ld h,b`)
// to/from a destination pair; ix/iy must go through the stack instead since the Z80 has no
// direct move between an index register and another 16-bit pair.
const regSlotBC = 1

// pairHalves names the high/low single-register letters of a 16-bit
// destination pair this dispatcher ever targets.
func pairHalves(pair string) (hi, lo string) {
	switch pair {
	case "de":
		return "d", "e"
	default:
		return "h", "l"
	}
}

// loadRegVarInto materialises register-variable slot into dst ("hl" or
// "de"). bc has a cheap two-instruction transfer (`ld l,c` / `ld h,b`,
// or the de equivalent); ix/iy must be pushed and popped back into dst,
// since no Z80 variant in this family has a direct index-register move.
// Mirrors get_regvar/load_regvar's BC-shortcut-vs-push/pop split.
func (c *Compiler) loadRegVarInto(dst string, slot int) {
	if slot == regSlotBC {
		hi, lo := pairHalves(dst)
		c.State.Emit("ld %s,c", lo)
		c.State.Emit("ld %s,b", hi)
		return
	}
	c.State.Push(regNames[slot])
	c.State.Pop(dst)
}

// loadRegVar is loadRegVarInto with hl as the implicit destination, the
// form the generic codegen ladder uses for a bare register-variable
// reference.
func (c *Compiler) loadRegVar(slot int) { c.loadRegVarInto("hl", slot) }

// storeRegVar stores hl into register-variable slot, the mirror of
// loadRegVar.
func (c *Compiler) storeRegVar(slot int) {
	if slot == regSlotBC {
		c.State.Emit("ld c,l")
		c.State.Emit("ld b,h")
		return
	}
	c.State.Push("hl")
	c.State.Pop(regNames[slot])
}
