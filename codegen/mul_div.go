package codegen

import "math/bits"

// fastMulThreshold bounds the shift-and-add cost (in Z80 T-state-ish
// "cycles", counted the same way the original's count_mul_cost does:
// 3 per push/pop+add, 1 per doubling) above which a multiply by
// constant falls back to the __mulde helper instead of being expanded
// inline. Mirrors can_fast_mul/count_mul_cost's cutoff.
const fastMulThreshold = 20

// canFastMultiply reports whether multiplying by k is cheap enough to
// expand inline as a shift-and-add sequence rather than calling the
// helper. Only constants with at most two set bits qualify, the ones
// emitFastMultiply expands correctly. Mirrors can_fast_mul.
func canFastMultiply(k uint16) bool {
	return bits.OnesCount16(k) <= 2 && mulCost(k) <= fastMulThreshold
}

// mulCost estimates the shift-and-add cost of multiplying by k: one
// "doubling" step per bit after the lowest set bit, and a push/pop+add
// for every additional set bit beyond the first. Mirrors
// count_mul_cost.
func mulCost(k uint16) int {
	if k == 0 {
		return 0
	}
	hi := 15 - bits.LeadingZeros16(k)
	lo := bits.TrailingZeros16(k)
	cost := hi - lo // doublings
	extraBits := bits.OnesCount16(k) - 1
	cost += extraBits * 3
	return cost
}

// emitFastMultiply expands `hl * k` inline via repeated doubling (`add
// hl,hl`) with a push/pop+add for the second set bit, and a byte-move
// shortcut (`ld h,l` / `ld l,0`, then doublings) when k is 256 times a
// power of two. The product is correct only for k with at most two set
// bits, the constants canFastMultiply admits. Mirrors
// write_mul/gen_fast_mul.
func (c *Compiler) emitFastMultiply(k uint16) {
	if k == 0 {
		c.State.Emit("ld hl,0x0")
		return
	}
	if k == 1 {
		return
	}
	if k&0xFF == 0 && bits.OnesCount16(k>>8) == 1 {
		c.State.Emit("ld h,l")
		c.State.Emit("ld l,0")
		shift := bits.TrailingZeros16(k >> 8)
		for i := 0; i < shift; i++ {
			c.State.Emit("add hl,hl")
		}
		return
	}

	lo := bits.TrailingZeros16(k)
	for i := 0; i < lo; i++ {
		c.State.Emit("add hl,hl")
	}
	remaining := k >> uint(lo)
	first := true
	accumulated := uint16(0)
	for b := 0; remaining != 0; b++ {
		if remaining&1 != 0 {
			if first {
				first = false
			} else {
				c.State.Push("hl")
				for i := 0; i < b-countTrailingAccum(accumulated); i++ {
					c.State.Emit("add hl,hl")
				}
				c.State.Pop("de")
				c.State.Emit("add hl,de")
			}
			accumulated |= 1 << uint(b)
		}
		remaining >>= 1
	}
}

// countTrailingAccum is a helper for emitFastMultiply's doubling
// bookkeeping: the number of trailing zero bits already folded into the
// running accumulator, so the next term only doubles the delta.
func countTrailingAccum(acc uint16) int {
	if acc == 0 {
		return 0
	}
	return bits.TrailingZeros16(acc)
}

// canFastDivide reports whether dividing by k admits an inline
// power-of-two shift sequence. Mirrors the divisor checks in
// gen_fast_div.
func canFastDivide(k uint16) bool {
	return k != 0 && bits.OnesCount16(k) == 1
}

// emitFastDivide expands unsigned `hl / k` for a power-of-two k as a
// right-shift sequence, with the divide-by-256 case collapsing to a
// single byte move and divide-by-1 to a no-op. Mirrors gen_fast_div.
func (c *Compiler) emitFastDivide(k uint16) {
	shift := bits.TrailingZeros16(k)
	if shift == 0 {
		return
	}
	if shift == 8 {
		c.State.Emit("ld l,h")
		c.State.Emit("ld h,0x0")
		return
	}
	for i := 0; i < shift; i++ {
		c.State.Emit("srl h")
		c.State.Emit("rr l")
	}
}

// emitFastRemainder expands unsigned `hl % k` for a power-of-two k as an
// AND-mask against k-1. Mirrors gen_fast_remainder.
func (c *Compiler) emitFastRemainder(k uint16) {
	mask := k - 1
	c.State.Emit("ld a,l")
	c.State.Emit("and 0x%x", mask&0xFF)
	c.State.Emit("ld l,a")
	if mask > 0xFF {
		c.State.Emit("ld a,h")
		c.State.Emit("and 0x%x", mask>>8)
		c.State.Emit("ld h,a")
	} else {
		c.State.Emit("ld h,0x0")
	}
}
