// Package flags implements the Flag Propagator: it decides, bottom-up
// over an already-rewritten tree, which comparison and boolean subtrees
// can be left as a processor-flag result (FlagCCOnly/FlagUseCC) instead
// of being materialised into a 0/1 value, and records whether a parent
// that consumes those flags may safely invert their sense
// (FlagCCFixed) — directly grounded on backend-z80.c's
// propogate_cconly/is_ccdown/is_cconly.
package flags

import "z80cc/ir"

// Propagate walks n bottom-up, setting FlagCCOnly (and, under a NOT,
// FlagCCFixed) on every subtree that may be consumed as flags rather
// than a value. It does not set FlagUseCC.
// It must run after the Tree Rewriter, since it special-cases the
// synthetic OpBitTest opcode the rewriter doesn't introduce — that one
// is introduced here, mirroring the original's single-bit-AND-to-BTST
// rewrite living inside propogate_cconly rather than gen_rewrite_node.
func Propagate(n *ir.Node, wantCC bool) {
	if n == nil {
		return
	}

	switch n.Op {
	case ir.OpAndAnd, ir.OpOrOr:
		// Short-circuit logical ops: both operands may be evaluated in
		// flags-only mode if the whole expression is itself wanted as
		// flags; the result of the AndAnd/OrOr itself is also CC-capable.
		Propagate(n.Left, wantCC)
		Propagate(n.Right, wantCC)
		if wantCC {
			n.Flags |= ir.FlagCCOnly
		}
		return

	case ir.OpNot:
		Propagate(n.Left, wantCC)
		if wantCC && n.Left.Flags.Has(ir.FlagCCOnly) {
			n.Flags |= ir.FlagCCOnly | ir.FlagCCFixed
		}
		return

	case ir.OpAnd:
		Propagate(n.Left, false)
		Propagate(n.Right, false)
		if wantCC && isSingleBitConst(n.Right) {
			rewriteToBitTest(n)
			n.Flags |= ir.FlagCCOnly
		}
		return
	}

	if n.Op.IsComparison() {
		Propagate(n.Left, false)
		Propagate(n.Right, false)
		if wantCC {
			n.Flags |= ir.FlagCCOnly
		}
		return
	}

	// Default: neither operand is wanted as flags; recurse plainly.
	Propagate(n.Left, false)
	Propagate(n.Right, false)
}

// isSingleBitConst reports whether n is a constant with exactly one bit
// set, the shape propogate_cconly special-cases into a BTST test rather
// than a full AND-then-compare-to-zero sequence.
func isSingleBitConst(n *ir.Node) bool {
	if n == nil || n.Op != ir.OpConstant {
		return false
	}
	v := uint32(n.Value)
	return v != 0 && v&(v-1) == 0
}

// bitIndex returns the 0-based index of the single set bit in v; callers
// must check isSingleBitConst first.
func bitIndex(v uint32) int32 {
	var i int32
	for v > 1 {
		v >>= 1
		i++
	}
	return i
}

// rewriteToBitTest collapses `n.Left AND (1<<k)` into a single OpBitTest
// node testing bit k of n.Left, mirroring the original's inline rewrite
// of T_AND into T_BTST inside propogate_cconly (the one rewriter-style
// transform that lives in the Flag Propagator rather than the Tree
// Rewriter, because it only applies when the result is wanted as flags).
func rewriteToBitTest(n *ir.Node) {
	bit := bitIndex(uint32(n.Right.Value))
	left := n.Left
	n.Op = ir.OpBitTest
	n.Value = bit
	n.Left = nil
	n.Right = left
}

// IsCCDown reports whether n's result, as currently flagged, is already
// sitting in the processor flags ready for a parent to branch on
// directly — mirrors is_ccdown.
func IsCCDown(n *ir.Node) bool {
	return n != nil && n.Flags.Has(ir.FlagCCOnly) && n.Flags.Has(ir.FlagUseCC)
}

// IsCCOnly reports whether n was marked CCOnly by Propagate, regardless
// of whether a UseCC result has actually been produced yet — mirrors
// is_cconly.
func IsCCOnly(n *ir.Node) bool {
	return n != nil && n.Flags.Has(ir.FlagCCOnly)
}

// CanInvert reports whether a consumer may swap n's branch polarity
// (e.g. to reuse a cheaper flag-setting sequence) without violating a
// FlagCCFixed subtree's fixed sense.
func CanInvert(n *ir.Node) bool {
	return n != nil && !n.Flags.Has(ir.FlagCCFixed)
}
