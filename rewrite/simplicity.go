package rewrite

import "z80cc/ir"

// simplicity scores how cheap a subtree is to re-evaluate on the right
// of a commutative operator, after the left/right swap the reorder rule
// performs. Only the relative ordering between scores matters, never the
// absolute numbers — mirrors backend-z80.c's is_simple exactly, constant
// for constant, since the original's scoring table is itself the
// contract other helper-selection code downstream implicitly assumes
// (see DESIGN.md's Open Question decision on this score table).
func simplicity(n *ir.Node) int {
	if n == nil {
		return 0
	}
	switch n.Op {
	case ir.OpConstant, ir.OpLabel, ir.OpName, ir.OpReg:
		return 10
	case ir.OpNameRef, ir.OpLabelRef:
		return 9
	case ir.OpRegRef, ir.OpRegDeref:
		return 5
	default:
		return 0
	}
}

// reorderCommutative swaps n's children when the left-hand side is
// strictly simpler to re-materialise than the right, so the Code
// Selector's direct-operand ladder (which only ever inspects the right
// child) sees the cheapest operand there. Mirrors the tail of
// gen_rewrite_node's commutative-operator case.
func reorderCommutative(n *ir.Node) {
	if !n.Op.IsCommutative() {
		return
	}
	if simplicity(n.Right) < simplicity(n.Left) {
		n.Left, n.Right = n.Right, n.Left
	}
}
