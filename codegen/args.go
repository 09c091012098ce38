package codegen

import (
	"github.com/samber/lo"

	"z80cc/ir"
)

// flattenArgs walks a call's comma-chained argument list (the front end
// links arguments right-to-left via OpComma before handing the call
// node down) into an ordered slice, the shape the rest of this file's
// lo-based accounting expects instead of re-walking the chain by hand
// at every call site.
func flattenArgs(n *ir.Node) []*ir.Node {
	var args []*ir.Node
	for n != nil && n.Op == ir.OpComma {
		args = append(args, n.Left)
		n = n.Right
	}
	if n != nil {
		args = append(args, n)
	}
	return args
}

// totalArgBytes sums the stack-passed width of every argument in args,
// the call-site cleanup accounting a C-style call needs to know how
// many bytes to reclaim after the callee returns.
func totalArgBytes(args []*ir.Node) int {
	return lo.SumBy(args, func(a *ir.Node) int { return a.Type.StackSize() })
}

// pushAllArgs evaluates and pushes every argument in left-to-right
// order, returning the total bytes pushed for the caller's eventual
// Cleanup call.
func (c *Compiler) pushAllArgs(n *ir.Node) (int, error) {
	args := flattenArgs(n)
	for _, a := range lo.Reverse(args) {
		if _, err := c.Value(a); err != nil {
			return 0, err
		}
		c.State.Push("hl")
	}
	return totalArgBytes(args), nil
}
