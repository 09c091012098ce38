package codegen

import (
	"github.com/pkg/errors"

	"z80cc/errtags"
	"z80cc/flags"
	"z80cc/frame"
	"z80cc/ir"
	"z80cc/rewrite"
	"z80cc/target"
)

// SymbolResolver names the collaborator the front end must supply: the
// Code Selector only ever sees symbol-table indices (ir.Node.Snum) and
// needs a name to emit. Kept as an interface rather than a concrete
// type since the symbol table itself lives entirely outside this
// module's scope (see spec.md's external-interfaces section).
type SymbolResolver interface {
	// Name returns the emittable assembly label for symbol snum.
	Name(snum int32) string
	// Label returns the emittable assembly label for literal/static
	// label number n.
	Label(n int32) string
}

// Compiler is the Code Selector's orchestrator: one instance compiles a
// whole translation unit, reusing its *frame.State across functions via
// Reset the way backend.Compiler reuses its vreg/definition tables
// across lowering runs.
type Compiler struct {
	Features target.Features
	Resolver SymbolResolver
	State    *frame.State

	labelCounter int
}

// New constructs a Compiler bound to feat and writing through st, which
// the caller owns and may point at any io.Writer (see frame.New).
func New(feat target.Features, resolver SymbolResolver, st *frame.State) *Compiler {
	return &Compiler{Features: feat, Resolver: resolver, State: st}
}

// AllocateLabel returns a fresh internal label name, analogous to
// backend/isa/arm64/machine.go's allocateLabel.
func (c *Compiler) AllocateLabel() string {
	c.labelCounter++
	return formatLocalLabel(c.labelCounter)
}

func formatLocalLabel(n int) string {
	return "L" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// CompileFunction runs the full pipeline (rewrite, flag propagation,
// prologue, body, epilogue) for one function body, mirroring
// backend.Compiler.Compile's shape: prepare → lower → finish.
func (c *Compiler) CompileFunction(name string, body *ir.Node, frameSize int, saves frame.RegSave, iyFree bool, isVoid bool) error {
	body = rewrite.Rewrite(body)
	flags.Propagate(body, false)

	c.State.EmitRaw("")
	c.State.EmitRaw("%s:", name)
	c.State.Prologue(frameSize, saves, iyFree)

	if err := c.Statement(body); err != nil {
		return errors.Wrapf(err, "compiling function %s", name)
	}

	return c.State.Epilogue(!isVoid)
}

// Statement compiles n for its side effects only, discarding any value
// it produces — the entry point gen_shortcut/gen_direct/gen_node all
// ultimately serve, applied at the statement-sequence level the way
// backend.compiler.lowerBlock walks a block's instructions in order.
func (c *Compiler) Statement(n *ir.Node) error {
	if n == nil {
		return nil
	}
	if n.Op == ir.OpComma {
		if err := c.Statement(n.Left); err != nil {
			return err
		}
		return c.Statement(n.Right)
	}
	_, err := c.Value(n)
	return err
}

// Value compiles n so that its result ends up in the accumulator/HL
// (per its type's width) or, for a CCOnly node, leaves the result
// solely in the processor flags with Polarity describing how to branch
// on it. It is the single recursive entry point the three selection
// tiers call back into for subexpressions. Mirrors backend-z80.c's
// top-level gen_node dispatch, which every other gen_* function calls
// back into for operand sub-evaluation.
func (c *Compiler) Value(n *ir.Node) (handled bool, err error) {
	if n == nil {
		return true, nil
	}
	if ok, err := c.shortcut(n); ok || err != nil {
		return ok, err
	}
	if ok, err := c.direct(n); ok || err != nil {
		return ok, err
	}
	handled, err := c.node(n)
	if err != nil {
		return handled, err
	}
	return handled, mustHandle(n.Op, handled)
}

// mustHandle wraps a ladder result, turning "fell through every tier"
// into the internal consistency failure it actually is: every rewritten,
// flag-propagated opcode must be handled by node's fallback level, so
// reaching the bottom unhandled means a new opcode was added to ir
// without a matching codegen case.
func mustHandle(op ir.Opcode, handled bool) error {
	if !handled {
		return errtags.New("gs", "no code selector rule matched opcode "+op.String())
	}
	return nil
}
