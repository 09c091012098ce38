package codegen

import "z80cc/ir"

// DataItem describes one entry of a global's initialiser: either a
// literal value of a given byte width, or a reference to another
// symbol/label plus an addend (a zero addend is omitted, leaving the
// bare symbol name; see gen_literal/gen_name/gen_value).
type DataItem struct {
	Width int // 1 ("byte"), 2 ("word"), or 0 for a reserved-space item
	Value int32
	// SymbolName, if non-empty, emits a symbol reference instead of
	// Value; Value then becomes an addend.
	SymbolName string
	// Space, when Width==0, is the byte count a `.ds` reserves.
	Space int
}

// Data emits one global's initializer list under the given label,
// choosing `.byte`/`.word`/`.ds` directives per item. Mirrors
// gen_data_label/gen_space/gen_text_data/gen_literal/gen_name/
// gen_value.
func (c *Compiler) Data(label string, items []DataItem) {
	c.State.Label(label)
	for _, it := range items {
		switch {
		case it.Width == 0:
			c.State.Emit(".ds %d", it.Space)
		case it.SymbolName != "":
			if it.Value == 0 {
				c.State.Emit("%s %s", directiveFor(it.Width), it.SymbolName)
			} else {
				c.State.Emit("%s %s+%d", directiveFor(it.Width), it.SymbolName, it.Value)
			}
		default:
			c.State.Emit("%s %d", directiveFor(it.Width), it.Value)
		}
	}
}

func directiveFor(width int) string {
	if width == 1 {
		return ".byte"
	}
	return ".word"
}

// Segment emits a segment-change directive, the rough equivalent of
// gen_segment; segments are named by the front end, not enumerated
// here, since the set of valid segment names is a target/linker
// concern outside this module's scope.
func (c *Compiler) Segment(name string) {
	c.State.EmitRaw("\t.area %s", name)
}

// Export emits a global-visibility directive for a symbol, mirroring
// gen_export.
func (c *Compiler) Export(name string) {
	c.State.EmitRaw("\t.globl %s", name)
}

// SwitchCase is one arm of a jump-table switch: Value is the case
// constant, Label is the branch target.
type SwitchCase struct {
	Value int32
	Label string
}

// Switch emits a dispatch sequence for a switch statement over the
// value currently in hl: a linear compare-and-branch chain below
// switchTableThreshold cases, and a jump-table lookup (built via
// SwitchData) above it, with defaultLabel taken when nothing matches.
// Mirrors gen_switch's two strategies.
const switchTableThreshold = 8

func (c *Compiler) Switch(cases []SwitchCase, defaultLabel string) {
	if len(cases) < switchTableThreshold {
		for _, cs := range cases {
			c.State.Emit("ld de,0x%x", uint16(cs.Value))
			c.State.Emit("or a")
			c.State.Emit("sbc hl,de")
			c.State.Emit("jp z,%s", cs.Label)
			c.State.Emit("add hl,de")
		}
		c.State.Emit("jp %s", defaultLabel)
		return
	}
	tableLabel := c.AllocateLabel()
	c.State.Emit("call __switch")
	c.State.EmitRaw("\t.word %s", tableLabel)
	c.State.EmitRaw("\t.word %d", len(cases))
	c.SwitchData(tableLabel, cases, defaultLabel)
}

// SwitchData emits the jump table a table-driven Switch dispatch reads:
// one (value, label) pair per case, sorted by the front end beforehand
// so the runtime helper can binary-search it. Mirrors
// gen_switchdata/gen_case_label/gen_case_data.
func (c *Compiler) SwitchData(label string, cases []SwitchCase, defaultLabel string) {
	c.State.Label(label)
	for _, cs := range cases {
		c.State.EmitRaw("\t.word %d, %s", uint16(cs.Value), cs.Label)
	}
	c.State.EmitRaw("\t.word %s", defaultLabel)
}

// JumpTrue/JumpFalse consume n's pending condition-code polarity (set
// by a prior CCOnly evaluation) to branch to target, then reset
// Polarity to its normal sense so a stale polarity can never leak into
// the next, unrelated branch. Mirrors gen_jtrue/gen_jfalse.
func (c *Compiler) JumpTrue(n *ir.Node, target string) {
	c.State.Emit("jp %s,%s", c.State.Polarity.True, target)
	c.resetPolarity()
}

func (c *Compiler) JumpFalse(n *ir.Node, target string) {
	c.State.Emit("jp %s,%s", c.State.Polarity.False, target)
	c.resetPolarity()
}

func (c *Compiler) resetPolarity() {
	c.State.Polarity.True, c.State.Polarity.False = "z", "nz"
}
