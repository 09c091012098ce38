// Package frame tracks the per-function emission state the Z80 back end
// needs across a single function's code generation: the running stack
// delta, the argument base, the frame-pointer decision, and the current
// condition-code polarity. It also owns the single chokepoint through
// which every push/pop/cleanup must flow, per spec.md §9's "stack
// tracking as a capability" design note.
package frame

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"z80cc/errtags"
	"z80cc/target"
)

// RegSave enumerates the callee-save register-variable slots a function
// may touch, matching backend-z80.c's F_REG(1..3) bits: 1=bc, 2=ix, 3=iy.
type RegSave uint8

const (
	RegBC RegSave = 1 << iota
	RegIX
	RegIY
)

// argBase is the byte offset between the prologue baseline and the first
// argument when no callee-save registers are pushed and banking is off.
const argBase = 2

// Polarity represents the current mapping between "take the branch" and
// "condition-code state", as an explicit (true-mnemonic, false-mnemonic)
// pair rather than the teacher's hidden ccflags global string pair. Each
// comparison that sets FlagUseCC returns one of these; the next branch
// emitter consumes it once (see flags package and codegen/data.go's
// JumpTrue/JumpFalse, the gen_jtrue/gen_jfalse equivalents) and resets
// state.Polarity to Normal.
type Polarity struct {
	// True is the jump-if-true mnemonic suffix ("z" or "nz").
	True string
	// False is the jump-if-false mnemonic suffix, the complement of True.
	False string
}

// Normal is the default polarity: the flags directly reflect the
// comparison as written (zero flag set means "equal" for EQEQ, etc.).
var Normal = Polarity{True: "z", False: "nz"}

// Inverted is the polarity produced when a comparison's sense had to be
// flipped to reuse cheaper flag-setting code (e.g. testing EQ via an OR
// that sets the zero flag on *inequality*).
var Inverted = Polarity{True: "nz", False: "z"}

// State is the mutable state for the function currently being emitted.
// The Compiler resets it (via Reset) at the start of every function; the
// front end's prologue emitter is the only writer of FrameLen/UseFP/etc.
type State struct {
	Features target.Features

	// FrameLen is the number of bytes of local-variable stack frame.
	FrameLen int
	// Delta is the number of bytes currently pushed above the prologue
	// baseline. It must return to exactly zero at every epilogue; see
	// Push/Pop/AdjustStack and CheckBalanced.
	Delta int
	// ArgBase is the byte offset from the prologue baseline to the first
	// argument, after all callee-save pushes and banking adjustment.
	ArgBase int
	// UseFP reports whether this function uses iy as a dedicated frame
	// pointer (fixed at `sp - FrameLen` for the duration of the body).
	UseFP bool
	// FuncCleanup reports whether the epilogue has real work to do
	// (non-zero frame or any callee-save register touched); when false,
	// `return` can short-cut straight to a bare `ret`.
	FuncCleanup bool
	// Unreachable suppresses emission after an unconditional branch or
	// return, until the next label clears it.
	Unreachable bool
	// RegSaves is the set of callee-save registers this function touches.
	RegSaves RegSave
	// OptLevel is 0..3; OptSize prefers code size over speed.
	OptLevel int
	OptSize  bool

	// Polarity is the pending condition-code sense left by the last
	// comparison emitted in flags-only mode. Consumed once by the next
	// conditional-branch emitter, which must reset it to Normal.
	Polarity Polarity

	w io.Writer
}

// New returns a State ready for a fresh function.
func New(w io.Writer, feat target.Features, optLevel int, optSize bool) *State {
	return &State{Features: feat, OptLevel: optLevel, OptSize: optSize, Polarity: Normal, w: w}
}

// Reset clears per-function fields for the next function, reusing the
// allocation (mirrors backend/compiler.go's Reset, and spec.md §9's
// requirement that the front end's reuse of shared state structures
// across functions be explicitly reset at function boundaries).
func (s *State) Reset() {
	s.FrameLen = 0
	s.Delta = 0
	s.ArgBase = argBase
	if s.Features.Banked {
		s.ArgBase += 2
	}
	s.UseFP = false
	s.FuncCleanup = false
	s.Unreachable = false
	s.RegSaves = 0
	s.Polarity = Normal
}

// Emit writes one line of assembly, tab-indented, unless Unreachable
// suppresses it (spec.md §4.3 "Unreachable-code suppression").
func (s *State) Emit(format string, args ...any) {
	if s.Unreachable {
		return
	}
	fmt.Fprintf(s.w, "\t"+format+"\n", args...)
}

// EmitRaw writes a line with no leading tab and no suppression: labels,
// segment directives, and function-name labels are always emitted even
// in nominally unreachable regions, since a label clears Unreachable.
func (s *State) EmitRaw(format string, args ...any) {
	fmt.Fprintf(s.w, format+"\n", args...)
}

// Label emits a local branch-target label and clears Unreachable.
func (s *State) Label(name string) {
	s.EmitRaw("%s:", name)
	s.Unreachable = false
}

// Push emits `push <reg>` and records the 2-byte stack growth. This is
// the only sanctioned way to print a push instruction; direct printing
// of "push" anywhere else is a bug (spec.md §9 design note).
func (s *State) Push(reg string) {
	s.Emit("push %s", reg)
	s.Delta += 2
}

// Pop emits `pop <reg>` and records the 2-byte stack shrink.
func (s *State) Pop(reg string) {
	s.Emit("pop %s", reg)
	s.Delta -= 2
}

// AdjustStack records a stack-pointer change of n bytes (positive grows,
// negative shrinks) performed by some other instruction sequence (direct
// arithmetic on sp, or a call's automatic argument cleanup) without
// itself emitting anything — callers still emit their own instructions,
// but must route the bookkeeping through here.
func (s *State) AdjustStack(n int) {
	s.Delta += n
}

// CheckBalanced returns the "sp" internal error if the stack delta is
// non-zero, which is a fatal internal-consistency failure at any
// function epilogue (spec.md §3 invariants, §7 taxonomy item 2).
func (s *State) CheckBalanced() error {
	if s.Delta != 0 {
		return errtags.New("sp", fmt.Sprintf("stack delta %d at epilogue, want 0", s.Delta))
	}
	return nil
}

// Offset returns the current stack-pointer-relative offset for a local
// declared at prologue-relative offset v: v corrected by however much
// has been pushed since the prologue ran.
func (s *State) Offset(v int) int { return v + s.Delta }

// MarkUnreachable sets Unreachable after an unconditional branch/return.
func (s *State) MarkUnreachable() { s.Unreachable = true }

// WrapInternal wraps err (if non-nil) with a message naming tag as an
// otherwise-opaque internal failure during emission, preserving the
// original cause. The tag appears only in the message text: errtags.Tag
// finds a tag on the result only if err itself carries one.
func WrapInternal(tag string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errtags.New(tag, "internal codegen error").Error())
}
