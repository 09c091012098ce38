// Package errtags classifies the back end's internal-consistency
// failures with a short stable tag, mirroring the original backend's
// practice of calling its fatal-error routine with a two/three-letter
// code ("sp", "gs", "gseg", "rega", "lrr", "ccf"). These are bugs in the
// back end itself, never a user-facing diagnostic about the input
// program — see spec.md §7's error taxonomy.
package errtags

import "github.com/pkg/errors"

// Known tags. A tag outside this set still works (New never validates
// its tag argument). Of these, the rest of the module emits "sp", "gs"
// and "lrr"; "gseg", "rega" and "ccf" are not emitted by any package here.
const (
	// TagStack marks a stack-delta imbalance detected at a function
	// epilogue.
	TagStack = "sp"
	// TagGlobalSize is the "gs" tag, which the Code Selector emits when
	// no selection rule handles a node's opcode or lvalue shape.
	TagGlobalSize = "gs"
	// TagGlobalSegment marks an attempt to emit data into a segment the
	// target doesn't define.
	TagGlobalSegment = "gseg"
	// TagRegAlloc marks a register-variable slot request that the
	// current function state cannot satisfy (no free slot, or the slot
	// mapping disagrees with the frame's RegSaves bitset).
	TagRegAlloc = "rega"
	// TagLocalRange marks a local/argument reference whose computed
	// offset escapes every addressing mode the Frame/Stack Tracker
	// implements for the current target (e.g. a DE-relative load beyond
	// the offset-253 ceiling).
	TagLocalRange = "lrr"
	// TagCondCode marks a condition-code-polarity request the Flag
	// Propagator or Code Selector cannot satisfy (e.g. consuming a
	// FlagUseCC result twice, or a CCFIXED subtree asked to invert).
	TagCondCode = "ccf"
)

// Error is an internal-consistency failure, tagged with a short stable
// code so callers (principally tests) can assert on *which* invariant
// broke without string-matching the message.
type Error struct {
	Tag     string
	Message string
}

func (e *Error) Error() string { return e.Tag + ": " + e.Message }

// New constructs a tagged internal error.
func New(tag, message string) error {
	return &Error{Tag: tag, Message: message}
}

// Tag returns the tag on err if it is (or wraps) an *Error, and ok=false
// otherwise.
func Tag(err error) (tag string, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag, true
	}
	return "", false
}

// Is reports whether err is (or wraps) a tagged error with exactly tag.
func Is(err error, tag string) bool {
	t, ok := Tag(err)
	return ok && t == tag
}
