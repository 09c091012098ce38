package frame

import "z80cc/errtags"

// deOffsetCeiling is the largest offset a DE-relative load/store helper
// call can address; beyond it the local/argument reference is out of
// range for every strategy this tracker implements and is an internal
// error rather than a silent miss, since the front end is responsible
// for never generating a frame larger than the target's addressable
// local space. Mirrors backend-z80.c's "lrr" fatal check in
// generate_lref.
const deOffsetCeiling = 253

// helperCeiling is the offset past which a per-offset __ldbyteN/
// __ldwordN helper call stops being worth generating (the original
// caps the specialised-per-offset helper family at 24 distinct
// offsets and falls back to a generic `.byte`/`.word`-follower-encoded
// helper beyond it).
const helperCeiling = 24

// AccessKind names which addressing strategy Access chose for a given
// local/argument reference.
type AccessKind int

const (
	// AccessFramePointer addresses the slot via iy+offset.
	AccessFramePointer AccessKind = iota
	// AccessStackRelative addresses the slot via a native sp-relative
	// load (Rabbit/Z280 only).
	AccessStackRelative
	// AccessInlineHL computes the address via `ld hl,n / add hl,sp`
	// and dereferences HL, used for a handful of byte loads when no
	// frame pointer is in use.
	AccessInlineHL
	// AccessHelperOffset calls a per-offset helper (__ldbyteN etc.) for
	// offsets small enough to have one.
	AccessHelperOffset
	// AccessHelperEncoded calls a generic helper that reads its offset
	// from a `.word` literal following the call instruction,
	// for offsets too large for a per-offset helper.
	AccessHelperEncoded
)

// Access describes how to reach a local/argument slot at a given
// current stack offset.
type Access struct {
	Kind   AccessKind
	Offset int
}

// ResolveAccess picks the cheapest addressing strategy available for
// referencing a local/argument at frame offset v, given the function's
// current frame-pointer decision and the stack delta already pushed
// since the prologue ran. byteWidth is the access width in bytes: 1
// selects the byte forms, 2 the word forms; a wider access is not split
// into several here. Mirrors generate_lref/generate_lref_a.
func (s *State) ResolveAccess(v int, byteWidth int) (Access, error) {
	if s.UseFP {
		return Access{Kind: AccessFramePointer, Offset: v}, nil
	}

	off := s.Offset(v)

	if s.Features.HasLDHLSP && (s.Features.HasLDASP || byteWidth == 2) {
		return Access{Kind: AccessStackRelative, Offset: off}, nil
	}

	if byteWidth == 1 && (s.OptLevel < 2 || off < 0) {
		return Access{Kind: AccessInlineHL, Offset: off}, nil
	}

	if off >= 0 && off < helperCeiling {
		return Access{Kind: AccessHelperOffset, Offset: off}, nil
	}

	if off < 0 || off > deOffsetCeiling {
		return Access{}, errtags.New("lrr", "local/argument offset out of addressable range")
	}
	return Access{Kind: AccessHelperEncoded, Offset: off}, nil
}
