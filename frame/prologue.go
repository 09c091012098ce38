package frame

// frameThresholdHL is the frame size above which sp-adjustment by
// repeated `dec sp` is abandoned in favour of HL arithmetic
// (`ld hl,-n / add hl,sp / ld sp,hl`), matching gen_frame's size>10
// branch.
const frameThresholdHL = 10

// framePointerMinSize is the frame size a frame must exceed before
// dedicating iy as a frame pointer is considered worthwhile; at or below it the
// fixed per-access overhead of loading iy once isn't repaid.
const framePointerMinSize = 4

// Prologue decides the frame strategy for a function of the given
// local-variable size and register-save set, then emits the prologue
// sequence. iyFree reports whether the front end has not already
// committed iy to a register variable in this function (use_fp and a
// register-variable iy are mutually exclusive). Mirrors gen_prologue/
// gen_frame's use_fp heuristic: a dedicated frame pointer is chosen
// when iy is free (iyFree set and iy not in saves) and the frame is
// larger than framePointerMinSize; OptSize is not consulted. Otherwise a
// size-tiered sp adjustment is used (HL arithmetic above 10 bytes,
// else push-per-word with a trailing `dec sp` for an odd byte).
//
// The callee-save pushes and frame allocation emitted here are
// structural, not body temporaries, so they bypass Push/Pop and leave
// Delta at the zero Reset set it to: Delta exists to let the Code
// Selector verify *its own* temporary pushes balance by the time
// Epilogue runs, not to account for bookkeeping the prologue/epilogue
// pair already guarantees balances by construction.
func (s *State) Prologue(size int, saves RegSave, iyFree bool) {
	s.Reset()
	s.FrameLen = size
	s.RegSaves = saves

	if saves&RegBC != 0 {
		s.Emit("push bc")
	}
	if saves&RegIX != 0 {
		s.Emit("push ix")
	}
	if saves&RegIY != 0 {
		s.Emit("push iy")
	}
	s.ArgBase += bits(saves) * 2

	s.FuncCleanup = size != 0 || saves != 0

	if size == 0 {
		return
	}

	s.UseFP = iyFree && saves&RegIY == 0 && size > framePointerMinSize
	switch {
	case s.UseFP:
		s.Emit("ld iy,0x%x", uint16(-size))
		s.Emit("add iy,sp")
		s.Emit("ld sp,iy")
	case size > frameThresholdHL:
		s.Emit("ld hl,0x%x", uint16(-size))
		s.Emit("add hl,sp")
		s.Emit("ld sp,hl")
	default:
		words := size / 2
		for i := 0; i < words; i++ {
			s.Emit("push hl")
		}
		if size%2 != 0 {
			s.Emit("dec sp")
		}
	}
}

// bits counts the set register-save bits (0..3), used to size the
// prologue's automatic argument-base shift.
func bits(r RegSave) int {
	n := 0
	for r != 0 {
		n += int(r & 1)
		r >>= 1
	}
	return n
}

// Epilogue emits the mirror of Prologue: a CheckBalanced assertion that
// the body's own temporary pushes have all been popped, frame teardown,
// callee-save pop in reverse push order, then `ret`. preserveHL, when
// true, wraps the teardown in `ex de,hl` / `ex de,hl` so a return value
// already sitting in HL survives stack-pointer arithmetic that would
// otherwise clobber it (the frame-pointer form touches iy, not hl, so
// never needs the swap). Returns the "sp" internal error if Delta is
// non-zero, meaning some Code Selector push bypassed its matching pop.
// Mirrors gen_epilogue.
func (s *State) Epilogue(preserveHL bool) error {
	if err := s.CheckBalanced(); err != nil {
		return err
	}

	size := s.FrameLen
	switch {
	case size == 0:
		// nothing to unwind
	case s.UseFP:
		s.Emit("ld sp,iy")
		s.Emit("add sp,0x%x", uint16(size))
	case size > frameThresholdHL:
		if preserveHL {
			s.Emit("ex de,hl")
		}
		s.Emit("ld hl,0x%x", uint16(size))
		s.Emit("add hl,sp")
		s.Emit("ld sp,hl")
		if preserveHL {
			s.Emit("ex de,hl")
		}
	default:
		if preserveHL {
			s.Emit("ex de,hl")
		}
		if size%2 != 0 {
			s.Emit("inc sp")
		}
		words := size / 2
		for i := 0; i < words; i++ {
			s.Emit("pop hl")
		}
		if preserveHL {
			s.Emit("ex de,hl")
		}
	}

	if s.RegSaves&RegIY != 0 {
		s.Emit("pop iy")
	}
	if s.RegSaves&RegIX != 0 {
		s.Emit("pop ix")
	}
	if s.RegSaves&RegBC != 0 {
		s.Emit("pop bc")
	}

	s.Emit("ret")
	s.MarkUnreachable()
	return nil
}

// Cleanup emits the call-site argument-space reclaim after a function
// call whose callee does not pop its own arguments, for n bytes of
// pushed arguments previously staged via Push (so Delta already counts
// them). Sizes above the HL-arithmetic threshold use `ex de,hl` to
// protect a return value the same way Epilogue does; sizes at or below
// it pop per word, preceded by an `inc sp` for an odd byte. Mirrors
// gen_cleanup.
func (s *State) Cleanup(n int, preserveHL bool) {
	if n == 0 {
		return
	}
	if n > frameThresholdHL {
		if preserveHL {
			s.Emit("ex de,hl")
		}
		s.Emit("ld hl,0x%x", uint16(n))
		s.Emit("add hl,sp")
		s.Emit("ld sp,hl")
		if preserveHL {
			s.Emit("ex de,hl")
		}
		s.AdjustStack(-n)
		return
	}
	if n%2 != 0 {
		s.Emit("inc sp")
		s.AdjustStack(-1)
		n--
	}
	for i := 0; i < n/2; i++ {
		s.Pop("hl")
	}
}
