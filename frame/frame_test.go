package frame

import (
	"bytes"
	"strings"
	"testing"

	"z80cc/errtags"
	"z80cc/target"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestBalancedFunctionEpilogueSucceeds(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(6, 0, true)
	s.Push("hl")
	s.Pop("hl")
	assert(t, s.Epilogue(false) == nil, "expected balanced epilogue to succeed")
}

func TestUnbalancedFunctionEpilogueFails(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(6, 0, true)
	s.Push("hl")
	err := s.Epilogue(false)
	assert(t, err != nil, "expected imbalance to be detected")
	assert(t, errtags.Is(err, errtags.TagStack), "expected sp tag, got %v", err)
}

func TestSmallFrameUsesPushPerWord(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(4, 0, true)
	out := buf.String()
	assert(t, strings.Contains(out, "push hl"), "expected push-per-word frame alloc, got:\n%s", out)
	assert(t, !s.UseFP, "small frame should not use a frame pointer")
}

func TestLargeFrameWithFreeIYUsesFramePointer(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(20, 0, true)
	assert(t, s.UseFP, "large frame with free iy should dedicate a frame pointer")
	out := buf.String()
	assert(t, strings.Contains(out, "ld iy,0xffec"), "expected frame pointer setup, got:\n%s", out)
}

func TestLargeFrameWithIYBusyUsesHLArithmetic(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(20, RegIY, false)
	assert(t, !s.UseFP, "frame pointer unavailable when iy is busy")
	out := buf.String()
	assert(t, strings.Contains(out, "ld hl,0xffec"), "expected HL-arithmetic frame alloc, got:\n%s", out)
}

func TestOddFrameSizeAdjustsByOneByte(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(3, 0, true)
	assert(t, strings.Contains(buf.String(), "dec sp"), "expected odd-size correction")
}

func TestCalleeSavesShiftArgBase(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(0, RegBC|RegIX, true)
	assert(t, s.ArgBase == argBase+4, "expected ArgBase shifted by 2 saved registers, got %d", s.ArgBase)
}

func TestBankedModeShiftsArgBase(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80.WithBanked(), 2, false)
	s.Prologue(0, 0, true)
	assert(t, s.ArgBase == argBase+2, "expected banked ArgBase shift, got %d", s.ArgBase)
}

func TestCleanupPopsWords(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(0, 0, true)
	s.Push("hl")
	s.Push("hl")
	s.Cleanup(4, false)
	assert(t, s.Delta == 0, "expected cleanup to rebalance Delta, got %d", s.Delta)
}

func TestAccessFramePointerWhenUseFP(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(20, 0, true)
	a, err := s.ResolveAccess(4, 2)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, a.Kind == AccessFramePointer, "expected frame-pointer access, got %v", a.Kind)
}

func TestAccessHelperOffsetForSmallStackRelative(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(0, 0, true)
	a, err := s.ResolveAccess(4, 2)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, a.Kind == AccessHelperOffset, "expected helper-offset access, got %v", a.Kind)
}

func TestAccessOutOfRangeIsLRRError(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Z80, 2, false)
	s.Prologue(0, 0, true)
	_, err := s.ResolveAccess(-400, 2)
	assert(t, errtags.Is(err, errtags.TagLocalRange), "expected lrr tag, got %v", err)
}

func TestStackRelativeOnRabbit(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, target.Rabbit, 2, false)
	s.Prologue(0, 0, true)
	a, err := s.ResolveAccess(4, 2)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, a.Kind == AccessStackRelative, "expected stack-relative access on Rabbit, got %v", a.Kind)
}
