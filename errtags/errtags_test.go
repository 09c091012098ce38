package errtags

import (
	"testing"

	"github.com/pkg/errors"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestTagRoundTrip(t *testing.T) {
	err := New(TagStack, "delta 4 at epilogue")
	tag, ok := Tag(err)
	assert(t, ok, "expected tag to be found")
	assert(t, tag == TagStack, "tag = %q, want %q", tag, TagStack)
	assert(t, Is(err, TagStack), "Is(err, TagStack) = false")
	assert(t, !Is(err, TagCondCode), "Is(err, TagCondCode) = true, want false")
}

func TestTagSurvivesWrap(t *testing.T) {
	inner := New(TagLocalRange, "offset 300 exceeds DE range")
	wrapped := errors.Wrap(inner, "generating local reference")
	assert(t, Is(wrapped, TagLocalRange), "tag lost across errors.Wrap")
}

func TestTagMissingOnPlainError(t *testing.T) {
	_, ok := Tag(errors.New("plain"))
	assert(t, !ok, "expected plain error to have no tag")
}
