package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorStringIncludesCodeAndMessage(t *testing.T) {
	err := New(TypeError, "bad operand")
	s := err.Error()
	if !strings.Contains(s, string(TypeError)) || !strings.Contains(s, "bad operand") {
		t.Fatalf("Error() = %q, want it to mention code and message", s)
	}
	if strings.Contains(s, "at ") {
		t.Fatalf("Error() = %q, should not include a span when none was set", s)
	}
}

func TestWithSpanAddsLocation(t *testing.T) {
	err := New(ParseError, "unexpected token").WithSpan(Span{Start: 3, End: 7})
	s := err.Error()
	if !strings.Contains(s, "3:7") {
		t.Fatalf("Error() = %q, want it to include the span", s)
	}
}

func TestWithSpanDoesNotMutateOriginal(t *testing.T) {
	orig := New(ParseError, "x")
	spanned := orig.WithSpan(Span{Start: 1, End: 2})
	if orig.Span.Valid() {
		t.Fatalf("WithSpan should not mutate the receiver")
	}
	if !spanned.Span.Valid() {
		t.Fatalf("WithSpan should set the span on the returned copy")
	}
}

func TestWrapPreservesCauseViaUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(ConversionError, "conversion failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) should hold through Unwrap")
	}
}

func TestNewfFormats(t *testing.T) {
	err := Newf(ArgumentCountMismatch, "%s expects %d args, got %d", "foo", 1, 2)
	if !strings.Contains(err.Message, "foo expects 1 args, got 2") {
		t.Fatalf("Newf message = %q", err.Message)
	}
}

func TestSpanValid(t *testing.T) {
	if (Span{}).Valid() {
		t.Fatalf("zero Span should not be valid")
	}
	if !(Span{Start: 0, End: 1}).Valid() {
		t.Fatalf("Span{0,1} should be valid")
	}
}
