// Package diagnostics defines the stable error vocabulary shared by every
// engine component: lexer, parser, evaluator, registry.
package diagnostics

import "fmt"

// Code is a stable, documented error code of the shape FP00xx.
type Code string

const (
	LexError              Code = "FP0001"
	ParseError            Code = "FP0002"
	TypeError              Code = "FP0050"
	InvalidArity            Code = "FP0051"
	UnknownVariable       Code = "FP0052"
	ArgumentCountMismatch Code = "FP0053"
	UnknownFunction       Code = "FP0054"
	Unimplemented         Code = "FP0055"
	DivisionByZero        Code = "FP0056"
	IncompatibleUnits     Code = "FP0057"
	InvalidRegex          Code = "FP0058"
	ConversionError       Code = "FP0059"
	NoTerminologyProvider Code = "FP0060"
)

// Span is a byte-offset range into the original expression source.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span carries real offsets (the zero Span does not).
func (s Span) Valid() bool {
	return s.End > s.Start || s.Start > 0 || s.End > 0
}

// Error is the single error type produced anywhere in the engine.
type Error struct {
	Code    Code
	Span    Span
	Message string
	// Wrapped, when non-nil, is the underlying cause (e.g. a UCUM parse error).
	Wrapped error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) WithSpan(span Span) *Error {
	e2 := *e
	e2.Span = span
	return &e2
}

func (e *Error) Error() string {
	if e.Span.Valid() {
		return fmt.Sprintf("%s: %s (at %d:%d)", e.Code, e.Message, e.Span.Start, e.Span.End)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Wrap attaches an underlying cause to a new Error without discarding the code.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Wrapped: cause}
}
