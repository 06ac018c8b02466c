// Package gderr collects the error taxonomy shared by every core
// component. The teacher (package compiler) gives each layer its own
// tiny error struct (SemanticError, DeveloperError); this package
// generalizes that idiom into one Kind-tagged type so the public API in
// package gdscript can return a stable sentinel plus a last-error string
// (per spec §6.4, §7) regardless of which internal layer failed.
package gderr

import "github.com/pkg/errors"

// Kind classifies the failure, mirroring spec §7's error taxonomy.
type Kind string

const (
	InvalidBuffer      Kind = "InvalidBuffer"
	UnsupportedFormat  Kind = "UnsupportedFormat"
	VariantDecodeError Kind = "VariantDecodeError"
	VariantEncodeError Kind = "VariantEncodeError"
	CompressionError   Kind = "CompressionError"
	InvalidScriptState Kind = "InvalidScriptState"
	BadRegistration    Kind = "BadRegistration"
	UnknownRevision    Kind = "UnknownRevision"
)

// Error is the concrete error value returned (wrapped) from every core
// operation that can fail. It is never panicked; callers receive it
// through a normal Go error return.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap exposes the wrapped cause so callers can use errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: errors.Errorf(format, args...).Error()}
}

// Wrap attaches a cause to a new Error of the given kind, preserving the
// cause's stack via github.com/pkg/errors so it survives from the
// deepest layer (variant, bufcodec) up to the gdscript public boundary.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: errors.WithMessage(cause, message)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
