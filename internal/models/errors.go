package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the services.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrUnauthorized
	ErrServiceUnavailable
	ErrNotFound
	ErrQuotaExhausted
	ErrInvalidInput
	ErrPayloadTooLarge
	ErrUnsupportedMedia
	ErrGenerationFailed
	ErrPersistence
)

var kindNames = map[ErrorKind]string{
	ErrUnknown:            "unknown",
	ErrUnauthorized:       "unauthorized",
	ErrServiceUnavailable: "service_unavailable",
	ErrNotFound:           "not_found",
	ErrQuotaExhausted:     "quota_exhausted",
	ErrInvalidInput:       "invalid_input",
	ErrPayloadTooLarge:    "payload_too_large",
	ErrUnsupportedMedia:   "unsupported_media",
	ErrGenerationFailed:   "generation_failed",
	ErrPersistence:        "persistence_error",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ErrRecordNotFound is returned by stores when no record matches.
var ErrRecordNotFound = errors.New("record not found")

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError creates a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error around a cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or ErrUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
