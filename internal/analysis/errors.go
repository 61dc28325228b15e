package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies analysis failures.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindMalformedResponse
	KindUpstreamUnavailable
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConfiguration       = errors.New("configuration error")
)

// User-facing messages.
const (
	msgMalformed   = "Failed to analyze the content. The AI model returned an invalid format."
	msgUnavailable = "Failed to analyze the content. The AI model may be unavailable or the content could not be processed."
)

// Error is returned by the analyzer for every failure. Message is safe to
// show to end users; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	case ErrUpstreamUnavailable:
		return e.Kind == KindUpstreamUnavailable
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	}
	return false
}

// InvalidInput builds a precondition failure with a user-facing message.
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Configuration wraps a startup configuration failure.
func Configuration(err error) *Error {
	return &Error{Kind: KindConfiguration, Message: "configuration error", Err: err}
}

func malformed(err error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: msgMalformed, Err: err}
}

func unavailable(err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msgUnavailable, Err: err}
}

// UserMessage returns the message to surface for err.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "An unknown error occurred."
}
