package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure.
type Kind int

const (
	KindInput     Kind = iota + 1 // Rejected before any network call
	KindTransport                 // Backend unreachable, timed out or cancelled
	KindServer                    // Backend answered with a failure
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// User-facing fallback messages.
const (
	MsgEmptyTopic      = "Please enter a topic"
	MsgUnreachable     = "Backend unreachable. Please ensure the analysis server is running."
	MsgServerFailure   = "Analysis failed. Please ensure the backend server is running."
	MsgUnsuccessful    = "Analysis returned unsuccessful result"
	MsgMalformed       = "Malformed response from backend"
	MsgTopicTooLong    = "Topic must be at most 200 characters"
	MsgBadCount        = "Article count must be between 1 and 10"
	MsgUnknownPlatform = "Unsupported platform"
)

// Error is a classified dispatch failure. Message is safe to show to the
// user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status for server errors, 0 otherwise
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == k
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

func inputError(msg string) *Error {
	return &Error{Kind: KindInput, Message: msg}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: MsgUnreachable, Err: err}
}

func serverError(status int, msg string, err error) *Error {
	return &Error{Kind: KindServer, Message: msg, Status: status, Err: err}
}
