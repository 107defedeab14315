package apperr

import (
	"fmt"
	"time"
)

// Error is the canonical error record produced by the client core. It is a
// value type: construct it, read it, never mutate it after creation.
type Error struct {
	// Code identifies the failure category. Exactly one per error.
	Code Code `json:"code"`

	// Message is a human-readable description. Not guaranteed to be safe for
	// end users; render UserMessage(Code) instead.
	Message string `json:"message"`

	// StatusCode is the HTTP status associated with this failure. Defaults
	// from the code table unless explicitly overridden via NewHTTP.
	StatusCode int `json:"statusCode"`

	// Details carries structured payload captured from the original failure.
	Details any `json:"details,omitempty"`

	// Timestamp records when the error was created.
	Timestamp time.Time `json:"timestamp"`

	// RequestID correlates the error with the originating call in logs.
	RequestID string `json:"requestId,omitempty"`

	cause error
}

// New creates an Error with the code's default status.
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: DefaultStatus(code),
		Timestamp:  time.Now().UTC(),
	}
}

// NewHTTP creates an HTTPError carrying an explicit status.
func NewHTTP(status int, message string) *Error {
	e := New(CodeHTTP, message)
	e.StatusCode = status
	return e
}

// Wrap creates an Error that records err as its cause. The cause is
// reachable through errors.Unwrap / errors.Is / errors.As.
func Wrap(code Code, message string, err error) *Error {
	e := New(code, message)
	e.cause = err
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether this failure may succeed on retry. HTTPError
// values are transient only when they carry a 5xx status.
func (e *Error) Retryable() bool {
	if e.Code == CodeHTTP {
		return e.StatusCode >= 500
	}
	return Retryable(e.Code)
}

// UserMessage returns the fixed user-safe sentence for this error's code.
func (e *Error) UserMessage() string {
	return UserMessage(e.Code)
}

// WithRequestID returns a copy of the error tagged with a correlation ID.
func (e *Error) WithRequestID(id string) *Error {
	dup := *e
	dup.RequestID = id
	return &dup
}

// WithDetails returns a copy of the error carrying structured details.
func (e *Error) WithDetails(details any) *Error {
	dup := *e
	dup.Details = details
	return &dup
}
