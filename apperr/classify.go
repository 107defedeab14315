package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Response mirrors the pieces of an HTTP-like reply the classifier inspects.
// The transport that produced it is irrelevant; only the status and any
// decoded body matter here.
type Response struct {
	Status int
	Body   any
}

// Request marks that a request was sent. A CallError carrying a Request but
// no Response means the request left the client and no reply ever arrived.
type Request struct {
	Method string
	URL    string
}

// CallError is the failure shape produced by API call sites. It implements
// error so it can travel through ordinary error returns and still be
// classified structurally.
type CallError struct {
	Response  *Response
	Request   *Request
	RequestID string
	Err       error
}

func (e *CallError) Error() string {
	switch {
	case e.Response != nil:
		return fmt.Sprintf("request failed with status %d", e.Response.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Classify turns an arbitrary failure value into a typed *Error. Checks run
// in priority order and the first match wins:
//
//  1. an *Error (possibly wrapped) is returned unchanged
//  2. an error mentioning a transport signature becomes NETWORK_ERROR
//  3. an error suggesting input rejection becomes VALIDATION_ERROR
//  4. an HTTP-shaped failure is mapped by status range
//  5. a request that never got a response becomes a network failure
//  6. a plain string is wrapped as UNKNOWN_ERROR
//  7. anything else becomes UNKNOWN_ERROR with the value as details
//
// Classify is idempotent: feeding its own output back returns it unchanged.
func Classify(v any) *Error {
	switch x := v.(type) {
	case nil:
		return New(CodeUnknown, "unknown error")
	case *Error:
		return x
	case string:
		return New(CodeUnknown, x)
	case error:
		return classifyErr(x)
	default:
		return New(CodeUnknown, "unknown error").WithDetails(v)
	}
}

func classifyErr(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "fetch") || strings.Contains(lower, "network") {
		return Wrap(CodeNetwork, msg, err)
	}
	if strings.Contains(lower, "validation") || strings.Contains(lower, "invalid") {
		return Wrap(CodeValidation, msg, err)
	}

	var call *CallError
	if errors.As(err, &call) {
		return classifyCall(call)
	}

	return Wrap(CodeUnknown, msg, err)
}

func classifyCall(call *CallError) *Error {
	e := classifyCallShape(call)
	if call.RequestID != "" {
		e = e.WithRequestID(call.RequestID)
	}
	return e
}

func classifyCallShape(call *CallError) *Error {
	if call.Response != nil {
		switch status := call.Response.Status; {
		case status == 401:
			return New(CodeAuth, "Authentication required").WithDetails(call.Response.Body)
		case status == 403:
			// Same family as 401; only the message differs.
			return New(CodeAuth, "Access denied").WithDetails(call.Response.Body)
		case status == 404:
			// Historically reported through the validation family, not
			// NOT_FOUND. Kept as-is; callers branch on the message.
			return New(CodeValidation, "Resource not found").WithDetails(call.Response.Body)
		case status >= 500:
			return New(CodeServer, "Server error occurred").WithDetails(call.Response.Body)
		default:
			return Wrap(CodeUnknown, call.Error(), call).WithDetails(call.Response)
		}
	}

	if call.Request != nil {
		return Wrap(CodeNetwork, "Unable to connect to the server", call.Err)
	}

	return Wrap(CodeUnknown, call.Error(), call)
}
