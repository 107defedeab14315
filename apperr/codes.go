// Package apperr defines the typed error taxonomy shared by the Brevity
// client core. Every failure the resilience layer produces or inspects is
// represented as a single *Error value tagged with a stable Code; the
// per-code default status and user-facing copy live in static tables rather
// than in a type hierarchy.
package apperr

// Code identifies a failure category. Codes are stable across releases and
// safe to branch on.
type Code string

const (
	// CodeNetwork indicates a transport-level failure: the request never
	// produced a usable response.
	CodeNetwork Code = "NETWORK_ERROR"

	// CodeValidation indicates the input was rejected before or by the server.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeAuth indicates missing or invalid authentication credentials.
	CodeAuth Code = "AUTH_ERROR"

	// CodeAuthorization indicates the authenticated caller lacks permission.
	CodeAuthorization Code = "AUTHORIZATION_ERROR"

	// CodeNotFound indicates the requested resource does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeRateLimit indicates the caller exceeded a request quota.
	CodeRateLimit Code = "RATE_LIMIT"

	// CodeServer indicates a server-side failure (5xx family).
	CodeServer Code = "SERVER_ERROR"

	// CodeUnknown indicates an unclassified failure.
	CodeUnknown Code = "UNKNOWN_ERROR"

	// CodeHTTP carries an explicit HTTP status that does not map onto a more
	// specific code.
	CodeHTTP Code = "HTTPError"
)

// defaultStatus maps each code to the status it carries unless a constructor
// overrides it. Transport failures have no HTTP status and use 0.
var defaultStatus = map[Code]int{
	CodeNetwork:       0,
	CodeValidation:    400,
	CodeAuth:          401,
	CodeAuthorization: 403,
	CodeNotFound:      404,
	CodeRateLimit:     429,
	CodeServer:        500,
	CodeUnknown:       500,
	CodeHTTP:          500,
}

// userMessages is the only source of end-user copy. Raw error messages are
// never rendered to users; they may leak internals.
var userMessages = map[Code]string{
	CodeNetwork:       "Connection problem. Please check your internet and try again.",
	CodeValidation:    "Please check your input and try again.",
	CodeAuth:          "Please sign in to continue.",
	CodeAuthorization: "You don't have permission to do that.",
	CodeNotFound:      "We couldn't find what you were looking for.",
	CodeRateLimit:     "Too many requests. Please wait a moment and try again.",
	CodeServer:        "Something went wrong on our end. Please try again later.",
	CodeUnknown:       "An unexpected error occurred. Please try again.",
	CodeHTTP:          "The request could not be completed. Please try again.",
}

// DefaultStatus returns the status associated with a code. Unrecognized
// codes fall back to 500.
func DefaultStatus(code Code) int {
	if s, ok := defaultStatus[code]; ok {
		return s
	}
	return 500
}

// UserMessage returns the fixed, user-safe sentence for a code. The result
// never derives from the underlying error message.
func UserMessage(code Code) string {
	if m, ok := userMessages[code]; ok {
		return m
	}
	return userMessages[CodeUnknown]
}

// retryableCodes marks the codes that represent potentially transient
// failures. Everything else is treated as client-caused and permanent.
var retryableCodes = map[Code]bool{
	CodeNetwork: true,
	CodeServer:  true,
}

// Retryable reports whether failures with this code may succeed on retry.
// Validation, auth, authorization and not-found failures are permanent;
// network and server failures are transient.
func Retryable(code Code) bool {
	return retryableCodes[code]
}
