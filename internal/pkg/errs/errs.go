/*
Package errs defines the coded errors used throughout the relay.

Every business failure is a CustomError carrying an application code, a
client-facing message, and the HTTP status to respond with. Failures travel
as data (acknowledgement frames or JSON responses), never as panics.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"
)

// 1xxx: request handling
const (
	// ErrInvalidParams indicates request or event parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates the client exceeded the handshake rate limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: chat business logic
const (
	// ErrNameRequired indicates a Join event arrived without a username or room.
	ErrNameRequired = 2001

	// ErrUserNotFound indicates an event referenced a connection id with no registered user.
	ErrUserNotFound = 2002

	// ErrAlreadyJoined indicates a connection attempted a second Join while registered.
	ErrAlreadyJoined = 2003
)

// 5xxx: internal
const (
	// ErrUnknown is the fallback for unclassified server errors.
	ErrUnknown = 5000
)

// CustomError is the application error type. It satisfies the error
// interface and adds the business code and HTTP status.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// errorMap holds the message and status template for every known code.
// A zero Status means HTTP 200; errors still carry their business code in
// the response body.
var errorMap = map[int]CustomError{
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	ErrNameRequired:  {Code: ErrNameRequired, Message: "Username and room are required!"},
	ErrUserNotFound:  {Code: ErrUserNotFound, Message: "User is invalid or not found!"},
	ErrAlreadyJoined: {Code: ErrAlreadyJoined, Message: "Connection already joined a room."},

	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}

// NewError builds a *CustomError from a predefined code. Optional details
// are applied printf-style when the message template has placeholders.
// An unknown code falls back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if len(details) > 0 && strings.Contains(customErr.Message, "%") {
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	}

	return &customErr
}
