// Package apperr defines the error taxonomy shared by the data layer and
// the HTTP handlers: validation, authentication, not-found and service
// errors, each mapped to one HTTP status by pkg/response.
package apperr

import "fmt"

type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindNotFound
	KindService
)

type Error struct {
	Kind    Kind
	Message string // safe to show to the client
	Err     error  // internal cause, logged but never returned
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

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Service wraps an infrastructure failure. The message is the generic text
// the client may see; err carries the detail for the logs.
func Service(message string, err error) *Error {
	return &Error{Kind: KindService, Message: message, Err: err}
}
