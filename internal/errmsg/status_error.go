package errmsg

import (
	"errors"
	"net/http"
)

var EmptyStatusError = NewStatusError(0, "")

type StatusError struct {
	StatusCode int
	Message    string
}

func NewStatusError(statusCode int, message string) StatusError {
	return StatusError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func (se StatusError) Error() string {
	return se.Message
}

// StatusCodeOf returns the status carried by err, or 500 for anything that
// is not a StatusError.
func StatusCodeOf(err error) int {
	var se StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return http.StatusInternalServerError
}
