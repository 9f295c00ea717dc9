package types

import "net/http"

// StatusError pairs an error with the HTTP status it should terminate the
// request with.
type StatusError struct {
	Error  error
	Status int
}

func (e StatusError) Unwrap() error {
	return e.Error
}

func (e StatusError) HTTPStatus() int {
	return e.Status
}

// StatusText is the page heading, e.g. "Forbidden".
func (e StatusError) StatusText() string {
	return http.StatusText(e.Status)
}

// Message is the user-facing detail. Internal errors are not shown.
func (e StatusError) Message() string {
	if e.Error == nil || e.Status >= http.StatusInternalServerError {
		return "Something went wrong on our side."
	}
	return e.Error.Error()
}

func NewStatusError(err error, status int) StatusError {
	return StatusError{
		Error:  err,
		Status: status,
	}
}
