package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport wraps failures where no HTTP response was received.
var ErrTransport = errors.New("request could not complete")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d - %s", e.StatusCode, e.statusText())
	}
	return fmt.Sprintf("HTTP error! status: %d - %s", e.StatusCode, e.Body)
}

// Text is the response body, or the status text when the body was empty.
func (e *StatusError) Text() string {
	if e.Body != "" {
		return e.Body
	}
	return e.statusText()
}

func (e *StatusError) statusText() string {
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
