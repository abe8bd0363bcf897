package renderservice

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBusy is returned when the service queue is full (503)
	ErrBusy = errors.New("render service busy")
	// ErrExpired is returned when the service cancelled or timed out the job (408)
	ErrExpired = errors.New("render job cancelled or timed out")
	// ErrInvalidList is returned when graph/list is not a JSON object
	ErrInvalidList = errors.New("graph list is not a JSON object")
)

// Error describes a failed call to the Render Service
type Error struct {
	Op         string // client operation, e.g. "render"
	Endpoint   string // path relative to the base URL
	StatusCode int    // 0 for transport errors
	Message    string // response body, trimmed
	Err        error  // underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Endpoint, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d %s: %s", e.Op, e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Op, e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps service status codes onto the sentinel errors
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBusy:
		return e.StatusCode == http.StatusServiceUnavailable
	case ErrExpired:
		return e.StatusCode == http.StatusRequestTimeout
	}
	return false
}
