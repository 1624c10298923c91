package api

import (
	"errors"
	"fmt"

	"github.com/dyike/quantdesk/internal/models"
)

// ErrSessionExpired is the distinguished condition raised when any
// authenticated call receives a 401. Callers must not surface it as an
// ordinary failure message: the session is being torn down globally.
var ErrSessionExpired = errors.New("session expired")

// RequestError is a server-reported business failure: a non-2xx status
// with a detail message, a success=false payload, or a response body
// that failed integrity checks.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed: %s", e.Message)
}

// NetworkError is a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage maps an error from the gateway or a controller to the
// message shown next to the triggering control. Session expiry has no
// message: the view is replaced, not annotated.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return ""
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "service unreachable, try again later"
	}
	return err.Error()
}
