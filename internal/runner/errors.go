// internal/runner/errors.go
package runner

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedBody is wrapped by a TransportError when a reply cannot be decoded.
var ErrMalformedBody = errors.New("malformed response body")

// TransportError is a network failure or an undecodable reply. Pollers treat
// it as transient.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is an {"error": ...} payload or a non-2xx status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("runner error (status %d): %s", e.StatusCode, msg)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsNotFound reports whether the runner answered 404.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
