package telemetry

import (
	"errors"
	"fmt"
)

// Operation names used in TransportError.
const (
	OpStatus  = "status"
	OpHistory = "history"
)

// ErrInvalidLimit is returned for a non-positive history limit.
var ErrInvalidLimit = errors.New("history limit must be a positive integer")

// TransportError reports a failed fetch: the request did not complete, the
// device answered with a non-success status, or the payload was malformed.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	msg := "failed to fetch " + e.Op
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: http %d: %v", msg, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http %d", msg, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
