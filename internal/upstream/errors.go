package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned for every 403 on an authenticated call, after the denial
	// hook has run.
	ErrSessionExpired = errors.New("upstream: session expired")

	// ErrNoResponse means the request was sent but no response arrived.
	ErrNoResponse = errors.New("upstream: no response")

	// ErrRequestSetup means the request could not be built.
	ErrRequestSetup = errors.New("upstream: request setup failed")
)

// StatusError is a non-2xx reply other than the session-expiry 403.
type StatusError struct {
	Status int
	// Message is the server-provided text: the "message" field of a JSON body, else the raw body.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: status %d", e.Status)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}
