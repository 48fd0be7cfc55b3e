package session

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginRejected is matched by every *RejectedError.
	ErrLoginRejected = errors.New("login rejected")
	// ErrNoResponse means the login request got no reply.
	ErrNoResponse = errors.New("no response received from server")
	// ErrRequestSetup means the login request could not be built.
	ErrRequestSetup = errors.New("error setting up login request")

	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// RejectedError carries the server's reason for refusing the credentials.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login rejected (status %d)", e.Status)
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrLoginRejected
}
