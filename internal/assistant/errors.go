package assistant

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when a message is sent before a session exists.
var ErrNoSession = errors.New("no active assistant session")

// ErrSessionOwner is returned when a session is used under another user id
// than the one it was opened or resumed with.
type ErrSessionOwner struct {
	error
	SessionID string
	UserID    string
}

func NewErrSessionOwner(sessionID, userID string) *ErrSessionOwner {
	return &ErrSessionOwner{
		error:     fmt.Errorf("session %s does not belong to user %s", sessionID, userID),
		SessionID: sessionID,
		UserID:    userID,
	}
}

// ErrUpstream reports a failed call to the reasoning engine. StatusCode is
// zero when no HTTP response was received.
type ErrUpstream struct {
	error
	Method     string
	StatusCode int
}

func NewErrUpstream(method string, status int, err error) *ErrUpstream {
	return &ErrUpstream{
		error:      fmt.Errorf("reasoning engine %s failed: %w", method, err),
		Method:     method,
		StatusCode: status,
	}
}

func (e *ErrUpstream) Unwrap() error {
	return errors.Unwrap(e.error)
}

// Temporary reports whether the call may succeed if repeated.
func (e *ErrUpstream) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
