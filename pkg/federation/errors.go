package federation

import "errors"

// Common errors for the federation package.
var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("manager already started")
	// ErrNotStarted indicates the manager has not been started.
	ErrNotStarted = errors.New("manager not started")
	// ErrStopped indicates the manager has been stopped.
	ErrStopped = errors.New("manager stopped")
	// ErrNotConnected indicates the protocol has no live connection.
	ErrNotConnected = errors.New("protocol not connected")
	// ErrInvalidFilter indicates the message filter expression failed to compile.
	ErrInvalidFilter = errors.New("invalid message filter")
)
