package transport

import "errors"

// Common errors for the transport package.
var (
	// ErrClosed indicates the connection was closed in an orderly way.
	ErrClosed = errors.New("connection closed")
	// ErrUnknownKind indicates an unsupported transport backend name.
	ErrUnknownKind = errors.New("unknown transport kind")
	// ErrEmptyURL indicates a dial was attempted without an address.
	ErrEmptyURL = errors.New("empty connection url")
)
