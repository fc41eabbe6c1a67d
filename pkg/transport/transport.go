package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Kind names a WebSocket backend.
type Kind string

// Supported backends.
const (
	KindCoder   Kind = "coder"
	KindGorilla Kind = "gorilla"
)

// DefaultReadLimit is the maximum inbound frame size in bytes.
const DefaultReadLimit = 1 << 20

// Dialer opens client connections.
type Dialer interface {
	// Dial opens a connection to url, sending header with the handshake.
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// Conn is a live bidirectional text connection.
type Conn interface {
	// Read blocks until the next frame arrives.
	Read(ctx context.Context) ([]byte, error)
	// Write sends a single text frame.
	Write(ctx context.Context, data []byte) error
	// Close closes the connection with a normal closure status.
	Close() error
}

// New returns a Dialer for the named backend. An empty kind selects coder.
func New(kind Kind) (Dialer, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case "", KindCoder:
		return NewCoderDialer(), nil
	case KindGorilla:
		return NewGorillaDialer(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// NormalizeURL rewrites http and https addresses to ws and wss.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return "wss://" + raw[len("https://"):], nil
	case strings.HasPrefix(lower, "http://"):
		return "ws://" + raw[len("http://"):], nil
	}
	return raw, nil
}
