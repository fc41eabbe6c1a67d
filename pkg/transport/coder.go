package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	ws "github.com/coder/websocket"
)

// CoderDialer dials with github.com/coder/websocket.
type CoderDialer struct {
	// ReadLimit caps inbound frame size. Defaults to DefaultReadLimit.
	ReadLimit int64
	// HTTPClient is used for the handshake. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewCoderDialer creates a CoderDialer with default settings.
func NewCoderDialer() *CoderDialer {
	return &CoderDialer{ReadLimit: DefaultReadLimit}
}

// Dial implements Dialer.
func (d *CoderDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	target, err := NormalizeURL(url)
	if err != nil {
		return nil, err
	}

	conn, resp, err := ws.Dial(ctx, target, &ws.DialOptions{
		HTTPClient: d.HTTPClient,
		HTTPHeader: header,
	})
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	conn.SetReadLimit(limit)

	return &coderConn{conn: conn}, nil
}

type coderConn struct {
	conn   *ws.Conn
	closed atomic.Bool
}

func (c *coderConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		if c.closed.Load() || errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		switch ws.CloseStatus(err) {
		case ws.StatusNormalClosure, ws.StatusGoingAway:
			return nil, fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return nil, err
	}
	return data, nil
}

func (c *coderConn) Write(ctx context.Context, data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.conn.Write(ctx, ws.MessageText, data)
}

func (c *coderConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close(ws.StatusNormalClosure, "")
}
