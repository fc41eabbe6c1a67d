package federation

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/smolitux/fedlink/pkg/transport"
)

// fakeDialer records dial attempts and hands out scripted connections.
type fakeDialer struct {
	mu      sync.Mutex
	urls    []string
	headers []http.Header
	conns   []*fakeConn

	// fail, when set, decides whether dial number n (1-based) for url fails.
	fail func(url string, n int) error
	// hold, when set, blocks dials until closed.
	hold chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (transport.Conn, error) {
	if d.hold != nil {
		select {
		case <-d.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.urls = append(d.urls, url)
	d.headers = append(d.headers, header)

	n := 0
	for _, u := range d.urls {
		if u == url {
			n++
		}
	}
	if d.fail != nil {
		if err := d.fail(url, n); err != nil {
			return nil, err
		}
	}

	c := newFakeConn(url)
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, u := range d.urls {
		if url == "" || u == url {
			n++
		}
	}
	return n
}

// conn returns the most recent connection dialed to url.
func (d *fakeDialer) conn(url string) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.conns) - 1; i >= 0; i-- {
		if d.conns[i].url == url {
			return d.conns[i]
		}
	}
	return nil
}

func (d *fakeDialer) header(i int) http.Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headers[i]
}

type fakeConn struct {
	url    string
	frames chan []byte
	errs   chan error
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written [][]byte
}

func newFakeConn(url string) *fakeConn {
	return &fakeConn{
		url:    url,
		frames: make(chan []byte, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case err := <-c.errs:
		return nil, err
	case <-c.closed:
		return nil, transport.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Write(_ context.Context, data []byte) error {
	select {
	case <-c.closed:
		return transport.ErrClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// peerClose simulates an orderly close by the remote side.
func (c *fakeConn) peerClose() {
	c.errs <- transport.ErrClosed
}

// fail simulates a transport failure on an open connection.
func (c *fakeConn) fail(msg string) {
	c.errs <- errors.New(msg)
}

func (c *fakeConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

// recorder captures callback invocations.
type recorder struct {
	mu            sync.Mutex
	messages      []Message
	notifications []Notification
}

func (r *recorder) onMessage(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) onConnection(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) msgs() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

func (r *recorder) count(p ProtocolName, st Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notifications {
		if x.Protocol == p && x.Status == st {
			n++
		}
	}
	return n
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}
