package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smolitux/fedlink/pkg/logging"
	"github.com/smolitux/fedlink/pkg/transport"
)

// eventBuffer is the capacity of the manager's event channel.
const eventBuffer = 64

// Options configures a Manager.
type Options struct {
	// Dialer opens transport connections. Defaults to the coder backend.
	Dialer transport.Dialer

	// OnMessage receives every inbound frame that passes Filter.
	//
	// Callbacks run on the manager's event loop. They must not call Stop or
	// SetProtocols synchronously: Stop would wait on the loop running the
	// callback. Use a new goroutine for that.
	OnMessage func(Message)

	// OnConnection receives connected, disconnected and error transitions.
	// The same rules as OnMessage apply.
	OnConnection func(Notification)

	// ErrorHandling configures retries. Nil uses 3 retries, 1s apart.
	ErrorHandling *ErrorHandling

	// Credentials are sent with every handshake.
	Credentials *Credentials

	// Filter is an optional expr-lang expression; see Filter.
	Filter string

	// DialTimeout bounds each connection attempt. Zero means no timeout.
	DialTimeout time.Duration

	// Logger defaults to logging.Nop().
	Logger *slog.Logger
}

type eventKind int

const (
	evReset eventKind = iota
	evOpened
	evFrame
	evErrored
	evClosed
	evRetry
)

func (k eventKind) String() string {
	switch k {
	case evReset:
		return "reset"
	case evOpened:
		return "opened"
	case evFrame:
		return "frame"
	case evErrored:
		return "errored"
	case evClosed:
		return "closed"
	case evRetry:
		return "retry"
	}
	return "unknown"
}

// event is the single unit of work processed by the manager loop.
type event struct {
	kind        eventKind
	protocol    ProtocolName
	connID      string
	gen         uint64
	conn        transport.Conn
	payload     []byte
	err         error
	descriptors []Descriptor
	timer       *retryTimer
}

// Manager owns the connections for a list of protocol descriptors.
type Manager struct {
	opts     Options
	dialer   transport.Dialer
	retry    RetryPolicy
	filter   *Filter
	header   http.Header
	log      *slog.Logger
	registry *Registry

	events chan event
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool

	// Owned by the loop goroutine.
	gen         uint64
	descriptors map[ProtocolName]Descriptor
	timers      map[*retryTimer]struct{}
}

// retryTimer wraps a pending reconnection so the loop can forget it once it
// fires.
type retryTimer struct {
	t *time.Timer
}

// NewManager creates a Manager. Nothing connects until Start.
func NewManager(opts Options) (*Manager, error) {
	filter, err := CompileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = transport.NewCoderDialer()
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Manager{
		opts:        opts,
		dialer:      dialer,
		retry:       NewRetryPolicy(opts.ErrorHandling),
		filter:      filter,
		header:      opts.Credentials.Header(),
		log:         log,
		registry:    NewRegistry(),
		events:      make(chan event, eventBuffer),
		done:        make(chan struct{}),
		descriptors: make(map[ProtocolName]Descriptor),
		timers:      make(map[*retryTimer]struct{}),
	}, nil
}

// Registry exposes the connection registry for read access.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Start begins the event loop and connects every descriptor with a GET
// endpoint. Cancelling ctx has the same effect as Stop, minus the wait.
func (m *Manager) Start(ctx context.Context, descriptors []Descriptor) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	// Counted under mu so a concurrent Stop always waits for the loop.
	m.wg.Add(1)
	m.mu.Unlock()

	m.opts.Credentials.warnExpired(m.log, time.Now())

	go m.loop()

	m.post(event{kind: evReset, descriptors: cloneDescriptors(descriptors)})
	return nil
}

// SetProtocols closes every connection and reconnects the new list. Like
// Stop, it must not be called synchronously from a callback.
func (m *Manager) SetProtocols(descriptors []Descriptor) error {
	m.mu.Lock()
	started, stopped := m.started, m.stopped
	m.mu.Unlock()

	if stopped {
		return ErrStopped
	}
	if !started {
		return ErrNotStarted
	}
	m.post(event{kind: evReset, descriptors: cloneDescriptors(descriptors)})
	return nil
}

// Stop closes every connection, drops pending retries and waits for all
// goroutines to exit. It is safe to call more than once, but not from
// inside an OnMessage or OnConnection callback.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

// State returns the state for name. Unknown protocols report disconnected.
func (m *Manager) State(name ProtocolName) ConnectionState {
	if s, ok := m.registry.Get(name); ok {
		return s
	}
	return ConnectionState{Status: StatusDisconnected, Phase: PhaseIdle}
}

// States returns a snapshot of every protocol's state.
func (m *Manager) States() map[ProtocolName]ConnectionState {
	return m.registry.Snapshot()
}

// Send JSON-encodes v and writes it as a text frame on the protocol's live
// connection. A []byte or string is sent as is.
func (m *Manager) Send(ctx context.Context, name ProtocolName, v any) error {
	conn := m.registry.handle(name)
	if conn == nil {
		return fmt.Errorf("%w: %s", ErrNotConnected, name)
	}

	var data []byte
	switch x := v.(type) {
	case []byte:
		data = x
	case string:
		data = []byte(x)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		data = b
	}

	if err := conn.Write(ctx, data); err != nil {
		return fmt.Errorf("send to %s: %w", name, err)
	}
	return nil
}

// post hands an event to the loop. Events posted after the loop exits are
// dropped.
func (m *Manager) post(ev event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	defer close(m.done)
	defer m.teardown()

	for {
		select {
		case <-m.ctx.Done():
			return
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev event) {
	switch ev.kind {
	case evReset:
		m.reset(ev.descriptors)
	case evOpened:
		m.onOpened(ev)
	case evFrame:
		m.onFrame(ev)
	case evErrored:
		m.onErrored(ev)
	case evClosed:
		m.onClosed(ev)
	case evRetry:
		m.onRetry(ev)
	}
}

// teardown runs on the loop goroutine as it exits.
func (m *Manager) teardown() {
	m.stopTimers()
	for _, h := range m.registry.Reset() {
		m.closeAsync(h)
	}
	m.log.Debug("federation manager stopped")
}

func (m *Manager) stopTimers() {
	for rt := range m.timers {
		rt.t.Stop()
	}
	m.timers = make(map[*retryTimer]struct{})
}

// reset tears down the current generation and connects descriptors.
func (m *Manager) reset(descriptors []Descriptor) {
	m.stopTimers()
	for _, h := range m.registry.Reset() {
		m.closeAsync(h)
	}
	m.gen++
	m.descriptors = make(map[ProtocolName]Descriptor, len(descriptors))

	for _, d := range descriptors {
		m.descriptors[d.Name] = d
		m.connect(d)
	}
}

// current reports whether ev belongs to the live connection attempt of its
// protocol. Events from superseded attempts are stale.
func (m *Manager) current(ev event) bool {
	if ev.gen == m.gen {
		if s, ok := m.registry.Get(ev.protocol); ok && s.ConnID == ev.connID {
			return true
		}
	}
	m.log.Debug("dropping stale event", "event", ev.kind.String(), "protocol", ev.protocol, "connId", ev.connID)
	return false
}

// connect starts one attempt for d. Descriptors without a GET endpoint are
// skipped and never get a registry entry.
func (m *Manager) connect(d Descriptor) {
	ep, ok := d.ConnectEndpoint()
	if !ok {
		m.log.Debug("no GET endpoint, skipping protocol", "protocol", d.Name)
		return
	}

	if old := m.registry.detach(d.Name); old != nil {
		m.closeAsync(old)
	}

	connID := uuid.NewString()
	m.registry.Upsert(d.Name, func(s *ConnectionState) {
		s.Status = StatusConnecting
		s.Phase = PhaseConnecting
		s.ConnID = connID
		s.Endpoint = ep.Path
	})

	m.log.Debug("connecting", "protocol", d.Name, "endpoint", ep.Path, "connId", connID)

	m.wg.Add(1)
	go m.serve(m.ctx, d.Name, ep.Path, connID, m.gen)
}

// serve dials and then pumps frames until the connection ends. It only
// talks to the loop through events.
func (m *Manager) serve(ctx context.Context, name ProtocolName, url, connID string, gen uint64) {
	defer m.wg.Done()

	base := event{protocol: name, connID: connID, gen: gen}

	dialCtx, cancel := ctx, context.CancelFunc(func() {})
	if m.opts.DialTimeout > 0 {
		dialCtx, cancel = context.WithTimeout(ctx, m.opts.DialTimeout)
	}
	conn, err := m.dialer.Dial(dialCtx, url, m.header.Clone())
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ev := base
		ev.kind, ev.err = evErrored, err
		m.post(ev)
		return
	}

	opened := base
	opened.kind, opened.conn = evOpened, conn
	m.post(opened)

	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// The loop may already be gone and never see this handle.
				_ = conn.Close()
			}
			ev := base
			if errors.Is(err, transport.ErrClosed) || ctx.Err() != nil {
				ev.kind = evClosed
			} else {
				ev.kind, ev.err = evErrored, err
			}
			m.post(ev)
			return
		}

		ev := base
		ev.kind, ev.payload = evFrame, data
		m.post(ev)
	}
}

func (m *Manager) onOpened(ev event) {
	if !m.current(ev) {
		m.closeAsync(ev.conn)
		return
	}

	now := time.Now()
	s := m.registry.Upsert(ev.protocol, func(s *ConnectionState) {
		s.Status = StatusConnected
		s.Phase = PhaseConnected
		s.Attempt = 0
		s.ConnectedAt = now
		s.LastActivity = now
		s.LastError = nil
		s.handle = ev.conn
	})

	m.log.Info("protocol connected", "protocol", ev.protocol, "endpoint", s.Endpoint)
	m.notify(Notification{Protocol: ev.protocol, Status: StatusConnected})
}

func (m *Manager) onFrame(ev event) {
	if !m.current(ev) {
		return
	}

	msg := Decode(ev.protocol, ev.payload)
	m.registry.Upsert(ev.protocol, func(s *ConnectionState) {
		s.LastActivity = msg.ReceivedAt
	})

	ok, err := m.filter.Match(msg)
	if err != nil {
		m.log.Debug("message filter failed, delivering", "protocol", ev.protocol, "error", err)
		ok = true
	}
	if !ok {
		return
	}

	if m.opts.OnMessage != nil {
		m.opts.OnMessage(msg)
	}
}

func (m *Manager) onErrored(ev event) {
	if !m.current(ev) {
		return
	}

	if h := m.registry.detach(ev.protocol); h != nil {
		m.closeAsync(h)
	}

	s := m.registry.Upsert(ev.protocol, func(s *ConnectionState) {
		s.Status = StatusError
		s.Attempt++
		s.Phase = m.retry.afterError(s.Attempt)
		s.LastError = ev.err
	})

	m.log.Warn("protocol connection error", "protocol", ev.protocol, "attempt", s.Attempt, "error", ev.err)
	m.notify(Notification{Protocol: ev.protocol, Status: StatusError, Err: ev.err})

	delay, ok := m.retry.Next(s.Attempt)
	if !ok {
		if m.retry.Retries > 0 {
			m.log.Warn("giving up on protocol", "protocol", ev.protocol, "retries", m.retry.Retries)
		}
		return
	}
	m.scheduleRetry(ev.protocol, ev.connID, delay)
}

func (m *Manager) onClosed(ev event) {
	if !m.current(ev) {
		return
	}

	if h := m.registry.detach(ev.protocol); h != nil {
		m.closeAsync(h)
	}
	m.registry.Upsert(ev.protocol, func(s *ConnectionState) {
		s.Status = StatusDisconnected
		s.Phase = PhaseIdle
	})

	m.log.Info("protocol disconnected", "protocol", ev.protocol)
	m.notify(Notification{Protocol: ev.protocol, Status: StatusDisconnected})
}

func (m *Manager) scheduleRetry(name ProtocolName, connID string, delay time.Duration) {
	gen := m.gen
	rt := &retryTimer{}
	rt.t = time.AfterFunc(delay, func() {
		m.post(event{kind: evRetry, protocol: name, connID: connID, gen: gen, timer: rt})
	})
	m.timers[rt] = struct{}{}
}

func (m *Manager) onRetry(ev event) {
	delete(m.timers, ev.timer)
	if !m.current(ev) {
		return
	}
	if s, _ := m.registry.Get(ev.protocol); s.Phase != PhaseRetrying {
		return
	}

	d, ok := m.descriptors[ev.protocol]
	if !ok {
		return
	}
	m.log.Debug("retrying protocol", "protocol", ev.protocol)
	m.connect(d)
}

func (m *Manager) notify(n Notification) {
	if m.opts.OnConnection != nil {
		m.opts.OnConnection(n)
	}
}

// closeAsync closes a handle without blocking the loop on the close
// handshake.
func (m *Manager) closeAsync(c transport.Conn) {
	if c == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = c.Close()
	}()
}
