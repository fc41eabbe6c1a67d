package federation

import (
	"strings"
	"time"

	"github.com/smolitux/fedlink/pkg/transport"
)

// ProtocolName identifies a federation protocol.
type ProtocolName string

// Known protocols.
const (
	ProtocolActivityPub ProtocolName = "activitypub"
	ProtocolMatrix      ProtocolName = "matrix"
	ProtocolXMPP        ProtocolName = "xmpp"
	ProtocolDiaspora    ProtocolName = "diaspora"
	ProtocolOStatus     ProtocolName = "ostatus"
	ProtocolZot         ProtocolName = "zot"
)

// Protocols lists every known protocol name.
var Protocols = []ProtocolName{
	ProtocolActivityPub,
	ProtocolMatrix,
	ProtocolXMPP,
	ProtocolDiaspora,
	ProtocolOStatus,
	ProtocolZot,
}

// Valid reports whether p is a known protocol.
func (p ProtocolName) Valid() bool {
	for _, known := range Protocols {
		if p == known {
			return true
		}
	}
	return false
}

// Capability is a feature a protocol declares.
type Capability string

// Declared capabilities.
const (
	CapabilityMessaging Capability = "messaging"
	CapabilityPresence  Capability = "presence"
	CapabilitySearch    Capability = "search"
	CapabilityMedia     Capability = "media"
)

// AuthMethod is an authentication scheme a protocol accepts.
type AuthMethod string

// Authentication methods.
const (
	AuthToken AuthMethod = "token"
	AuthBasic AuthMethod = "basic"
	AuthOAuth AuthMethod = "oauth"
	AuthNone  AuthMethod = "none"
)

// Endpoint is an address a protocol exposes, tagged with an HTTP-style verb.
type Endpoint struct {
	Path   string `json:"path" yaml:"path" toml:"path"`
	Method string `json:"method" yaml:"method" toml:"method"`
}

// Descriptor describes a remote federation protocol. The manager treats
// descriptors as read-only.
type Descriptor struct {
	Name         ProtocolName `json:"name" yaml:"name" toml:"name"`
	Version      string       `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Capabilities []Capability `json:"capabilities,omitempty" yaml:"capabilities,omitempty" toml:"capabilities,omitempty"`
	Endpoints    []Endpoint   `json:"endpoints" yaml:"endpoints" toml:"endpoints"`
	AuthMethods  []AuthMethod `json:"authentication,omitempty" yaml:"authentication,omitempty" toml:"authentication,omitempty"`
}

// ConnectEndpoint returns the first endpoint with method GET.
func (d Descriptor) ConnectEndpoint() (Endpoint, bool) {
	for _, ep := range d.Endpoints {
		if strings.EqualFold(strings.TrimSpace(ep.Method), "GET") {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// HasCapability reports whether the descriptor declares c.
func (d Descriptor) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

func cloneDescriptors(in []Descriptor) []Descriptor {
	out := make([]Descriptor, len(in))
	for i, d := range in {
		out[i] = Descriptor{
			Name:         d.Name,
			Version:      d.Version,
			Capabilities: append([]Capability(nil), d.Capabilities...),
			Endpoints:    append([]Endpoint(nil), d.Endpoints...),
			AuthMethods:  append([]AuthMethod(nil), d.AuthMethods...),
		}
	}
	return out
}

// Status is the externally visible connection status.
type Status string

// Connection statuses.
const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Phase is the position of a protocol in the reconnection state machine.
type Phase string

// Reconnection phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseConnecting Phase = "connecting"
	PhaseConnected  Phase = "connected"
	PhaseRetrying   Phase = "retrying"
	PhaseGivenUp    Phase = "given-up"
)

// ConnectionState is the runtime state of one protocol.
type ConnectionState struct {
	Status Status
	Phase  Phase
	// Attempt counts consecutive failed attempts since the last successful open.
	Attempt      int
	ConnID       string
	Endpoint     string
	ConnectedAt  time.Time
	LastActivity time.Time
	LastError    error

	handle transport.Conn
}

// HasHandle reports whether a live transport connection is attached.
func (s ConnectionState) HasHandle() bool {
	return s.handle != nil
}

// Message is one inbound frame, tagged with its protocol. Content holds the
// parsed JSON value, or map[string]any{"raw": text} when parsing failed.
type Message struct {
	Protocol   ProtocolName `json:"protocol"`
	Content    any          `json:"content"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// Notification reports a connection status transition.
type Notification struct {
	Protocol ProtocolName `json:"protocol"`
	Status   Status       `json:"status"`
	Err      error        `json:"-"`
}

// Credentials authenticate the connection handshake. Token takes precedence
// over Username/Password.
type Credentials struct {
	Token    string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
}
