package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolitux/fedlink/pkg/config"
	"github.com/smolitux/fedlink/pkg/federation"
	"github.com/smolitux/fedlink/pkg/transport"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = DefaultConfigPath
	jsonOutput = false
	logLevel, logFormat, logFile = "", "", ""
	apHeaders = nil
	apTimeout = 5 * time.Second
	searchRaw, searchPlatform = false, ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v.Version)
	assert.NotEmpty(t, v.GoVersion)
}

func TestValidateCommand(t *testing.T) {
	valid := writeConfig(t, "ok.yaml", `
protocols:
  - name: activitypub
    endpoints:
      - path: wss://social.example/stream
        method: GET
  - name: diaspora
    endpoints:
      - path: /receive
        method: POST
`)
	out, err := execute(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "2 protocols")
	assert.Contains(t, out, "diaspora (no GET endpoint)")

	invalid := writeConfig(t, "bad.json", `{"protocols": [{"name": "gopher", "endpoints": []}]}`)
	out, err = execute(t, "validate", invalid, "--json")
	require.Error(t, err)

	var v ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.False(t, v.Valid)
	require.NotEmpty(t, v.Problems)
	assert.Equal(t, "protocols.0.name", v.Problems[0].Path)
}

func TestValidateCommand_UsesConfigFlag(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFetchCommand(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/activity+json")
		_, _ = w.Write([]byte(`{"id":"https://social.example/users/alice","type":"Person"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "fetch", srv.URL, "-H", "Authorization: Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "fedlink/"+Version, gotAgent)
	assert.JSONEq(t, `{"id":"https://social.example/users/alice","type":"Person"}`, out)
}

func TestFetchCommand_BadHeader(t *testing.T) {
	_, err := execute(t, "fetch", "https://social.example", "-H", "nocolon")
	require.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"orderedItems":[
			{"id":"https://v.example/videos/1","type":"Video","name":"Cats","attributedTo":"https://v.example/a/bob"},
			{"id":"https://v.example/users/cat","type":"Person","preferredUsername":"cat"}
		]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "search", srv.URL, "cats")
	require.NoError(t, err)
	assert.Equal(t, "cats", gotQuery)
	assert.Contains(t, out, "video")
	assert.Contains(t, out, "Cats")
	assert.Contains(t, out, "https://v.example/a/bob")

	out, err = execute(t, "search", srv.URL, "cats", "--json", "--platform", "peertube")
	require.NoError(t, err)
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "peertube", results[0]["platform"])
	assert.Equal(t, "user", results[1]["type"])

	out, err = execute(t, "search", srv.URL, "cats", "--raw")
	require.NoError(t, err)
	var raw []any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Len(t, raw, 2)
}

func TestOutboxCommand(t *testing.T) {
	var gotTag string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTag = r.Header.Get("X-Tag")
		_, _ = w.Write([]byte(`{"type":"OrderedCollection","orderedItems":[
			{"id":"https://s.example/a/1","type":"Create","object":"https://s.example/notes/1","published":"2024-05-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "outbox", srv.URL, "-H", "X-Tag: yes")
	require.NoError(t, err)
	assert.Equal(t, "yes", gotTag)
	assert.Contains(t, out, "2024-05-01T10:00:00Z")
	assert.Contains(t, out, "Create")
	assert.Contains(t, out, "https://s.example/notes/1")
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		_ = c.Write(r.Context(), websocket.MessageText, []byte(`{"type":"Note","id":"https://m.example/1"}`))
		for {
			if _, _, err := c.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	jsonOutput = false
	logLevel, logFormat, logFile = "", "", ""
	cfg := &config.Config{
		Protocols: []federation.Descriptor{{
			Name:      federation.ProtocolMatrix,
			Endpoints: []federation.Endpoint{{Path: srv.URL, Method: "GET"}},
		}},
		Transport: transport.KindCoder,
	}

	var stdout, stderr syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runConnect(ctx, cfg, &stdout, &stderr) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "Note https://m.example/1")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runConnect did not return after cancel")
	}
	out := stdout.String()
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "Federation:")
}

func TestRunConnect_UnknownTransport(t *testing.T) {
	cfg := &config.Config{Transport: "carrier-pigeon"}
	err := runConnect(context.Background(), cfg, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, transport.ErrUnknownKind)
}

func TestDescribeContent(t *testing.T) {
	tests := []struct {
		name    string
		content any
		want    string
	}{
		{"raw text", map[string]any{"raw": "ping"}, "ping"},
		{"typed object", map[string]any{"type": "Like"}, "Like"},
		{"untyped object", map[string]any{"a": 1, "b": 2}, "2 fields"},
		{"scalar", int64(42), "42"},
		{"string", "https://s.example/notes/1", "https://s.example/notes/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeContent(tt.content))
		})
	}
}

func TestStatusBadge(t *testing.T) {
	for _, s := range []federation.Status{
		federation.StatusConnected,
		federation.StatusConnecting,
		federation.StatusDisconnected,
		federation.StatusError,
	} {
		assert.Contains(t, statusBadge(s), string(s))
	}
}

func TestPrintNotification(t *testing.T) {
	var buf bytes.Buffer
	printNotification(&buf, federation.Notification{
		Protocol: federation.ProtocolXMPP,
		Status:   federation.StatusError,
		Err:      errors.New("connection refused"),
	})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "xmpp"))
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "connection refused")
}

func TestPrintStatesAndSummary(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	states := map[federation.ProtocolName]federation.ConnectionState{
		federation.ProtocolMatrix: {
			Status: federation.StatusConnected, Phase: federation.PhaseConnected, LastActivity: at,
		},
		federation.ProtocolActivityPub: {
			Status: federation.StatusError, Phase: federation.PhaseRetrying, Attempt: 2,
			Endpoint: "wss://s.example", LastError: errors.New("boom"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printStates(&buf, states))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "activitypub"))
	assert.Contains(t, lines[1], "boom")
	assert.True(t, strings.HasPrefix(lines[2], "matrix"))
	assert.Contains(t, lines[2], "2024-05-01T10:00:00Z")

	buf.Reset()
	printSummary(&buf, federation.Summarize(states))
	assert.Contains(t, buf.String(), "1/2 connected")
	assert.Contains(t, buf.String(), "activitypub: boom")
}
