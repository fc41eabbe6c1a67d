// Package transport provides the WebSocket client connections used by the
// federation manager.
//
// Two backends implement the same Dialer interface:
//   - coder: github.com/coder/websocket (default, context-aware reads)
//   - gorilla: github.com/gorilla/websocket
//
// Usage:
//
//	dialer, err := transport.New(transport.KindCoder)
//	conn, err := dialer.Dial(ctx, "wss://example.social/stream", header)
//	data, err := conn.Read(ctx)
//
// A Read that fails because the peer (or the local side) closed the connection
// in an orderly way returns an error matching ErrClosed. Any other error is a
// transport failure.
package transport
