// Package federation keeps one live WebSocket connection per federation
// protocol and turns their traffic into tagged messages and status
// notifications.
//
// The package is organized around four parts owned by a Manager:
//   - Registry: per-protocol ConnectionState keyed by protocol name
//   - Connector: selects a descriptor's GET endpoint and opens the connection
//   - RetryPolicy: bounded, fixed-delay reconnection after transport errors
//   - Decode: frame normalization into Message values (raw fallback)
//
// Usage:
//
//	mgr, err := federation.NewManager(federation.Options{
//		OnMessage: func(m federation.Message) {
//			fmt.Println(m.Protocol, m.Content)
//		},
//		OnConnection: func(n federation.Notification) {
//			fmt.Println(n.Protocol, n.Status)
//		},
//	})
//	if err != nil {
//		return err
//	}
//	if err := mgr.Start(ctx, descriptors); err != nil {
//		return err
//	}
//	defer mgr.Stop()
//
// All registry updates and callbacks run on a single event loop goroutine, so
// callbacks never run concurrently with each other and frames from one
// connection are delivered in order. Callbacks must not block.
package federation
