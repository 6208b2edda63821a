// Package server exposes a navigator to the console's rendering shell over
// HTTP and WebSocket.
//
// # Endpoints
//
//   - GET /api/routes: the route manifest as JSON
//   - GET /api/navigate?url=/path: one navigation, as JSON
//   - GET /ws: a live navigation stream
//   - GET /healthz: liveness
//   - GET /metrics: Prometheus metrics, when enabled
//
// # Live navigation
//
// Each WebSocket connection owns a navigator.Session. The client sends
//
//	{"type": "navigate", "url": "/services/web?tab=logs"}
//
// and the server answers with
//
//	{"type": "navigation", "seq": 3, "navigation": {...}}
//
// Navigations run concurrently. When the client navigates again before a
// result arrives, the older navigation is canceled and its result is never
// sent: the last request wins. Results are written in sequence order.
//
// # Example Usage
//
//	tree, _ := console.Tree()
//	nav, _ := navigator.New(tree)
//	srv := server.New(nav, server.DefaultConfig())
//	_ = srv.ListenAndServe(ctx)
package server
