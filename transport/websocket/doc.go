// Package websocket pushes replay processing events to browser clients.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub's Run loop owns the subscription table.
//
// Topics:
//
// Clients subscribe to a topic with the query parameter ?topic=<name> when
// connecting. The service publishes per-replay events on the replay ID
// (its file name without extension) and batch events on the run ID.
// Clients on AllTopic ("*", also used when no topic is given) receive every
// message.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//
//	{"topic": "arabia_1v1", "event": "replay_processed", "data": {...}}
//
// Events are replay_processed, replay_failed and batch_completed.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("topic"))
//	})
//
// Hub implements service.Notifier through Publish.
package websocket
