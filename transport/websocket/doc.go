// Package websocket provides the WebSocket transport for the session server.
//
// The websocket package implements:
//   - Connection identifiers for every client
//   - Decoding and validation of inbound frames
//   - Per-connection delivery of outbound notifications
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read pump
// and a write pump goroutine; the hub loop owns the client map.
//
// Message Protocol:
//
// Every frame is a JSON envelope {"event": "...", "data": {...}}. Inbound
// frames are decoded with protocol.Decode; frames that fail validation are
// dropped and the client receives nothing back. Outbound notifications are
// protocol.Message values addressed to a single connection ID.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewGameService(sessions, configs, hub)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, svc)
//	})
//
// Delivery:
//
// Hub.Send never blocks the caller. Sessions call it while holding their
// lock, so a full queue drops the message and a client whose own buffer is
// full is disconnected.
package websocket
