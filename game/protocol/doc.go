// Package protocol defines the named messages exchanged between clients and
// the session server.
//
// Every frame on the wire is a JSON envelope of the form
//
//	{"event": "accuse", "data": {"target": "alice"}}
//
// Inbound frames are decoded by Decode into one of a closed set of request
// types (JoinRequest, ChatRequest, AccuseRequest, VerdictRequest,
// NightActionRequest). Decode rejects unknown events, missing fields and
// values outside of their enumerations, so the game engine only ever sees
// well-formed requests.
//
// Outbound notifications are built with NewMessage from the payload types in
// outbound.go. Public payloads never carry roles or teams; the private ones
// (AssignRole, GhostChatInfo, JailChat, InvestigationResult) are addressed to
// a single connection by the engine.
package protocol
