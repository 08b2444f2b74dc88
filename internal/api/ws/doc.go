// Package ws streams login progress over WebSocket.
//
// The Hub is a login.Reporter: every state transition and waiting poll of a
// login pass is encoded as JSON and pushed to connected clients.
//
// Message format:
//
//	{"attempt":"att_01J...","state":"waiting","message":"Waiting for connection... (3/10)",
//	 "poll":3,"max_polls":10,"time":"2026-01-02T15:04:05Z"}
package ws
