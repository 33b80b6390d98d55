// Package messaging stores direct chat messages and announces them over the
// realtime hub.
//
// Every message is written to the database before its event is emitted, so
// a recipient who is offline finds it in the conversation history later.
// Notifications go straight to the hub and are never stored.
package messaging
