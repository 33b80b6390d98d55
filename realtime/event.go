package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds emitted by the service.
const (
	KindConnected      = "connected"
	KindMessageCreated = "message.created"
	KindMessageRead    = "message.read"
	KindNotification   = "notification"
)

// PingFrame is the heartbeat comment frame. Clients ignore it.
var PingFrame = []byte(": ping\n\n")

// Event is a tagged payload for one user. It is never persisted.
type Event struct {
	Kind         string          `json:"kind"`
	Data         json.RawMessage `json:"data"`
	TargetUserID string          `json:"targetUserId"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewEvent encodes data and stamps the event with the current UTC time.
func NewEvent(userID, kind string, data any) (Event, error) {
	raw, err := encodeData(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Kind:         kind,
		Data:         raw,
		TargetUserID: userID,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func encodeData(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, fmt.Errorf("event data is not valid JSON")
		}
		return v, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return raw, nil
}

// Frame serializes the event as a single `data: <json>\n\n` SSE frame.
func (e Event) Frame() ([]byte, error) {
	if e.Data == nil {
		e.Data = json.RawMessage("null")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

// connectedData is the payload of the handshake frame.
type connectedData struct {
	HandleID          string `json:"handleId"`
	HeartbeatInterval int64  `json:"heartbeatMs"`
}
