package queue

import "encoding/json"

// MessageVersion is the current message schema version.
const MessageVersion = 1

// Message is the payload sent to the notification worker.
type Message struct {
	Kind         string          `json:"kind"`
	Notification json.RawMessage `json:"notification"`
	RequestID    string          `json:"requestId,omitempty"`
	EnqueuedAt   string          `json:"enqueuedAt"`
	Version      int             `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
