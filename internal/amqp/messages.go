package amqp

import (
	"encoding/json"
	"time"

	"finestra/internal/store"
)

// ChangeMessage wraps a store change for the export queue. The payload
// carries the full transactions so the worker can append to the external
// ledger without a read back through the store.
type ChangeMessage struct {
	store.Change
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a message for a store change.
func NewChangeMessage(change store.Change) *ChangeMessage {
	return &ChangeMessage{
		Change:    change,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
