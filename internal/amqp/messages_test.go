package amqp

import (
	"testing"
	"time"

	"finestra/internal/core"
	"finestra/internal/store"
)

func TestNewChangeMessage(t *testing.T) {
	change := store.Change{Op: store.OpTransactionAdded}

	msg := NewChangeMessage(change)

	if msg.Op != store.OpTransactionAdded {
		t.Errorf("NewChangeMessage() Op = %v, want %v", msg.Op, store.OpTransactionAdded)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewChangeMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewChangeMessage() Timestamp should be recent")
	}
}

func TestChangeMessage_JSON(t *testing.T) {
	msg := &ChangeMessage{
		Change: store.Change{
			Op: store.OpTransactionAdded,
			Transactions: []core.Transaction{{
				ID:       7,
				Date:     core.NewDate(2024, 6, 1),
				Name:     "Coffee",
				Category: core.CategoryFood,
				Amount:   core.Money{Paise: -15000},
			}},
		},
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ChangeMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error = %v", err)
	}

	if parsed.Op != msg.Op {
		t.Errorf("Parsed Op = %v, want %v", parsed.Op, msg.Op)
	}
	if len(parsed.Transactions) != 1 {
		t.Fatalf("Parsed Transactions = %d, want 1", len(parsed.Transactions))
	}
	if parsed.Transactions[0].ID != 7 || parsed.Transactions[0].Amount.Paise != -15000 {
		t.Errorf("Parsed transaction = %+v", parsed.Transactions[0])
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestChangeMessage_InvalidJSON(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte(`{"op": 42}`)); err == nil {
		t.Error("ChangeMessageFromJSON() should fail with invalid JSON")
	}
}
