package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event kinds published on transaction mutations.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// LedgerEventMessage announces that a transaction changed. It carries only
// the transaction ID and its month, the worker fetches current state from
// the database when rebuilding a recap.
type LedgerEventMessage struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id"`
	MonthKey      string    `json:"month_key"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a new ledger event message
func NewLedgerEventMessage(event, transactionID, monthKey string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:         event,
		TransactionID: transactionID,
		MonthKey:      monthKey,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
