package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind names the record collection a change touched.
type RecordKind string

const (
	KindIncome     RecordKind = "income"
	KindExpense    RecordKind = "expense"
	KindDrivingLog RecordKind = "driving_log"
	KindGoal       RecordKind = "monthly_goal"
	KindDayOff     RecordKind = "day_off"
	KindDataset    RecordKind = "dataset"
)

type Op string

const (
	OpCreated  Op = "created"
	OpUpdated  Op = "updated"
	OpDeleted  Op = "deleted"
	OpToggled  Op = "toggled"
	OpImported Op = "imported"
	OpCleared  Op = "cleared"
)

// RecordChangedMessage tells consumers that part of the ledger changed.
// It carries only the record key; consumers read current state from the store.
type RecordChangedMessage struct {
	Kind      RecordKind `json:"kind"`
	Op        Op         `json:"op"`
	Key       string     `json:"key,omitempty"` // id, date or month depending on Kind
	Timestamp time.Time  `json:"timestamp"`
}

func NewRecordChangedMessage(kind RecordKind, op Op, key string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		Op:        op,
		Key:       key,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes data and rejects messages without a kind or op.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Op == "" {
		return nil, fmt.Errorf("incomplete message: kind=%q op=%q", msg.Kind, msg.Op)
	}
	return &msg, nil
}
