package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the worker to mirror one ledger entry. It carries only
// the ID and version; the worker reads the full row from the database so the
// payload can never go stale in the queue.
type EntrySyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
