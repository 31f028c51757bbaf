package amqp

import (
	"encoding/json"
	"time"
)

// IngestMessage carries a raw bank notification through the queue.
// The worker runs extraction on Text and stores the resulting transaction,
// so the message stays small regardless of where the text came from.
type IngestMessage struct {
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewIngestMessage creates an ingest message stamped with the current time.
func NewIngestMessage(source, text string) *IngestMessage {
	return &IngestMessage{
		Source:     source,
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *IngestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IngestMessageFromJSON creates a message from JSON bytes
func IngestMessageFromJSON(data []byte) (*IngestMessage, error) {
	var msg IngestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
