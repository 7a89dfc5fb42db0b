package amqp

import (
	"encoding/json"
	"time"
)

// IngestCompletedMessage announces that a feed ingest finished and how many
// rows it appended. Consumers that care about the data re-query the API.
type IngestCompletedMessage struct {
	SourceURL string    `json:"sourceUrl"`
	Inserted  int       `json:"inserted"`
	Timestamp time.Time `json:"timestamp"`
}

func NewIngestCompletedMessage(sourceURL string, inserted int) *IngestCompletedMessage {
	return &IngestCompletedMessage{
		SourceURL: sourceURL,
		Inserted:  inserted,
		Timestamp: time.Now(),
	}
}

func (m *IngestCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func IngestCompletedMessageFromJSON(data []byte) (*IngestCompletedMessage, error) {
	var msg IngestCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
