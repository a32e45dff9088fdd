package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TabChangedRoutingKey routes tab-changed events on the exchange.
const TabChangedRoutingKey = "tab.changed"

// TabChangedMessage announces that the payload stored under Key changed.
// Consumers re-read the store; the message carries no data itself.
type TabChangedMessage struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTabChangedMessage(key string) *TabChangedMessage {
	return &TabChangedMessage{ID: uuid.NewString(), Key: key, Timestamp: time.Now().UTC()}
}

func (m *TabChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TabChangedMessageFromJSON decodes a message body.
func TabChangedMessageFromJSON(data []byte) (*TabChangedMessage, error) {
	var msg TabChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
