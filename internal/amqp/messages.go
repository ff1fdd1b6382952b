package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// InvalidationMessage tells other instances which cached collections of an
// owner are stale. Origin identifies the publishing instance.
type InvalidationMessage struct {
	Origin    string    `json:"origin"`
	OwnerID   string    `json:"owner_id"`
	Kinds     []string  `json:"kinds"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvalidationMessage(origin, ownerID string, kinds []string) *InvalidationMessage {
	return &InvalidationMessage{
		Origin:    origin,
		OwnerID:   ownerID,
		Kinds:     kinds,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InvalidationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvalidationMessageFromJSON decodes a message and rejects ones without an
// owner or kinds.
func InvalidationMessageFromJSON(data []byte) (*InvalidationMessage, error) {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.OwnerID == "" || len(msg.Kinds) == 0 {
		return nil, errors.New("invalidation message without owner or kinds")
	}
	return &msg, nil
}
