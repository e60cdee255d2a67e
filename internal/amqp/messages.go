package amqp

import (
	"encoding/json"
	"time"
)

// PlanChangedMessage announces that the meal plan or its checked items
// changed. Consumers reload the plan themselves; the message carries only
// the revision so stale deliveries can be skipped.
type PlanChangedMessage struct {
	Revision  int64     `json:"revision"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPlanChangedMessage(revision int64, operation string) *PlanChangedMessage {
	return &PlanChangedMessage{
		Revision:  revision,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (m *PlanChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PlanChangedMessageFromJSON(data []byte) (*PlanChangedMessage, error) {
	var msg PlanChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
