package amqp

import (
	"encoding/json"
	"time"

	"opsboard/internal/automation"
)

// NotificationMessage carries one automation notification to consumers.
type NotificationMessage struct {
	Kind      string    `json:"kind"`
	Rule      string    `json:"rule"`
	Source    string    `json:"source"`
	RecordID  string    `json:"record_id"`
	Target    string    `json:"target"`
	CreatedID string    `json:"created_id,omitempty"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage converts an automation notification into a wire message.
func NewNotificationMessage(n automation.Notification) *NotificationMessage {
	ts := n.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &NotificationMessage{
		Kind:      string(n.Kind),
		Rule:      n.Rule,
		Source:    n.Source,
		RecordID:  n.RecordID,
		Target:    n.Target,
		CreatedID: n.CreatedID,
		Message:   n.Message,
		Error:     n.Error,
		Timestamp: ts.UTC(),
	}
}

// Notification converts the message back to the automation type.
func (m *NotificationMessage) Notification() automation.Notification {
	return automation.Notification{
		Kind:      automation.NotificationKind(m.Kind),
		Rule:      m.Rule,
		Source:    m.Source,
		RecordID:  m.RecordID,
		Target:    m.Target,
		CreatedID: m.CreatedID,
		Message:   m.Message,
		Error:     m.Error,
		At:        m.Timestamp,
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
