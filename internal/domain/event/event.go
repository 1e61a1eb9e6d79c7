package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event observable by collaborators such as the
// pass issuance subscriber and reporting consumers.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	AppointmentID int64                  `json:"appointment_id"`
	InstanceID    int64                  `json:"instance_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a domain event with a generated ID and timestamp
func New(eventType Type, appointmentID, instanceID int64, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AppointmentID: appointmentID,
		InstanceID:    instanceID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, appointmentID, instanceID int64, payload map[string]interface{}, correlationID string) *Event {
	evt := New(eventType, appointmentID, instanceID, payload)
	evt.CorrelationID = correlationID
	return evt
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int value from the payload
func (e *Event) GetPayloadInt(key string) int {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
