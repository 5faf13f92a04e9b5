package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event about one document
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	Doctype       string                 `json:"doctype"`
	DocName       string                 `json:"doc_name"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with a fresh ID and correlation chain
func NewEvent(eventType Type, doctype, docName string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		Doctype:       doctype,
		DocName:       docName,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// Caused derives a follow-up event that shares this event's correlation ID
func (e *Event) Caused(eventType Type, doctype, docName string, payload map[string]interface{}) *Event {
	next := NewEvent(eventType, doctype, docName, payload)
	next.CorrelationID = e.CorrelationID
	return next
}

// WithPayload returns a copy of the event with key set in its payload
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// GetPayloadFloat retrieves a numeric value from the payload
func (e *Event) GetPayloadFloat(key string) float64 {
	switch v := e.Payload[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetPayloadBool retrieves a bool value from the payload
func (e *Event) GetPayloadBool(key string) bool {
	b, _ := e.Payload[key].(bool)
	return b
}
