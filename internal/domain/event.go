package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatusChangeDetected marks events raised by the schema monitor.
// Job outcome events carry the execution's terminal status instead.
const EventStatusChangeDetected = "change_detected"

// Event is a notification of a job or monitor outcome. ID correlates
// log lines and webhook deliveries for one dispatch; it is not persisted.
type Event struct {
	ID        string
	Source    string
	Status    string
	Timestamp time.Time
	Payload   Payload
}

func NewEvent(source, status string, payload Payload, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    status,
		Timestamp: now.UTC(),
		Payload:   payload,
	}
}
