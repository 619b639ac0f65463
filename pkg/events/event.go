package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "AUDIT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewAuditCompleted builds the event published after every analysis run.
func NewAuditCompleted(reportId, filename string, healthScore float64) Event {
	return BaseEvent{
		Type: "AUDIT_COMPLETED",
		Data: map[string]interface{}{
			"report_id":    reportId,
			"filename":     filename,
			"health_score": healthScore,
		},
		OccurredAt: time.Now(),
	}
}
