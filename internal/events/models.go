package events

import "time"

// Event is an immutable, append-only record of one provider webhook hit.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; never block a webhook response on a failed append.
//
// Storage recommendation (Postgres):
// - Table webhook_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type names the webhook that was hit.
	Type EventType `json:"type" db:"type"`

	// CallID is the correlation id carried in the callback URL, when present.
	CallID string `json:"call_id,omitempty" db:"call_id"`

	// RemoteIP should capture the original client IP when available.
	RemoteIP string `json:"remote_ip,omitempty" db:"remote_ip"`

	// Payload is the raw callback body as received, for replay and debugging.
	Payload string `json:"payload,omitempty" db:"payload"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAnswer             EventType = "answer"
	EventTypeRecordComplete     EventType = "record_complete"
	EventTypeTranscribeComplete EventType = "transcribe_complete"
)
