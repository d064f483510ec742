package calls

import "time"

// Call represents one recorded phone call and its derived artifacts.
//
// The ID is an opaque correlation id generated when the call is answered,
// not a provider-assigned identifier. Both provider callbacks address the
// record through it.
//
// Nullable columns map to pointer fields: they stay nil until the
// relevant callback or the enrichment pipeline fills them in.
type Call struct {
	ID        string    `json:"id" db:"id"`
	FromPhone string    `json:"from_phone" db:"from_phone"`
	CallDate  time.Time `json:"call_date" db:"call_date"`

	Title   *string `json:"title" db:"title"`
	Summary *string `json:"summary" db:"summary"`

	RecordingURL      *string `json:"recording_url" db:"recording_url"`
	RecordingDuration *int    `json:"recording_duration" db:"recording_duration"`
	RecordingStatus   string  `json:"recording_status" db:"recording_status"`

	TranscriptionText   *string `json:"transcription_text" db:"transcription_text"`
	TranscriptionStatus string  `json:"transcription_status" db:"transcription_status"`
}

const (
	// RecordingCompleted is the only provider recording status that
	// triggers processing; everything else is acknowledged and ignored.
	RecordingCompleted = "completed"

	// TranscriptionCompleted gates enrichment scheduling. Other provider
	// values are stored verbatim.
	TranscriptionCompleted = "completed"
)

// RecordingDone reports whether the recording branch already reached its
// terminal state. A duplicate provider callback for such a call is a no-op.
func (c Call) RecordingDone() bool {
	return c.RecordingStatus == RecordingCompleted && c.RecordingURL != nil && *c.RecordingURL != ""
}
