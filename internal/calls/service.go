package calls

import (
	"context"
	"errors"
	"time"

	"call-recorder/internal/telephony"
	"call-recorder/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("calls: not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")

	// ErrNotOwner is returned when a delete is attempted by a user whose
	// phone number does not match the call's originating number.
	ErrNotOwner = errors.New("calls: not owner")
)

// RecordingLookup resolves a provider recording id to a media URL.
// Used only as a fallback when the callback carried no URL.
type RecordingLookup interface {
	RecordingMediaURL(ctx context.Context, sid string) (string, error)
}

// EnrichmentScheduler accepts detached enrichment work. Schedule must not
// block: the webhook response cannot wait on AI latency. The return value
// reports whether the job was accepted.
type EnrichmentScheduler interface {
	Schedule(callID, transcript string) bool
}

// Notifier delivers best-effort push notifications. Implementations must
// absorb all failures; the lifecycle never depends on delivery.
type Notifier interface {
	RecordingReady(ctx context.Context, c Call)
}

// Service is the call lifecycle controller. It advances a call through
// recording and transcription in response to out-of-order, possibly
// duplicate provider callbacks. Every transition re-reads persisted state
// before mutating; handlers hold no state across invocations.
type Service struct {
	repo       Repository
	recordings RecordingLookup
	enricher   EnrichmentScheduler
	notifier   Notifier

	// clock and newID are injectable for deterministic tests.
	clock func() time.Time
	newID func() string
}

func NewService(repo Repository, recordings RecordingLookup, enricher EnrichmentScheduler, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		recordings: recordings,
		enricher:   enricher,
		notifier:   notifier,
		clock:      time.Now,
		newID:      uuid.NewString,
	}
}

// Start creates the call record when an inbound call is answered and
// returns it so the handler can build the voice response around its id.
func (s *Service) Start(ctx context.Context, fromPhone string) (Call, error) {
	c := Call{
		ID:        s.newID(),
		FromPhone: fromPhone,
		CallDate:  s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Call{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Call, error) {
	if id == "" {
		return Call{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

// ListByPhone returns the owner's calls, newest first.
func (s *Service) ListByPhone(ctx context.Context, phone string) ([]Call, error) {
	return s.repo.ListByPhone(ctx, phone)
}

// RecordingEvent carries the provider's recording-complete payload.
type RecordingEvent struct {
	Status   string
	URL      string
	SID      string
	Duration *int
}

type RecordingOutcome int

const (
	// RecordingIgnored: provider status was not "completed".
	RecordingIgnored RecordingOutcome = iota
	// RecordingDuplicate: the call already holds a completed recording.
	RecordingDuplicate
	// RecordingSaved: recording fields were persisted.
	RecordingSaved
)

// CompleteRecording applies the recording-complete callback.
//
// The status gate runs before the call lookup (a non-completed status is
// acknowledged even for an unknown id, matching provider retry behavior).
// A duplicate completed callback is a no-op success.
func (s *Service) CompleteRecording(ctx context.Context, id string, ev RecordingEvent) (RecordingOutcome, error) {
	if id == "" {
		return RecordingIgnored, ErrInvalidArgument
	}
	if ev.Status != RecordingCompleted {
		logger.From(ctx).Info("ignoring recording status", "call_id", id, "status", ev.Status)
		return RecordingIgnored, nil
	}

	call, err := s.repo.Get(ctx, id)
	if err != nil {
		return RecordingIgnored, err
	}
	if call.RecordingDone() {
		logger.From(ctx).Info("recording already processed", "call_id", id)
		return RecordingDuplicate, nil
	}

	url := ev.URL
	if url != "" {
		url = telephony.NormalizeRecordingURL(url)
	} else {
		logger.From(ctx).Warn("no recording url in callback", "call_id", id, "recording_sid", ev.SID)
	}

	// One provider API attempt before giving up; a lookup failure is
	// logged and swallowed, the call proceeds with a null URL.
	if url == "" && ev.SID != "" && s.recordings != nil {
		media, lookupErr := s.recordings.RecordingMediaURL(ctx, ev.SID)
		if lookupErr != nil {
			logger.From(ctx).Warn("recording lookup failed", "call_id", id, "recording_sid", ev.SID, "err", lookupErr)
		} else {
			url = telephony.NormalizeRecordingURL(media)
		}
	}

	var urlPtr *string
	if url != "" {
		urlPtr = &url
	}
	if err := s.repo.UpdateRecording(ctx, id, urlPtr, ev.Duration, RecordingCompleted); err != nil {
		return RecordingIgnored, err
	}
	return RecordingSaved, nil
}

// CompleteTranscription stores the transcription payload (no idempotency
// guard: repeated callbacks overwrite), schedules enrichment when the
// transcript is usable, and fires a best-effort push with whatever state
// is persisted right now. Enrichment runs detached and lands later.
func (s *Service) CompleteTranscription(ctx context.Context, id, text, status string) (Call, error) {
	if id == "" {
		return Call{}, ErrInvalidArgument
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Call{}, err
	}

	var textPtr *string
	if text != "" {
		textPtr = &text
	}
	if err := s.repo.UpdateTranscription(ctx, id, textPtr, status); err != nil {
		return Call{}, err
	}

	call, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, err
	}

	if status == TranscriptionCompleted && text != "" && s.enricher != nil {
		if !s.enricher.Schedule(id, text) {
			logger.From(ctx).Warn("enrichment queue full, job dropped", "call_id", id)
		}
	}

	if s.notifier != nil {
		s.notifier.RecordingReady(ctx, call)
	}
	return call, nil
}

// DeleteOwned removes one call after verifying ownership by originating
// phone number.
func (s *Service) DeleteOwned(ctx context.Context, id, ownerPhone string) error {
	call, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if call.FromPhone != ownerPhone {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}

// DeleteByPhone removes every call owned by the phone number and returns
// how many were deleted.
func (s *Service) DeleteByPhone(ctx context.Context, phone string) (int64, error) {
	return s.repo.DeleteByPhone(ctx, phone)
}
