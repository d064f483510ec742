package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for webhook events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records provider webhook deliveries.
//
// Callers should treat the log as best-effort: a failed append is the
// caller's to swallow, never a reason to fail the webhook.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("events: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("events: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogWebhook records one callback delivery.
func (s *Service) LogWebhook(ctx context.Context, typ EventType, callID, remoteIP, payload string) error {
	return s.Append(ctx, Event{
		Type:     typ,
		CallID:   callID,
		RemoteIP: remoteIP,
		Payload:  payload,
	})
}
