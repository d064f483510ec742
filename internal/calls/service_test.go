package calls

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLookup struct {
	mediaURL string
	err      error
	calls    int
}

func (f *fakeLookup) RecordingMediaURL(ctx context.Context, sid string) (string, error) {
	f.calls++
	return f.mediaURL, f.err
}

type fakeScheduler struct {
	accepted  bool
	scheduled []string
}

func (f *fakeScheduler) Schedule(callID, transcript string) bool {
	f.scheduled = append(f.scheduled, callID)
	return f.accepted
}

type fakeNotifier struct {
	notified []Call
}

func (f *fakeNotifier) RecordingReady(ctx context.Context, c Call) {
	f.notified = append(f.notified, c)
}

func newTestService(repo Repository, lookup RecordingLookup, sched EnrichmentScheduler, n Notifier) *Service {
	s := NewService(repo, lookup, sched, n)
	s.clock = func() time.Time { return time.Unix(1700000000, 0) }
	s.newID = func() string { return "call-1" }
	return s
}

func TestStart_PersistsCall(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)

	c, err := s.Start(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ID != "call-1" || c.FromPhone != "+15551234567" {
		t.Fatalf("unexpected call: %+v", c)
	}

	got, err := repo.Get(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("expected call persisted: %v", err)
	}
	if !got.CallDate.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("unexpected call date: %v", got.CallDate)
	}
}

func TestCompleteRecording_NormalizesPathURL(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)
	mustStart(t, s)

	dur := 42
	out, err := s.CompleteRecording(context.Background(), "call-1", RecordingEvent{
		Status:   "completed",
		URL:      "/2010-04-01/Recordings/RE123",
		Duration: &dur,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != RecordingSaved {
		t.Fatalf("expected saved outcome, got %v", out)
	}

	c, _ := repo.Get(context.Background(), "call-1")
	if c.RecordingURL == nil || *c.RecordingURL != "https://api.twilio.com/2010-04-01/Recordings/RE123.mp3" {
		t.Fatalf("unexpected url: %v", c.RecordingURL)
	}
	if c.RecordingStatus != RecordingCompleted {
		t.Fatalf("expected completed status, got %q", c.RecordingStatus)
	}
	if c.RecordingDuration == nil || *c.RecordingDuration != 42 {
		t.Fatalf("unexpected duration: %v", c.RecordingDuration)
	}
}

func TestCompleteRecording_DuplicateIsNoOp(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)
	mustStart(t, s)

	ev := RecordingEvent{Status: "completed", URL: "/2010-04-01/Recordings/RE123"}
	if _, err := s.CompleteRecording(context.Background(), "call-1", ev); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	first, _ := repo.Get(context.Background(), "call-1")

	out, err := s.CompleteRecording(context.Background(), "call-1", ev)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != RecordingDuplicate {
		t.Fatalf("expected duplicate outcome, got %v", out)
	}
	second, _ := repo.Get(context.Background(), "call-1")
	if *first.RecordingURL != *second.RecordingURL || first.RecordingStatus != second.RecordingStatus {
		t.Fatalf("recording fields changed on duplicate callback")
	}
}

func TestCompleteRecording_NonCompletedStatusIgnored(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)
	mustStart(t, s)

	out, err := s.CompleteRecording(context.Background(), "call-1", RecordingEvent{Status: "failed", URL: "/x"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != RecordingIgnored {
		t.Fatalf("expected ignored outcome, got %v", out)
	}
	c, _ := repo.Get(context.Background(), "call-1")
	if c.RecordingURL != nil || c.RecordingStatus != "" {
		t.Fatalf("recording fields mutated on ignored status: %+v", c)
	}

	// The status gate runs before the lookup: unknown ids are still acked.
	if out, err := s.CompleteRecording(context.Background(), "missing", RecordingEvent{Status: "absent"}); err != nil || out != RecordingIgnored {
		t.Fatalf("expected ignored ack for unknown id, got %v %v", out, err)
	}
}

func TestCompleteRecording_SIDFallbackLookup(t *testing.T) {
	repo := NewMemoryRepo()
	lookup := &fakeLookup{mediaURL: "/2010-04-01/Recordings/RE999"}
	s := newTestService(repo, lookup, nil, nil)
	mustStart(t, s)

	if _, err := s.CompleteRecording(context.Background(), "call-1", RecordingEvent{Status: "completed", SID: "RE999"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected one lookup, got %d", lookup.calls)
	}
	c, _ := repo.Get(context.Background(), "call-1")
	if c.RecordingURL == nil || *c.RecordingURL != "https://api.twilio.com/2010-04-01/Recordings/RE999.mp3" {
		t.Fatalf("unexpected url: %v", c.RecordingURL)
	}
}

func TestCompleteRecording_LookupFailureSwallowed(t *testing.T) {
	repo := NewMemoryRepo()
	lookup := &fakeLookup{err: errors.New("api down")}
	s := newTestService(repo, lookup, nil, nil)
	mustStart(t, s)

	out, err := s.CompleteRecording(context.Background(), "call-1", RecordingEvent{Status: "completed", SID: "RE1"})
	if err != nil {
		t.Fatalf("lookup failure must not fail the callback: %v", err)
	}
	if out != RecordingSaved {
		t.Fatalf("expected saved outcome, got %v", out)
	}
	c, _ := repo.Get(context.Background(), "call-1")
	if c.RecordingURL != nil {
		t.Fatalf("expected null url after failed lookup, got %v", *c.RecordingURL)
	}
	if c.RecordingStatus != RecordingCompleted {
		t.Fatalf("expected completed status regardless, got %q", c.RecordingStatus)
	}
}

func TestCompleteRecording_UnknownCallNotFound(t *testing.T) {
	s := newTestService(NewMemoryRepo(), nil, nil, nil)
	if _, err := s.CompleteRecording(context.Background(), "missing", RecordingEvent{Status: "completed"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteTranscription_SchedulesAndNotifies(t *testing.T) {
	repo := NewMemoryRepo()
	sched := &fakeScheduler{accepted: true}
	notifier := &fakeNotifier{}
	s := newTestService(repo, nil, sched, notifier)
	mustStart(t, s)

	c, err := s.CompleteTranscription(context.Background(), "call-1", "hello world", "completed")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.TranscriptionText == nil || *c.TranscriptionText != "hello world" {
		t.Fatalf("unexpected text: %v", c.TranscriptionText)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != "call-1" {
		t.Fatalf("expected enrichment scheduled once, got %v", sched.scheduled)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.notified))
	}
	// Notification carries persisted (pre-enrichment) state.
	if notifier.notified[0].Summary != nil {
		t.Fatalf("notification must use pre-enrichment state")
	}
}

func TestCompleteTranscription_NonCompletedStoredNotScheduled(t *testing.T) {
	repo := NewMemoryRepo()
	sched := &fakeScheduler{accepted: true}
	s := newTestService(repo, nil, sched, nil)
	mustStart(t, s)

	if _, err := s.CompleteTranscription(context.Background(), "call-1", "partial", "failed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c, _ := repo.Get(context.Background(), "call-1")
	if c.TranscriptionStatus != "failed" || c.TranscriptionText == nil {
		t.Fatalf("transcription must be stored regardless of status: %+v", c)
	}
	if len(sched.scheduled) != 0 {
		t.Fatalf("enrichment must not run for non-completed status")
	}
}

func TestCompleteTranscription_OverwritesOnRepeat(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)
	mustStart(t, s)

	if _, err := s.CompleteTranscription(context.Background(), "call-1", "first", "completed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := s.CompleteTranscription(context.Background(), "call-1", "second", "completed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c, _ := repo.Get(context.Background(), "call-1")
	if *c.TranscriptionText != "second" {
		t.Fatalf("expected last write to win, got %q", *c.TranscriptionText)
	}
}

func TestCompleteTranscription_UnknownCallNotFound(t *testing.T) {
	s := newTestService(NewMemoryRepo(), nil, nil, nil)
	if _, err := s.CompleteTranscription(context.Background(), "missing", "x", "completed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOwned_RejectsForeignOwner(t *testing.T) {
	repo := NewMemoryRepo()
	s := newTestService(repo, nil, nil, nil)
	mustStart(t, s)

	if err := s.DeleteOwned(context.Background(), "call-1", "+15550000000"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "call-1"); err != nil {
		t.Fatalf("call must remain after rejected delete: %v", err)
	}

	if err := s.DeleteOwned(context.Background(), "call-1", "+15551234567"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := repo.Get(context.Background(), "call-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected call deleted, got %v", err)
	}
}

func TestDeleteByPhone_ReturnsCount(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo, nil, nil, nil)
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		s.newID = func() string { return id }
		if _, err := s.Start(context.Background(), "+15551234567"); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	s.newID = func() string { return "other" }
	if _, err := s.Start(context.Background(), "+15559999999"); err != nil {
		t.Fatalf("start: %v", err)
	}

	n, err := s.DeleteByPhone(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
}

func mustStart(t *testing.T, s *Service) {
	t.Helper()
	if _, err := s.Start(context.Background(), "+15551234567"); err != nil {
		t.Fatalf("start: %v", err)
	}
}
