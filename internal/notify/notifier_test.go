package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"call-recorder/internal/calls"
	"call-recorder/internal/users"
)

type sentPush struct {
	token string
	title string
	body  string
	data  map[string]string
}

type fakeSender struct {
	err  error
	sent []sentPush
}

func (f *fakeSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	f.sent = append(f.sent, sentPush{token: token, title: title, body: body, data: data})
	return f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registeredUser(t *testing.T, dir *users.Service, phone, token string) users.User {
	t.Helper()
	u, _, err := dir.Register(context.Background(), phone, "US", token)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func TestRecordingReady_SendsToOwner(t *testing.T) {
	dir := users.NewService(users.NewMemoryRepo())
	registeredUser(t, dir, "+15551234567", "tok-1")
	sender := &fakeSender{}
	n := NewRecordingNotifier(dir, sender, discard())

	url := "https://api.twilio.com/rec.mp3"
	n.RecordingReady(context.Background(), calls.Call{
		ID:           "c1",
		FromPhone:    "+15551234567",
		CallDate:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RecordingURL: &url,
	})

	if len(sender.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(sender.sent))
	}
	p := sender.sent[0]
	if p.token != "tok-1" || p.title != "Recording Complete" || p.body != "Your call recording is ready!" {
		t.Fatalf("unexpected push: %+v", p)
	}
	if p.data["type"] != "recording_complete" || p.data["id"] != "c1" {
		t.Fatalf("unexpected data: %v", p.data)
	}
	if p.data["recordingUrl"] != url {
		t.Fatalf("unexpected url: %q", p.data["recordingUrl"])
	}
}

func TestRecordingReady_SkipsUnknownUser(t *testing.T) {
	dir := users.NewService(users.NewMemoryRepo())
	sender := &fakeSender{}
	n := NewRecordingNotifier(dir, sender, discard())

	n.RecordingReady(context.Background(), calls.Call{ID: "c1", FromPhone: "+15559999999"})

	if len(sender.sent) != 0 {
		t.Fatal("push must not be sent for unknown phone")
	}
}

func TestRecordingReady_SkipsDisabledNotifications(t *testing.T) {
	dir := users.NewService(users.NewMemoryRepo())
	u := registeredUser(t, dir, "+15551234567", "tok-1")
	if err := dir.SetNotificationsEnabled(context.Background(), u.ID, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	sender := &fakeSender{}
	n := NewRecordingNotifier(dir, sender, discard())

	n.RecordingReady(context.Background(), calls.Call{ID: "c1", FromPhone: "+15551234567"})

	if len(sender.sent) != 0 {
		t.Fatal("push must respect the notifications toggle")
	}
}

func TestRecordingReady_SendFailureAbsorbed(t *testing.T) {
	dir := users.NewService(users.NewMemoryRepo())
	registeredUser(t, dir, "+15551234567", "tok-1")
	sender := &fakeSender{err: errors.New("unregistered token")}
	n := NewRecordingNotifier(dir, sender, discard())

	// Must not panic or propagate.
	n.RecordingReady(context.Background(), calls.Call{ID: "c1", FromPhone: "+15551234567"})
}

func TestBuildCallData_Defaults(t *testing.T) {
	data := BuildCallData(calls.Call{ID: "c1", FromPhone: "+1555", CallDate: time.Unix(0, 0).UTC()})

	if data["transcriptionStatus"] != "pending" {
		t.Fatalf("expected pending default, got %q", data["transcriptionStatus"])
	}
	if data["recordingDuration"] != "0" {
		t.Fatalf("expected 0 duration, got %q", data["recordingDuration"])
	}
	if data["toPhone"] != "" || data["summary"] != "" || data["title"] != "" {
		t.Fatalf("expected empty defaults: %v", data)
	}
}
