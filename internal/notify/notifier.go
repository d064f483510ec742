package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"call-recorder/internal/calls"
	"call-recorder/internal/users"
)

const (
	recordingCompleteTitle = "Recording Complete"
	recordingCompleteBody  = "Your call recording is ready!"
)

// UserDirectory resolves the owner of a call by phone number.
type UserDirectory interface {
	GetByPhone(ctx context.Context, phone string) (users.User, error)
}

// RecordingNotifier pushes a recording-complete message to the call
// owner's device. Delivery is strictly best-effort: unknown users,
// disabled notifications, missing tokens and transport failures are
// all logged and absorbed.
type RecordingNotifier struct {
	directory UserDirectory
	sender    Sender
	log       *slog.Logger
}

func NewRecordingNotifier(directory UserDirectory, sender Sender, log *slog.Logger) *RecordingNotifier {
	return &RecordingNotifier{directory: directory, sender: sender, log: log}
}

func (n *RecordingNotifier) RecordingReady(ctx context.Context, c calls.Call) {
	if n.sender == nil {
		return
	}

	user, err := n.directory.GetByPhone(ctx, c.FromPhone)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			n.log.Warn("user lookup for push failed", "call_id", c.ID, "err", err)
		}
		return
	}
	if !user.PushNotificationsEnabled || user.FCMToken == "" {
		return
	}

	err = n.sender.Send(ctx, user.FCMToken, recordingCompleteTitle, recordingCompleteBody, BuildCallData(c))
	if err != nil {
		n.log.Warn("push delivery failed", "call_id", c.ID, "user_id", user.ID, "err", err)
		return
	}
	n.log.Info("recording complete notification sent", "call_id", c.ID, "user_id", user.ID)
}

// BuildCallData flattens a call into the all-string payload the mobile
// client expects. Absent fields become empty strings, except the
// transcription status which reports "pending" until a callback lands.
func BuildCallData(c calls.Call) map[string]string {
	transcriptionStatus := c.TranscriptionStatus
	if transcriptionStatus == "" {
		transcriptionStatus = "pending"
	}
	duration := 0
	if c.RecordingDuration != nil {
		duration = *c.RecordingDuration
	}
	return map[string]string{
		"type":                "recording_complete",
		"id":                  c.ID,
		"callDate":            c.CallDate.Format(time.RFC3339),
		"fromPhone":           c.FromPhone,
		"toPhone":             "",
		"recordingDuration":   strconv.Itoa(duration),
		"recordingStatus":     c.RecordingStatus,
		"recordingUrl":        strValue(c.RecordingURL),
		"summary":             strValue(c.Summary),
		"title":               strValue(c.Title),
		"transcriptionStatus": transcriptionStatus,
		"transcriptionText":   strValue(c.TranscriptionText),
	}
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
