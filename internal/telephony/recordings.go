package telephony

import (
	"context"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioMediaHost is the base for path-only recording URLs delivered in
// status callbacks.
const twilioMediaHost = "https://api.twilio.com"

// NormalizeRecordingURL rewrites a callback-supplied recording URL into an
// absolute MP3 URL. Twilio sends path-only URLs in some callback shapes
// and serves WAV by default; the .mp3 suffix selects the MP3 rendition.
func NormalizeRecordingURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") {
		s = twilioMediaHost + s
	}
	if !strings.HasSuffix(s, ".mp3") {
		s += ".mp3"
	}
	return s
}

// TwilioRecordings resolves recording SIDs to media URLs through the
// Twilio REST API. Used only when a recording callback arrives without a
// URL; callers treat failures as non-fatal.
type TwilioRecordings struct {
	api *openapi.ApiService
}

func NewTwilioRecordings(accountSID, authToken string) *TwilioRecordings {
	c := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioRecordings{api: c.Api}
}

// RecordingMediaURL fetches the recording resource and returns its media
// URL (possibly path-only; callers normalize).
func (t *TwilioRecordings) RecordingMediaURL(ctx context.Context, sid string) (string, error) {
	if sid == "" {
		return "", fmt.Errorf("telephony: recording sid is required")
	}
	rec, err := t.api.FetchRecording(sid, &openapi.FetchRecordingParams{})
	if err != nil {
		return "", fmt.Errorf("telephony: fetch recording %s: %w", sid, err)
	}
	if rec.MediaUrl != nil && *rec.MediaUrl != "" {
		return *rec.MediaUrl, nil
	}
	// Older API versions expose only the resource URI; the media lives at
	// the same path without the .json suffix.
	if rec.Uri != nil && *rec.Uri != "" {
		return strings.TrimSuffix(*rec.Uri, ".json"), nil
	}
	return "", fmt.Errorf("telephony: recording %s has no media url", sid)
}
