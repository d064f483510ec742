package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency on the response
// path; the SDK is only wired at the REST boundary (recordings.go).
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlRecord struct {
	XMLName                      xml.Name `xml:"Record"`
	PlayBeep                     bool     `xml:"playBeep,attr"`
	MaxLength                    int      `xml:"maxLength,attr"`
	Transcribe                   bool     `xml:"transcribe,attr"`
	TranscribeCallback           string   `xml:"transcribeCallback,attr"`
	RecordingStatusCallback      string   `xml:"recordingStatusCallback,attr"`
	RecordingStatusCallbackEvent string   `xml:"recordingStatusCallbackEvent,attr"`
}

const (
	consentNotice        = "You are being connected. This call will be recorded."
	recordingStartNotice = "The recording has started."

	// connectPauseSeconds gives the other leg time to pick up before the
	// recording notice plays.
	connectPauseSeconds = 15

	// maxRecordingSeconds caps a recording at 90 minutes.
	maxRecordingSeconds = 5400
)

// AnswerParams carries the per-call callback URLs embedded in the answer
// document. Both must already carry the call correlation id.
type AnswerParams struct {
	TranscribeCallbackURL      string
	RecordingStatusCallbackURL string
}

// AnswerTwiML renders the voice response for an answered inbound call:
// consent notice, pause, recording notice, then a record directive with
// transcription enabled and both status callbacks attached.
func AnswerTwiML(p AnswerParams) (string, error) {
	if p.TranscribeCallbackURL == "" || p.RecordingStatusCallbackURL == "" {
		return "", errors.New("telephony: both callback URLs are required")
	}

	r := twimlResponse{
		Verbs: []any{
			twimlSay{Text: consentNotice},
			twimlPause{Length: connectPauseSeconds},
			twimlSay{Text: recordingStartNotice},
			twimlRecord{
				PlayBeep:                     true,
				MaxLength:                    maxRecordingSeconds,
				Transcribe:                   true,
				TranscribeCallback:           p.TranscribeCallbackURL,
				RecordingStatusCallback:      p.RecordingStatusCallbackURL,
				RecordingStatusCallbackEvent: "completed",
			},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
