package notify

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Sender delivers one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMSender sends through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds a sender from service account credentials, given
// either as an inline JSON document or as a path to one.
func NewFCMSender(ctx context.Context, credentials string) (*FCMSender, error) {
	credentials = strings.TrimSpace(credentials)
	if credentials == "" {
		return nil, fmt.Errorf("firebase credentials are required")
	}

	var opt option.ClientOption
	if strings.HasPrefix(credentials, "{") {
		opt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		opt = option.WithCredentialsFile(credentials)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return err
}
