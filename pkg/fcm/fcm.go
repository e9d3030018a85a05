package fcm

import (
	"context"
	"errors"
	"fmt"

	"repairhub-backend/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrTokenNotRegistered marks a send that failed because the device token is no longer valid.
var ErrTokenNotRegistered = errors.New("registration-token-not-registered")

var log = logger.For("fcm")

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
	iconPath        string
}

// NewClient creates a new FCM client using the provided credentials file.
// An empty credentials file falls back to application default credentials.
func NewClient(ctx context.Context, credentialsFile, projectID string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var fbConfig *firebase.Config
	if projectID != "" {
		fbConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Info("client initialized")
	return &Client{
		messagingClient: messagingClient,
		iconPath:        "/icons/icon-192.png",
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string

	ClickAction  string // URL opened when the notification is clicked
	HighPriority bool
}

func (c *Client) buildMessage(token string, n NotificationData) *messaging.Message {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.ClickAction != "" {
		data["click_action"] = n.ClickAction
	}

	androidPriority := "normal"
	if n.HighPriority {
		androidPriority = "high"
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title:    n.Title,
			Body:     n.Body,
			ImageURL: n.ImageURL,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  c.iconPath,
			},
		},
	}
	if n.ClickAction != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: n.ClickAction}
	}
	return msg
}

// SendToDevice sends a push notification to a single device token and returns the provider message id.
// A token the provider no longer recognises yields an error wrapping ErrTokenNotRegistered.
func (c *Client) SendToDevice(ctx context.Context, token string, n NotificationData) (string, error) {
	response, err := c.messagingClient.Send(ctx, c.buildMessage(token, n))
	if err != nil {
		// messaging.IsUnregistered type-asserts the SDK error, so classify before wrapping.
		if messaging.IsUnregistered(err) {
			return "", fmt.Errorf("%w: %v", ErrTokenNotRegistered, err)
		}
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.WithField("token", logger.ShortToken(token)).Debugf("message sent: %s", response)
	return response, nil
}

// IsTokenNotRegistered reports whether err came from a dead device token.
func IsTokenNotRegistered(err error) bool {
	return errors.Is(err, ErrTokenNotRegistered)
}
