// Package consumer feeds marketplace events from Google Cloud Pub/Sub into the notification writer.
package consumer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"repairhub-backend/internal/notification/domain"
	"repairhub-backend/internal/notification/usecase"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var log = logger.For("pubsub")

// EventHandler is satisfied by usecase.NotificationUsecase.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.Event) (*usecase.CreateResult, error)
}

type Consumer struct {
	client    *pubsub.Client
	handler   EventHandler
	topicName string
	subName   string
}

// NewConsumer dials Pub/Sub. An empty subscription name defaults to "<topic>-sub".
func NewConsumer(ctx context.Context, projectID, topicName, subName, credentialsFile string, handler EventHandler) (*Consumer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return NewConsumerWithClient(client, topicName, subName, handler), nil
}

func NewConsumerWithClient(client *pubsub.Client, topicName, subName string, handler EventHandler) *Consumer {
	if subName == "" {
		subName = topicName + "-sub"
	}
	return &Consumer{
		client:    client,
		handler:   handler,
		topicName: topicName,
		subName:   subName,
	}
}

// Start ensures the subscription exists and blocks receiving until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	log.Infof("starting consumer on topic %s, subscription %s", c.topicName, c.subName)

	sub, err := c.ensureSubscription(ctx)
	if err != nil {
		return err
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.handleMessage(ctx, msg.ID, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("error receiving messages: %w", err)
	}
	return nil
}

func (c *Consumer) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := c.client.Subscription(c.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("error checking subscription existence: %w", err)
	}
	if exists {
		return sub, nil
	}

	topic := c.client.Topic(c.topicName)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("error checking topic existence: %w", err)
	}
	if !topicExists {
		return nil, fmt.Errorf("topic %s does not exist, cannot create subscription", c.topicName)
	}

	sub, err = c.client.CreateSubscription(ctx, c.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	log.Infof("created subscription %s", c.subName)
	return sub, nil
}

// handleMessage reports whether the message should be acked. Invalid events are acked and dropped;
// only server-side failures are nacked so the event is redelivered.
func (c *Consumer) handleMessage(ctx context.Context, id string, data []byte) bool {
	entry := log.WithField("message_id", id)

	ev, err := usecase.DecodeEvent(data)
	if err != nil {
		entry.WithError(err).Warn("dropping malformed event")
		return true
	}

	res, err := c.handler.HandleEvent(ctx, ev)
	if err != nil {
		if apperr.Status(err) >= http.StatusInternalServerError {
			entry.WithError(err).Error("failed to handle event, will be redelivered")
			return false
		}
		entry.WithError(err).Warn("dropping rejected event")
		return true
	}

	entry.WithField("kind", ev.EventKind()).
		WithField("notification_id", res.Notification.ID).
		WithField("fcm_sent", res.FCMSent).
		Info("event handled")
	return true
}

func (c *Consumer) Close() error {
	return c.client.Close()
}
