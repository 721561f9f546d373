package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher is the part of *redis.Client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// PushSender is the part of *messaging.Client used for topic pushes.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Service fans workshop changes out to registrants. Either channel may be nil.
type Service struct {
	log *slog.Logger
	pub Publisher
	fcm PushSender
	now func() time.Time
}

func NewService(log *slog.Logger, pub Publisher, fcm PushSender) *Service {
	return &Service{log: log, pub: pub, fcm: fcm, now: time.Now}
}

// NotifyRegistrants publishes to each user's channel and pushes once to the workshop topic.
func (s *Service) NotifyRegistrants(ctx context.Context, workshopID uuid.UUID, userIDs []string, title, body string) error {
	const op = "notification.Service.NotifyRegistrants"
	log := s.log.With(slog.String("op", op), slog.String("workshop_id", workshopID.String()))

	var errs []error

	if s.pub != nil && len(userIDs) > 0 {
		payload, err := json.Marshal(Message{
			WorkshopID: workshopID,
			Title:      title,
			Body:       body,
			SentAt:     s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, userID := range userIDs {
			if err := s.pub.Publish(ctx, UserChannel(userID), string(payload)).Err(); err != nil {
				errs = append(errs, fmt.Errorf("publish %s: %w", userID, err))
			}
		}
	}

	if s.fcm != nil {
		if err := s.sendToTopic(ctx, WorkshopTopic(workshopID), title, body); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		log.Warn("some notifications were not delivered", slog.Int("failed", len(errs)))
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	log.Debug("registrants notified", slog.Int("users", len(userIDs)))
	return nil
}

func (s *Service) sendToTopic(ctx context.Context, topic, title, body string) error {
	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "workshop_updates",
				DefaultSound: true,
			},
		},
	}

	id, err := s.fcm.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send topic message: %w", err)
	}
	s.log.Debug("FCM topic message sent", slog.String("topic", topic), slog.String("message_id", id))
	return nil
}
