package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
)

type EventPublisher interface {
	Publish(ctx context.Context, key, data []byte) error
}

type EventProvider interface {
	NewEvents(ctx context.Context, limit int) ([]Event, error)
	SetEventDone(ctx context.Context, id uuid.UUID) (Event, error)
}

// Sender relays committed outbox events to the broker.
type Sender struct {
	log       *slog.Logger
	publisher EventPublisher
	provider  EventProvider
	stopOnce  sync.Once
	stopChan  chan struct{}
	done      chan struct{}
}

func NewSender(log *slog.Logger, publisher EventPublisher, provider EventProvider) *Sender {
	return &Sender{
		log:       log,
		publisher: publisher,
		provider:  provider,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sender) StartProducing(ctx context.Context, limit int, interval time.Duration) {
	const op = "outbox.Sender.StartProducing"
	log := s.log.With(slog.String("op", op))

	log.Info("starting producing events", slog.Int("limit", limit), slog.Duration("interval", interval))

	if err := ctx.Err(); err != nil {
		log.Info("stopping event producing", sl.Err(err))
		close(s.done)
		return
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer func() {
			ticker.Stop()
			close(s.done)
			log.Info("stopping event producing")
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.flush(ctx, limit)
			}
		}
	}()
}

// flush publishes the batch oldest first and stops at the first failure, so a
// later event never reaches the broker ahead of an earlier one.
func (s *Sender) flush(ctx context.Context, limit int) {
	events, err := s.provider.NewEvents(ctx, limit)
	if err != nil {
		s.log.Error("failed to get new events", sl.Err(err))
		return
	}

	for _, event := range events {
		if !s.processEvent(ctx, event) {
			return
		}
	}
}

func (s *Sender) processEvent(ctx context.Context, event Event) bool {
	const op = "outbox.Sender.processEvent"
	log := s.log.With(slog.String("op", op), slog.String("event_id", event.ID.String()))

	if err := s.publisher.Publish(ctx, PartitionKey(event), []byte(event.Payload)); err != nil {
		log.Error("failed to publish event", slog.String("type", event.Type), sl.Err(err))
		return false
	}

	if _, err := s.provider.SetEventDone(ctx, event.ID); err != nil {
		log.Error("failed to mark event as done", sl.Err(err))
		return false
	}
	return true
}

// PartitionKey keeps every event for one (user, workshop) pair on the same
// partition. Events without that pair fall back to their type.
func PartitionKey(event Event) []byte {
	var p CheckinPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil || p.UserID == "" || p.WorkshopID == uuid.Nil {
		return []byte(event.Type)
	}
	return []byte(p.UserID + ":" + p.WorkshopID.String())
}

// StopSending stops the relay loop and waits for the in-flight batch.
func (s *Sender) StopSending() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}
