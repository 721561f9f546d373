package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("outbox event not found")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Add stores an event on tx so it commits or rolls back together with the
// change it describes.
func (r *Repository) Add(ctx context.Context, tx *gorm.DB, eventType string, payload any) error {
	const op = "outbox.Repository.Add"

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := &Event{Type: eventType, Payload: data, Status: StatusNew}
	if err := tx.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NewEvents returns up to limit undelivered events, oldest first.
func (r *Repository) NewEvents(ctx context.Context, limit int) ([]Event, error) {
	const op = "outbox.Repository.NewEvents"

	var events []Event
	err := r.DB.WithContext(ctx).
		Where("status = ?", StatusNew).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (r *Repository) SetEventDone(ctx context.Context, id uuid.UUID) (Event, error) {
	const op = "outbox.Repository.SetEventDone"

	res := r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", StatusDone)
	if res.Error != nil {
		return Event{}, fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return Event{}, fmt.Errorf("%s: %w", op, ErrEventNotFound)
	}

	var event Event
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&event).Error; err != nil {
		return Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
