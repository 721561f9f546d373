package outbox

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusNew  = "new"
	StatusDone = "done"
)

const (
	TypeCheckinCreated = "checkin.created"
	TypeCheckinDeleted = "checkin.deleted"
)

// ============================
// 🔷 GORM Outbox Event Model
type Event struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string         `gorm:"column:event_type;size:64;not null" json:"type"`
	Payload   datatypes.JSON `json:"payload"`
	Status    string         `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Event) TableName() string {
	return "outbox_events"
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = StatusNew
	}
	return nil
}

// CheckinPayload is the body of checkin.* events.
type CheckinPayload struct {
	UserID     string    `json:"user_id"`
	WorkshopID uuid.UUID `json:"workshop_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
