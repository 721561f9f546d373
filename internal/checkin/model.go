package checkin

import (
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
)

// ============================
// 🔷 GORM CheckIn Model
// One row per (user, workshop). Rows disappear with either side.
type CheckIn struct {
	UserID     string             `gorm:"primaryKey;size:255" json:"user_id"`
	WorkshopID uuid.UUID          `gorm:"type:uuid;primaryKey;index" json:"workshop_id"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"created_at"`
	User       *auth.User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Workshop   *workshop.Workshop `gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CheckIn) TableName() string {
	return workshop.CheckinsTable
}

// Registrant is a checked-in user as listed on a roster.
type Registrant struct {
	auth.User
	CheckedInAt time.Time `json:"checked_in_at"`
}
