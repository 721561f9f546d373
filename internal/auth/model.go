package auth

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ============================
// 🔷 GORM User Model
// ID is the subject issued by the external identity provider.
type User struct {
	ID               string    `gorm:"primaryKey;size:255" json:"id"`
	Email            string    `gorm:"size:255;index" json:"email"`
	TelegramUsername *string   `gorm:"size:255" json:"telegram_username,omitempty"`
	Role             Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Identity is the already-authenticated caller handed to the core.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
