package auditlog

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const (
	ActionWorkshopCreated     = "WORKSHOP_CREATED"
	ActionWorkshopUpdated     = "WORKSHOP_UPDATED"
	ActionWorkshopActivated   = "WORKSHOP_ACTIVATED"
	ActionWorkshopDeactivated = "WORKSHOP_DEACTIVATED"
	ActionWorkshopImageSet    = "WORKSHOP_IMAGE_SET"
	ActionWorkshopDeleted     = "WORKSHOP_DELETED"
	ActionCheckIn             = "CHECK_IN"
	ActionCheckOut            = "CHECK_OUT"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *string    `gorm:"size:255;index" json:"user_id"`
	WorkshopID *uuid.UUID `gorm:"type:uuid;index" json:"workshop_id"`
	Action     string     `gorm:"size:100;not null;index" json:"action"`
	Details    string     `gorm:"type:text" json:"details"` // freeform JSON details
	IPAddress  string     `gorm:"size:45" json:"ip_address"`
	Status     string     `gorm:"size:20;not null;index" json:"status"` // success/failure
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogResponse represents the audit log response for API
type AuditLogResponse struct {
	ID         uint       `json:"id"`
	UserID     *string    `json:"user_id"`
	WorkshopID *uuid.UUID `json:"workshop_id"`
	Action     string     `json:"action"`
	Details    string     `json:"details"`
	IPAddress  string     `json:"ip_address"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	// Additional fields for better display
	UserEmail    *string `json:"user_email,omitempty"`
	WorkshopName *string `json:"workshop_name,omitempty"`
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	UserID     *string    `json:"user_id"`
	WorkshopID *uuid.UUID `json:"workshop_id"`
	Action     string     `json:"action"`
	Status     string     `json:"status"`
	FromDate   *time.Time `json:"from_date"`
	ToDate     *time.Time `json:"to_date"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// Actor identifies who performed an audited action and from where.
type Actor struct {
	UserID string
	IP     string
}
