package auditlog

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*AuditLogResponse, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const responseColumns = `
	al.id, al.user_id, al.workshop_id, al.action,
	al.details, al.ip_address, al.status, al.created_at,
	u.email as user_email,
	w.english_name as workshop_name
`

func (r *repository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("audit_logs al").
		Joins("LEFT JOIN users u ON al.user_id = u.id").
		Joins("LEFT JOIN workshops w ON al.workshop_id = w.id")
}

// Create inserts a new audit log entry
func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	var logs []AuditLogResponse
	var total int64

	query := r.base(ctx)

	// Apply filters
	if filter.UserID != nil {
		query = query.Where("al.user_id = ?", *filter.UserID)
	}
	if filter.WorkshopID != nil {
		query = query.Where("al.workshop_id = ?", *filter.WorkshopID)
	}
	if filter.Action != "" {
		query = query.Where("LOWER(al.action) LIKE ?", "%"+strings.ToLower(filter.Action)+"%")
	}
	if filter.Status != "" {
		query = query.Where("al.status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("al.created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("al.created_at <= ?", *filter.ToDate)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if filter.Limit <= 0 {
		filter.Limit = 20 // default limit
	}
	if filter.Page <= 0 {
		filter.Page = 1 // default page
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Select(responseColumns).
		Order("al.created_at DESC").
		Order("al.id DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetByID retrieves a specific audit log by ID
func (r *repository) GetByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	var log AuditLogResponse

	err := r.base(ctx).
		Select(responseColumns).
		Where("al.id = ?", id).
		Take(&log).Error
	if err != nil {
		return nil, err
	}

	return &log, nil
}
