package checkin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{DB: tx}
}

// ===========================
// 🔒 Lock the user row for the rest of the transaction
func (r *Repository) LockUser(ctx context.Context, userID string) error {
	const op = "checkin.Repository.LockUser"

	var user auth.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", userID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===========================
// 🔍 Is the user checked in
func (r *Repository) Exists(ctx context.Context, userID string, workshopID uuid.UUID) (bool, error) {
	const op = "checkin.Repository.Exists"

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&CheckIn{}).
		Where("user_id = ? AND workshop_id = ?", userID, workshopID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count > 0, nil
}

// ===========================
// ➕ Insert a checkin row
func (r *Repository) Insert(ctx context.Context, c *CheckIn) error {
	const op = "checkin.Repository.Insert"

	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===========================
// ❌ Delete a checkin row, reporting whether one existed
func (r *Repository) Delete(ctx context.Context, userID string, workshopID uuid.UUID) (bool, error) {
	const op = "checkin.Repository.Delete"

	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND workshop_id = ?", userID, workshopID).
		Delete(&CheckIn{})
	if res.Error != nil {
		return false, fmt.Errorf("%s: %w", op, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ===========================
// 📄 Workshops a user is checked in to
func (r *Repository) WorkshopsForUser(ctx context.Context, userID string) ([]workshop.Workshop, error) {
	const op = "checkin.Repository.WorkshopsForUser"

	var workshops []workshop.Workshop
	err := r.DB.WithContext(ctx).
		Model(&workshop.Workshop{}).
		Select("workshops.*").
		Joins("JOIN workshop_checkins c ON c.workshop_id = workshops.id").
		Where("c.user_id = ?", userID).
		Order("workshops.dtstart ASC").
		Find(&workshops).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return workshops, nil
}

// ===========================
// 👥 Users checked in to a workshop, in check-in order
func (r *Repository) UsersForWorkshop(ctx context.Context, workshopID uuid.UUID) ([]Registrant, error) {
	const op = "checkin.Repository.UsersForWorkshop"

	var registrants []Registrant
	err := r.DB.WithContext(ctx).
		Table("users").
		Select("users.*, c.created_at AS checked_in_at").
		Joins("JOIN workshop_checkins c ON c.user_id = users.id").
		Where("c.workshop_id = ?", workshopID).
		Order("c.created_at ASC").
		Order("users.id ASC").
		Scan(&registrants).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return registrants, nil
}
