package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// Create inserts a user. A row that already exists with the same ID is left
// untouched, so concurrent first logins for one subject all succeed.
func (r *repository) Create(ctx context.Context, user *User) error {
	const op = "auth.repository.Create"

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Find user by ID
func (r *repository) FindByID(ctx context.Context, userID string) (*User, error) {
	const op = "auth.repository.FindByID"

	var user User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateProfile refreshes contact fields and role from the latest token.
func (r *repository) UpdateProfile(ctx context.Context, userID string, fields map[string]any) error {
	const op = "auth.repository.UpdateProfile"

	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
