package workshop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("workshop not found")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{DB: tx}
}

// ===========================
// 🎯 Create Workshop
func (r *Repository) Create(ctx context.Context, w *Workshop) error {
	const op = "workshop.Repository.Create"

	if err := r.DB.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===========================
// 🔍 Get Workshop By ID (no derived fields)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	const op = "workshop.Repository.GetByID"

	var w Workshop
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &w, nil
}

// ===========================
// 🔒 Get Workshop By ID holding a row lock until the surrounding transaction ends.
// SQLite ignores the locking clause; there the IMMEDIATE transaction already
// holds the database write lock.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	const op = "workshop.Repository.GetForUpdate"

	var w Workshop
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &w, nil
}

// ===========================
// 📄 List Workshops
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Workshop, error) {
	const op = "workshop.Repository.List"

	query := r.DB.WithContext(ctx).Model(&Workshop{})
	if filter.VisibleOnly {
		query = query.Where("is_active = ? AND is_draft = ?", true, false)
	}

	var workshops []Workshop
	err := query.
		Order("dtstart ASC").
		Order("created_at ASC").
		Limit(filter.Limit).
		Find(&workshops).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return workshops, nil
}

// ===========================
// 🔢 Count checkins for a Workshop
func (r *Repository) CountCheckins(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "workshop.Repository.CountCheckins"

	var count int64
	err := r.DB.WithContext(ctx).
		Table(CheckinsTable).
		Where("workshop_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// ===========================
// 🔢 Count checkins for many Workshops in one grouped query
func (r *Repository) CountCheckinsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	const op = "workshop.Repository.CountCheckinsFor"

	counts := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		WorkshopID uuid.UUID
		Total      int64
	}
	err := r.DB.WithContext(ctx).
		Table(CheckinsTable).
		Select("workshop_id, COUNT(*) AS total").
		Where("workshop_id IN ?", ids).
		Group("workshop_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, row := range rows {
		counts[row.WorkshopID] = int(row.Total)
	}
	return counts, nil
}

// ===========================
// 👥 Registrant ids of a Workshop
func (r *Repository) RegistrantIDs(ctx context.Context, id uuid.UUID) ([]string, error) {
	const op = "workshop.Repository.RegistrantIDs"

	var ids []string
	err := r.DB.WithContext(ctx).
		Table(CheckinsTable).
		Where("workshop_id = ?", id).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// ===========================
// 🛠 Update selected columns
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	const op = "workshop.Repository.Update"

	if len(fields) == 0 {
		return nil
	}
	res := r.DB.WithContext(ctx).Model(&Workshop{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ===========================
// ❌ Delete Workshop; checkins go with it through ON DELETE CASCADE
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "workshop.Repository.Delete"

	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&Workshop{})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
