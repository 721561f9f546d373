package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
	"gorm.io/gorm"
)

const MaxListLimit = 500

// Notifier tells registrants that a workshop they hold a seat in changed.
type Notifier interface {
	NotifyRegistrants(ctx context.Context, workshopID uuid.UUID, userIDs []string, title, body string) error
}

// Service is the Workshop Store: lifecycle of workshops and their derived capacity.
type Service struct {
	log       *slog.Logger
	Repo      *Repository
	AuditSvc  auditlog.Service
	notifier  Notifier
	now       func() time.Time
	listLimit int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithListLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

func NewService(log *slog.Logger, r *Repository, auditSvc auditlog.Service, opts ...Option) *Service {
	s := &Service{
		log:       log,
		Repo:      r,
		AuditSvc:  auditSvc,
		now:       time.Now,
		listLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===========================
// 🎯 Create Workshop
func (s *Service) Create(ctx context.Context, actor auditlog.Actor, req CreateRequest) (*Workshop, error) {
	const op = "workshop.Service.Create"
	log := s.log.With(slog.String("op", op))

	if err := normalize(&req); err != nil {
		s.audit(ctx, actor, nil, auditlog.ActionWorkshopCreated, map[string]interface{}{
			"english_name": req.EnglishName,
		}, err)
		return nil, err
	}

	w := newWorkshop(&req, actor.UserID)
	if err := s.Repo.Create(ctx, w); err != nil {
		log.Error("failed to create workshop", sl.Err(err))
		s.audit(ctx, actor, nil, auditlog.ActionWorkshopCreated, map[string]interface{}{
			"english_name": req.EnglishName,
		}, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w.Derive(0, s.now())

	s.audit(ctx, actor, &w.ID, auditlog.ActionWorkshopCreated, map[string]interface{}{
		"english_name": w.EnglishName,
		"capacity":     w.Capacity,
		"is_draft":     w.IsDraft,
		"is_active":    w.IsActive,
	}, nil)
	log.Info("workshop created", slog.String("workshop_id", w.ID.String()))

	return w, nil
}

// ===========================
// 🔍 Get Workshop with derived fields
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	const op = "workshop.Service.Get"

	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(op, err)
	}
	count, err := s.Repo.CountCheckins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w.Derive(count, s.now())
	return w, nil
}

// ===========================
// 📄 List Workshops, counts computed fresh for every call
func (s *Service) GetAll(ctx context.Context, filter ListFilter) ([]Workshop, error) {
	const op = "workshop.Service.GetAll"

	if filter.Limit <= 0 {
		filter.Limit = s.listLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	workshops, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, len(workshops))
	for i := range workshops {
		ids[i] = workshops[i].ID
	}
	counts, err := s.Repo.CountCheckinsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	for i := range workshops {
		workshops[i].Derive(counts[workshops[i].ID], now)
	}
	return workshops, nil
}

// ===========================
// 🛠 Update Workshop (partial)
// The workshop row stays locked while the capacity is compared with the live
// checkin count, so a shrink cannot race a concurrent check-in.
func (s *Service) Update(ctx context.Context, actor auditlog.Actor, id uuid.UUID, patch UpdateRequest) (*Workshop, error) {
	const op = "workshop.Service.Update"
	log := s.log.With(slog.String("op", op), slog.String("workshop_id", id.String()))

	var (
		updated     *Workshop
		changedCols map[string]any
	)
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(op, err)
		}
		count, err := repo.CountCheckins(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if patch.Capacity != nil {
			if *patch.Capacity < 0 {
				return apperr.Validation("capacity must not be negative")
			}
			if *patch.Capacity < count {
				return apperr.ErrInvalidCapacityForUpdate
			}
		}

		req := requestFromWorkshop(current)
		cols := applyPatch(&req, patch)
		if err := normalize(&req); err != nil {
			return err
		}
		finishPatch(cols, &req, patch, current)

		if err := repo.Update(ctx, id, cols); err != nil {
			return mapNotFound(op, err)
		}

		updated, err = repo.GetByID(ctx, id)
		if err != nil {
			return mapNotFound(op, err)
		}
		updated.Derive(count, s.now())
		changedCols = cols
		return nil
	})
	if err != nil {
		s.audit(ctx, actor, &id, auditlog.ActionWorkshopUpdated, nil, err)
		if !apperr.IsOutcome(err) {
			log.Error("failed to update workshop", sl.Err(err))
		}
		return nil, err
	}

	fields := make([]string, 0, len(changedCols))
	for col := range changedCols {
		fields = append(fields, col)
	}
	s.audit(ctx, actor, &id, auditlog.ActionWorkshopUpdated, map[string]interface{}{
		"fields": fields,
	}, nil)

	if scheduleChanged(changedCols) {
		s.notifyRegistrants(ctx, updated, "Workshop updated",
			fmt.Sprintf("%s has a new time or place", updated.EnglishName))
	}

	return updated, nil
}

// ===========================
// 🔁 Activate / Deactivate
// Visibility only: capacity and checkins are untouched.
func (s *Service) SetActive(ctx context.Context, actor auditlog.Actor, id uuid.UUID, active bool) (*Workshop, error) {
	const op = "workshop.Service.SetActive"

	action := auditlog.ActionWorkshopDeactivated
	if active {
		action = auditlog.ActionWorkshopActivated
	}

	if err := s.Repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
		err = mapNotFound(op, err)
		s.audit(ctx, actor, &id, action, nil, err)
		return nil, err
	}
	s.audit(ctx, actor, &id, action, nil, nil)

	return s.Get(ctx, id)
}

// ===========================
// 🖼 Attach an externally stored image
func (s *Service) SetImage(ctx context.Context, actor auditlog.Actor, id uuid.UUID, fileID string) (*Workshop, error) {
	const op = "workshop.Service.SetImage"

	var value any = fileID
	if fileID == "" {
		value = nil
	}
	if err := s.Repo.Update(ctx, id, map[string]any{"image_file_id": value}); err != nil {
		err = mapNotFound(op, err)
		s.audit(ctx, actor, &id, auditlog.ActionWorkshopImageSet, nil, err)
		return nil, err
	}
	s.audit(ctx, actor, &id, auditlog.ActionWorkshopImageSet, map[string]interface{}{
		"image_file_id": fileID,
	}, nil)

	return s.Get(ctx, id)
}

// ===========================
// ❌ Delete Workshop and, by cascade, its checkins
func (s *Service) Delete(ctx context.Context, actor auditlog.Actor, id uuid.UUID) error {
	const op = "workshop.Service.Delete"
	log := s.log.With(slog.String("op", op), slog.String("workshop_id", id.String()))

	var (
		deleted     *Workshop
		registrants []string
	)
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		w, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(op, err)
		}
		registrants, err = repo.RegistrantIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return mapNotFound(op, err)
		}
		deleted = w
		return nil
	})
	if err != nil {
		s.audit(ctx, actor, nil, auditlog.ActionWorkshopDeleted, map[string]interface{}{
			"workshop_id": id.String(),
		}, err)
		if !apperr.IsOutcome(err) {
			log.Error("failed to delete workshop", sl.Err(err))
		}
		return err
	}

	s.audit(ctx, actor, nil, auditlog.ActionWorkshopDeleted, map[string]interface{}{
		"workshop_id":   id.String(),
		"english_name":  deleted.EnglishName,
		"registrations": len(registrants),
	}, nil)
	log.Info("workshop deleted", slog.Int("registrations", len(registrants)))

	if s.notifier != nil && len(registrants) > 0 {
		if err := s.notifier.NotifyRegistrants(ctx, id, registrants, "Workshop cancelled",
			fmt.Sprintf("%s was cancelled", deleted.EnglishName)); err != nil {
			log.Warn("failed to notify registrants", sl.Err(err))
		}
	}

	return nil
}

func (s *Service) notifyRegistrants(ctx context.Context, w *Workshop, title, body string) {
	if s.notifier == nil || w.CheckedInCount == 0 {
		return
	}
	log := s.log.With(slog.String("workshop_id", w.ID.String()))

	registrants, err := s.Repo.RegistrantIDs(ctx, w.ID)
	if err != nil {
		log.Warn("failed to load registrants", sl.Err(err))
		return
	}
	if err := s.notifier.NotifyRegistrants(ctx, w.ID, registrants, title, body); err != nil {
		log.Warn("failed to notify registrants", sl.Err(err))
	}
}

// audit records the action; failures to write the audit row are logged, not returned.
func (s *Service) audit(ctx context.Context, actor auditlog.Actor, workshopID *uuid.UUID, action string, details map[string]interface{}, opErr error) {
	if s.AuditSvc == nil {
		return
	}
	status := auditlog.StatusSuccess
	if opErr != nil {
		status = auditlog.StatusFailure
		if details == nil {
			details = map[string]interface{}{}
		}
		details["error"] = opErr.Error()
		// unknown ids are kept out of the workshop_id column
		if errors.Is(opErr, apperr.ErrWorkshopDoesNotExist) {
			workshopID = nil
		}
	}

	var userID *string
	if actor.UserID != "" {
		userID = &actor.UserID
	}
	if err := s.AuditSvc.LogAction(ctx, userID, workshopID, action, details, actor.IP, status); err != nil {
		s.log.Warn("failed to write audit log", slog.String("action", action), sl.Err(err))
	}
}

func mapNotFound(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.ErrWorkshopDoesNotExist
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scheduleChanged(cols map[string]any) bool {
	for _, col := range []string{"dtstart", "dtend", "place"} {
		if _, ok := cols[col]; ok {
			return true
		}
	}
	return false
}
