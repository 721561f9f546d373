package checkin

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
	"github.com/sharath018/workshop-checkin-backend/internal/metrics"
	"github.com/sharath018/workshop-checkin-backend/internal/outbox"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"gorm.io/gorm"
)

const (
	opCheckIn  = "checkin"
	opCheckOut = "checkout"
)

// EventWriter stores outbox events inside the caller's transaction.
type EventWriter interface {
	Add(ctx context.Context, tx *gorm.DB, eventType string, payload any) error
}

// Engine is the only writer of checkin rows.
type Engine struct {
	log       *slog.Logger
	repo      *Repository
	workshops *workshop.Repository
	events    EventWriter
	auditSvc  auditlog.Service
	metrics   *metrics.Metrics
	now       func() time.Time
	tolerance time.Duration
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOverlapTolerance lets schedules share up to d before they count as overlapping.
func WithOverlapTolerance(d time.Duration) Option {
	return func(e *Engine) { e.tolerance = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithEvents(w EventWriter) Option {
	return func(e *Engine) { e.events = w }
}

func NewEngine(log *slog.Logger, repo *Repository, workshops *workshop.Repository, auditSvc auditlog.Service, opts ...Option) *Engine {
	e := &Engine{
		log:       log,
		repo:      repo,
		workshops: workshops,
		auditSvc:  auditSvc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ===========================
// ✅ Check In
// Admission runs in one transaction holding the user row and then the workshop
// row, so capacity and overlap are decided on data no one else can change.
func (e *Engine) CheckIn(ctx context.Context, actor auditlog.Actor, workshopID uuid.UUID) error {
	const op = "checkin.Engine.CheckIn"
	log := e.log.With(
		slog.String("op", op),
		slog.String("user_id", actor.UserID),
		slog.String("workshop_id", workshopID.String()),
	)

	err := e.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		workshops := e.workshops.WithTx(tx)

		if err := repo.LockUser(ctx, actor.UserID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return apperr.Validation("user %s is unknown", actor.UserID)
			}
			return err
		}

		w, err := workshops.GetForUpdate(ctx, workshopID)
		if err != nil {
			if errors.Is(err, workshop.ErrNotFound) {
				return apperr.ErrWorkshopDoesNotExist
			}
			return err
		}
		if !w.IsActive {
			return apperr.ErrNotActive
		}

		count, err := workshops.CountCheckins(ctx, workshopID)
		if err != nil {
			return err
		}
		now := e.now()
		w.Derive(count, now)
		if !w.HasPlaces() {
			return apperr.ErrNoPlaces
		}

		if w.DTStart == nil || w.DTEnd == nil {
			return apperr.ErrNotRegistrable
		}
		if w.DTStart.Before(now) {
			return apperr.ErrTimeIsOver
		}
		if !w.IsRegistrable || w.CheckInType != workshop.CheckInSystem {
			return apperr.ErrNotRegistrable
		}

		exists, err := repo.Exists(ctx, actor.UserID, workshopID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrAlreadyCheckedIn
		}

		others, err := repo.WorkshopsForUser(ctx, actor.UserID)
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.ID == w.ID || other.DTStart == nil || other.DTEnd == nil {
				continue
			}
			if Overlaps(*other.DTStart, *other.DTEnd, *w.DTStart, *w.DTEnd, e.tolerance) {
				return apperr.ErrOverlappingWorkshops
			}
		}

		if err := repo.Insert(ctx, &CheckIn{UserID: actor.UserID, WorkshopID: workshopID}); err != nil {
			return err
		}
		return e.addEvent(ctx, tx, outbox.TypeCheckinCreated, actor.UserID, workshopID, now)
	})
	err = translateStorageError(err)

	e.record(ctx, opCheckIn, auditlog.ActionCheckIn, actor, workshopID, err)
	if err != nil {
		if apperr.IsOutcome(err) {
			log.Debug("check-in rejected", sl.Err(err))
			return err
		}
		log.Error("check-in failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checked in")
	return nil
}

// ===========================
// ↩️ Check Out
func (e *Engine) CheckOut(ctx context.Context, actor auditlog.Actor, workshopID uuid.UUID) error {
	const op = "checkin.Engine.CheckOut"
	log := e.log.With(
		slog.String("op", op),
		slog.String("user_id", actor.UserID),
		slog.String("workshop_id", workshopID.String()),
	)

	err := e.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := e.workshops.WithTx(tx).GetByID(ctx, workshopID); err != nil {
			if errors.Is(err, workshop.ErrNotFound) {
				return apperr.ErrWorkshopDoesNotExist
			}
			return err
		}

		deleted, err := e.repo.WithTx(tx).Delete(ctx, actor.UserID, workshopID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.ErrCheckInDoesNotExist
		}
		return e.addEvent(ctx, tx, outbox.TypeCheckinDeleted, actor.UserID, workshopID, e.now())
	})
	err = translateStorageError(err)

	e.record(ctx, opCheckOut, auditlog.ActionCheckOut, actor, workshopID, err)
	if err != nil {
		if apperr.IsOutcome(err) {
			return err
		}
		log.Error("check-out failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checked out")
	return nil
}

// ===========================
// 🔍 Read-only queries
func (e *Engine) IsCheckedIn(ctx context.Context, userID string, workshopID uuid.UUID) (bool, error) {
	const op = "checkin.Engine.IsCheckedIn"

	ok, err := e.repo.Exists(ctx, userID, workshopID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// CheckedInWorkshops lists the user's workshops with fresh derived fields.
func (e *Engine) CheckedInWorkshops(ctx context.Context, userID string) ([]workshop.Workshop, error) {
	const op = "checkin.Engine.CheckedInWorkshops"

	workshops, err := e.repo.WorkshopsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, len(workshops))
	for i := range workshops {
		ids[i] = workshops[i].ID
	}
	counts, err := e.workshops.CountCheckinsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := e.now()
	for i := range workshops {
		workshops[i].Derive(counts[workshops[i].ID], now)
	}
	return workshops, nil
}

func (e *Engine) CheckedInUsers(ctx context.Context, workshopID uuid.UUID) ([]Registrant, error) {
	const op = "checkin.Engine.CheckedInUsers"

	if _, err := e.workshops.GetByID(ctx, workshopID); err != nil {
		if errors.Is(err, workshop.ErrNotFound) {
			return nil, apperr.ErrWorkshopDoesNotExist
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := e.repo.UsersForWorkshop(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (e *Engine) addEvent(ctx context.Context, tx *gorm.DB, eventType, userID string, workshopID uuid.UUID, at time.Time) error {
	if e.events == nil {
		return nil
	}
	return e.events.Add(ctx, tx, eventType, outbox.CheckinPayload{
		UserID:     userID,
		WorkshopID: workshopID,
		OccurredAt: at.UTC(),
	})
}

// record feeds the outcome to metrics and the audit log.
func (e *Engine) record(ctx context.Context, op, action string, actor auditlog.Actor, workshopID uuid.UUID, err error) {
	code := string(apperr.Success)
	status := auditlog.StatusSuccess
	var details map[string]interface{}
	if err != nil {
		status = auditlog.StatusFailure
		code = "ERROR"
		if c, ok := apperr.CodeOf(err); ok {
			code = string(c)
		}
		details = map[string]interface{}{"result": code}
	}
	e.metrics.ObserveCheckin(op, code)

	if e.auditSvc == nil {
		return
	}
	wid := &workshopID
	if errors.Is(err, apperr.ErrWorkshopDoesNotExist) {
		wid = nil
	}
	if auditErr := e.auditSvc.LogAction(ctx, &actor.UserID, wid, action, details, actor.IP, status); auditErr != nil {
		e.log.Warn("failed to write audit log", slog.String("action", action), sl.Err(auditErr))
	}
}
