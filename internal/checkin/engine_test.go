package checkin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sharath018/workshop-checkin-backend/database"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
	"github.com/sharath018/workshop-checkin-backend/internal/metrics"
	"github.com/sharath018/workshop-checkin-backend/internal/outbox"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	t       *testing.T
	db      *gorm.DB
	clock   *fakeClock
	store   *workshop.Service
	engine  *Engine
	users   auth.Repository
	events  *outbox.Repository
	metrics *metrics.Metrics
	admin   auditlog.Actor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "checkins.db"))
	require.NoError(t, err)
	return newFixtureOn(t, db, opts...)
}

// newPostgresFixture runs against CHECKIN_TEST_POSTGRES_DSN and skips when it is unset.
func newPostgresFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	dsn := os.Getenv("CHECKIN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CHECKIN_TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	return newFixtureOn(t, db, opts...)
}

func newFixtureOn(t *testing.T, db *gorm.DB, opts ...Option) *fixture {
	t.Helper()

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, database.Migrate(db,
		&auth.User{}, &workshop.Workshop{}, &CheckIn{}, &auditlog.AuditLog{}, &outbox.Event{},
	))

	f := &fixture{
		t:       t,
		db:      db,
		clock:   &fakeClock{t: time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC)},
		users:   auth.NewRepository(db),
		events:  outbox.NewRepository(db),
		metrics: metrics.New(),
	}

	log := sl.Discard()
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	workshops := workshop.NewRepository(db)

	f.store = workshop.NewService(log, workshops, auditSvc, workshop.WithClock(f.clock.Now))
	engineOpts := append([]Option{
		WithClock(f.clock.Now),
		WithEvents(f.events),
		WithMetrics(f.metrics),
	}, opts...)
	f.engine = NewEngine(log, NewRepository(db), workshops, auditSvc, engineOpts...)

	f.admin = auditlog.Actor{UserID: f.user(auth.RoleAdmin).UserID, IP: "127.0.0.1"}
	return f
}

func (f *fixture) user(role auth.Role) auditlog.Actor {
	f.t.Helper()
	u := &auth.User{ID: gofakeit.UUID(), Email: gofakeit.Email(), Role: role}
	require.NoError(f.t, f.users.Create(context.Background(), u))
	return auditlog.Actor{UserID: u.ID, IP: "127.0.0.1"}
}

func (f *fixture) workshop(start time.Time, length time.Duration, capacity *int, mutate ...func(*workshop.CreateRequest)) *workshop.Workshop {
	f.t.Helper()
	end := start.Add(length)
	lang := workshop.LanguageEnglish
	req := workshop.CreateRequest{
		EnglishName: gofakeit.LetterN(12),
		Language:    &lang,
		DTStart:     &start,
		DTEnd:       &end,
		Place:       gofakeit.City(),
		Capacity:    capacity,
	}
	for _, m := range mutate {
		m(&req)
	}
	w, err := f.store.Create(context.Background(), f.admin, req)
	require.NoError(f.t, err)
	return w
}

func (f *fixture) count(workshopID uuid.UUID) int {
	f.t.Helper()
	w, err := f.store.Get(context.Background(), workshopID)
	require.NoError(f.t, err)
	return w.CheckedInCount
}

func intPtr(v int) *int { return &v }

func TestCheckInNeverExceedsCapacity(t *testing.T) {
	assertCapacityHolds(t, newFixture(t))
}

// Postgres serialises admissions with SELECT ... FOR UPDATE instead of the
// SQLite database write lock.
func TestCheckInNeverExceedsCapacityPostgres(t *testing.T) {
	assertCapacityHolds(t, newPostgresFixture(t))
}

func assertCapacityHolds(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(3))

	const attempts = 10
	actors := make([]auditlog.Actor, attempts)
	for i := range actors {
		actors[i] = f.user(auth.RoleUser)
	}

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, attempts)
	)
	for i := range actors {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = f.engine.CheckIn(ctx, actors[i], w.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var admitted, full int
	for _, err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, apperr.ErrNoPlaces):
			full++
		default:
			t.Fatalf("unexpected result: %v", err)
		}
	}
	assert.Equal(t, 3, admitted)
	assert.Equal(t, 7, full)

	got, err := f.store.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CheckedInCount)
	require.NotNil(t, got.RemainPlaces)
	assert.Equal(t, 0, *got.RemainPlaces)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.CheckinResults.WithLabelValues(opCheckIn, string(apperr.Success))))
	assert.Equal(t, 7.0, testutil.ToFloat64(f.metrics.CheckinResults.WithLabelValues(opCheckIn, string(apperr.NoPlaces))))
}

func TestCheckInDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(5))
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u, w.ID))
	err := f.engine.CheckIn(ctx, u, w.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyCheckedIn)
	assert.Equal(t, 1, f.count(w.ID))
}

func TestCheckInCheckOutRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(5))
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u, w.ID))

	checkedIn, err := f.engine.IsCheckedIn(ctx, u.UserID, w.ID)
	require.NoError(t, err)
	assert.True(t, checkedIn)

	mine, err := f.engine.CheckedInWorkshops(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, w.ID, mine[0].ID)
	assert.Equal(t, 1, mine[0].CheckedInCount)
	require.NotNil(t, mine[0].RemainPlaces)
	assert.Equal(t, 4, *mine[0].RemainPlaces)

	roster, err := f.engine.CheckedInUsers(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, u.UserID, roster[0].ID)

	require.NoError(t, f.engine.CheckOut(ctx, u, w.ID))

	checkedIn, err = f.engine.IsCheckedIn(ctx, u.UserID, w.ID)
	require.NoError(t, err)
	assert.False(t, checkedIn)
	assert.Equal(t, 0, f.count(w.ID))

	err = f.engine.CheckOut(ctx, u, w.ID)
	assert.ErrorIs(t, err, apperr.ErrCheckInDoesNotExist)

	events, err := f.events.NewEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	types := []string{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []string{outbox.TypeCheckinCreated, outbox.TypeCheckinDeleted}, types)
}

func TestCheckInOverlapStrict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := f.clock.Now().Add(time.Hour)

	a := f.workshop(base, time.Hour, nil)                          // [10:00, 11:00]
	b := f.workshop(base.Add(30*time.Minute), 90*time.Minute, nil) // [10:30, 12:00]
	c := f.workshop(base.Add(time.Hour), time.Hour, nil)           // [11:00, 12:00]
	d := f.workshop(base.Add(2*time.Hour), time.Hour, nil)         // [12:00, 13:00]
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u, a.ID))
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, b.ID), apperr.ErrOverlappingWorkshops)
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, c.ID), apperr.ErrOverlappingWorkshops, "touching intervals overlap under the inclusive rule")
	assert.NoError(t, f.engine.CheckIn(ctx, u, d.ID))

	other := f.user(auth.RoleUser)
	assert.NoError(t, f.engine.CheckIn(ctx, other, b.ID), "overlap is per user")
}

func TestCheckInOverlapTolerance(t *testing.T) {
	f := newFixture(t, WithOverlapTolerance(time.Minute))
	ctx := context.Background()
	base := f.clock.Now().Add(3 * time.Hour)

	a := f.workshop(base, time.Hour, nil)
	b := f.workshop(base.Add(30*time.Minute), 90*time.Minute, nil)
	c := f.workshop(base.Add(time.Hour), time.Hour, nil)
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u, a.ID))
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, b.ID), apperr.ErrOverlappingWorkshops)
	assert.NoError(t, f.engine.CheckIn(ctx, u, c.ID))
}

func TestCapacityCannotShrinkBelowCheckins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(3))

	require.NoError(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID))
	require.NoError(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID))

	_, err := f.store.Update(ctx, f.admin, w.ID, workshop.UpdateRequest{Capacity: intPtr(1)})
	assert.ErrorIs(t, err, apperr.ErrInvalidCapacityForUpdate)

	updated, err := f.store.Update(ctx, f.admin, w.ID, workshop.UpdateRequest{Capacity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.Capacity)
	assert.Equal(t, 0, *updated.RemainPlaces)

	assert.ErrorIs(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID), apperr.ErrNoPlaces)
}

func TestCheckInTimeGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()
	u := f.user(auth.RoleUser)

	started := f.workshop(now.Add(-30*time.Minute), time.Hour, nil)
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, started.ID), apperr.ErrTimeIsOver)

	notYetOpen := f.workshop(now.Add(48*time.Hour), time.Hour, nil)
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, notYetOpen.ID), apperr.ErrNotRegistrable)

	f.clock.Set(now.Add(25 * time.Hour))
	assert.NoError(t, f.engine.CheckIn(ctx, u, notYetOpen.ID))

	f.clock.Set(now.Add(49*time.Hour + time.Minute))
	late := f.user(auth.RoleUser)
	assert.ErrorIs(t, f.engine.CheckIn(ctx, late, notYetOpen.ID), apperr.ErrTimeIsOver)
}

func TestCheckInRejectsWorkshopsOutsideSystemCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.clock.Now().Add(2 * time.Hour)
	u := f.user(auth.RoleUser)

	byLink := f.workshop(start, time.Hour, nil, func(r *workshop.CreateRequest) {
		link := "https://forms.example.com/signup"
		r.CheckInType = workshop.CheckInByLink
		r.CheckInLink = &link
	})
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, byLink.ID), apperr.ErrNotRegistrable)

	draft := f.workshop(start, time.Hour, nil, func(r *workshop.CreateRequest) { r.IsDraft = true })
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, draft.ID), apperr.ErrNotRegistrable)
}

func TestCheckInInactiveAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(0))
	u := f.user(auth.RoleUser)

	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, w.ID), apperr.ErrNoPlaces)

	_, err := f.store.SetActive(ctx, f.admin, w.ID, false)
	require.NoError(t, err)
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, w.ID), apperr.ErrNotActive)

	missing := uuid.New()
	assert.ErrorIs(t, f.engine.CheckIn(ctx, u, missing), apperr.ErrWorkshopDoesNotExist)
	assert.ErrorIs(t, f.engine.CheckOut(ctx, u, missing), apperr.ErrWorkshopDoesNotExist)
	_, err = f.engine.CheckedInUsers(ctx, missing)
	assert.ErrorIs(t, err, apperr.ErrWorkshopDoesNotExist)
}

func TestCheckInUnknownUser(t *testing.T) {
	f := newFixture(t)
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, nil)

	err := f.engine.CheckIn(context.Background(), auditlog.Actor{UserID: gofakeit.UUID()}, w.ID)
	code, ok := apperr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ValidationError, code)
}

func TestUnlimitedCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID))
	}

	got, err := f.store.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CheckedInCount)
	assert.Nil(t, got.RemainPlaces)
}

func TestActivationKeepsCheckins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(4))
	require.NoError(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID))

	off, err := f.store.SetActive(ctx, f.admin, w.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.Equal(t, 1, off.CheckedInCount)

	on, err := f.store.SetActive(ctx, f.admin, w.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	assert.Equal(t, 1, on.CheckedInCount)
	assert.Equal(t, 3, *on.RemainPlaces)
}

func TestDeleteWorkshopCascadesCheckins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, nil)
	keep := f.workshop(f.clock.Now().Add(6*time.Hour), time.Hour, nil)
	u1, u2 := f.user(auth.RoleUser), f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u1, w.ID))
	require.NoError(t, f.engine.CheckIn(ctx, u2, w.ID))
	require.NoError(t, f.engine.CheckIn(ctx, u1, keep.ID))

	require.NoError(t, f.store.Delete(ctx, f.admin, w.ID))

	var rows int64
	require.NoError(t, f.db.Model(&CheckIn{}).Where("workshop_id = ?", w.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	mine, err := f.engine.CheckedInWorkshops(ctx, u1.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, keep.ID, mine[0].ID)

	_, err = f.store.Get(ctx, w.ID)
	assert.ErrorIs(t, err, apperr.ErrWorkshopDoesNotExist)
	assert.ErrorIs(t, f.store.Delete(ctx, f.admin, w.ID), apperr.ErrWorkshopDoesNotExist)
}

func TestDeleteUserCascadesCheckins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(2))
	u := f.user(auth.RoleUser)
	require.NoError(t, f.engine.CheckIn(ctx, u, w.ID))

	require.NoError(t, f.db.Where("id = ?", u.UserID).Delete(&auth.User{}).Error)
	assert.Equal(t, 0, f.count(w.ID))
}

func TestCheckInWritesAuditLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(1))
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(ctx, u, w.ID))
	require.Error(t, f.engine.CheckIn(ctx, f.user(auth.RoleUser), w.ID))

	var logs []auditlog.AuditLog
	require.NoError(t, f.db.Where("action = ?", auditlog.ActionCheckIn).Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, auditlog.StatusSuccess, logs[0].Status)
	assert.Equal(t, auditlog.StatusFailure, logs[1].Status)
	assert.Contains(t, logs[1].Details, string(apperr.NoPlaces))
}

// flakyEvents fails Add while broken is set, optionally cancelling the
// request first.
type flakyEvents struct {
	mu     sync.Mutex
	inner  EventWriter
	broken bool
	cancel context.CancelFunc
}

func (w *flakyEvents) Add(ctx context.Context, tx *gorm.DB, eventType string, payload any) error {
	w.mu.Lock()
	broken, cancel := w.broken, w.cancel
	w.mu.Unlock()
	if !broken {
		return w.inner.Add(ctx, tx, eventType, payload)
	}
	if cancel != nil {
		cancel()
	}
	return errors.New("outbox write failed")
}

func (w *flakyEvents) set(broken bool, cancel context.CancelFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.broken = broken
	w.cancel = cancel
}

func TestFailedCheckInLeavesNoState(t *testing.T) {
	writer := &flakyEvents{}
	f := newFixture(t, WithEvents(writer))
	writer.inner = f.events
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(1))
	u := f.user(auth.RoleUser)

	t.Run("failing event write", func(t *testing.T) {
		writer.set(true, nil)
		err := f.engine.CheckIn(context.Background(), u, w.ID)
		require.Error(t, err)
		assert.False(t, apperr.IsOutcome(err))
	})

	t.Run("cancelled mid transaction", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		writer.set(true, cancel)
		assert.Error(t, f.engine.CheckIn(ctx, u, w.ID))
	})

	ok, err := f.engine.IsCheckedIn(context.Background(), u.UserID, w.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, f.count(w.ID))

	events, err := f.events.NewEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	// The single place is still free once writes succeed again.
	writer.set(false, nil)
	require.NoError(t, f.engine.CheckIn(context.Background(), u, w.ID))
	assert.Equal(t, 1, f.count(w.ID))
}

func TestFailedCheckOutLeavesNoState(t *testing.T) {
	writer := &flakyEvents{}
	f := newFixture(t, WithEvents(writer))
	writer.inner = f.events
	w := f.workshop(f.clock.Now().Add(2*time.Hour), time.Hour, intPtr(3))
	u := f.user(auth.RoleUser)

	require.NoError(t, f.engine.CheckIn(context.Background(), u, w.ID))

	writer.set(true, nil)
	assert.Error(t, f.engine.CheckOut(context.Background(), u, w.ID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	writer.set(true, cancel)
	assert.Error(t, f.engine.CheckOut(ctx, u, w.ID))

	ok, err := f.engine.IsCheckedIn(context.Background(), u.UserID, w.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.count(w.ID))

	events, err := f.events.NewEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, outbox.TypeCheckinCreated, events[0].Type)
}
