package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/sharath018/workshop-checkin-backend/database"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	router    *gin.Engine
	workshops *workshop.Service
	engine    *checkin.Engine
	users     auth.Repository
	admin     auditlog.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, database.Migrate(db, &auth.User{}, &workshop.Workshop{}, &checkin.CheckIn{}, &auditlog.AuditLog{}))

	now := func() time.Time { return fixedNow }
	log := sl.Discard()
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	repo := workshop.NewRepository(db)

	e := &env{
		workshops: workshop.NewService(log, repo, auditSvc, workshop.WithClock(now)),
		users:     auth.NewRepository(db),
	}
	e.engine = checkin.NewEngine(log, checkin.NewRepository(db), repo, auditSvc, checkin.WithClock(now))
	e.admin = e.user(t, auth.RoleAdmin)

	h := NewHandler(e.workshops, e.engine, NewRosterExporter(now), "https://workshops.example.org")
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		auth.SetIdentity(c, auth.Identity{UserID: c.GetHeader("X-Test-User"), Role: auth.Role(c.GetHeader("X-Test-Role"))})
		c.Next()
	})
	api.GET("/workshops/:id/checkins/export", h.ExportRoster)
	api.GET("/workshops/:id/qr", h.QRCode)
	api.POST("/workshops/import", h.Import)
	api.GET("/workshops/import/template", h.ImportTemplate)
	e.router = r
	return e
}

func (e *env) user(t *testing.T, role auth.Role) auditlog.Actor {
	t.Helper()
	u := &auth.User{ID: gofakeit.UUID(), Email: gofakeit.Email(), Role: role}
	require.NoError(t, e.users.Create(context.Background(), u))
	return auditlog.Actor{UserID: u.ID}
}

func (e *env) do(req *http.Request, actor auditlog.Actor, role auth.Role) *httptest.ResponseRecorder {
	req.Header.Set("X-Test-User", actor.UserID)
	req.Header.Set("X-Test-Role", string(role))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHandlerExportAndQR(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	start := fixedNow.Add(6 * time.Hour)
	end := start.Add(time.Hour)
	lang := workshop.LanguageEnglish
	w, err := e.workshops.Create(ctx, e.admin, workshop.CreateRequest{
		EnglishName: "Roster test",
		Language:    &lang,
		DTStart:     &start,
		DTEnd:       &end,
	})
	require.NoError(t, err)

	u := e.user(t, auth.RoleUser)
	require.NoError(t, e.engine.CheckIn(ctx, u, w.ID))

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/"+w.ID.String()+"/checkins/export", nil), e.admin, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=roster_")
	assert.Contains(t, rec.Body.String(), u.UserID)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/"+w.ID.String()+"/checkins/export?format=xml", nil), e.admin, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/"+gofakeit.UUID()+"/checkins/export", nil), e.admin, auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/"+w.ID.String()+"/qr?size=128", nil), u, auth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/"+w.ID.String()+"/qr?size=-1", nil), u, auth.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerImport(t *testing.T) {
	e := newEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "batch.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("english_name,capacity\nOne,5\nTwo,x\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workshops/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := e.do(req, e.admin, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailedCount)

	all, err := e.workshops.GetAll(context.Background(), workshop.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDraft)

	rec = e.do(httptest.NewRequest(http.MethodPost, "/api/v1/workshops/import", nil), e.admin, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/workshops/import/template", nil), e.admin, auth.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}
