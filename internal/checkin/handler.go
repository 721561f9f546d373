package checkin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/sharath018/workshop-checkin-backend/middleware"
)

type Handler struct {
	Engine *Engine
}

func NewHandler(e *Engine) *Handler {
	return &Handler{Engine: e}
}

// ===========================
// ✅ Check in - POST /workshops/:id/checkin
// @Summary Check in to a workshop
// @Tags Checkins
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/workshops/{id}/checkin [post]
func (h *Handler) CheckIn(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}

	actor := auditlog.Actor{UserID: identity.UserID, IP: middleware.GetIPFromContext(c)}
	if err := h.Engine.CheckIn(c.Request.Context(), actor, id); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Success})
}

// ===========================
// ↩️ Check out - POST /workshops/:id/checkout
// @Summary Check out of a workshop
// @Tags Checkins
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id}/checkout [post]
func (h *Handler) CheckOut(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}

	actor := auditlog.Actor{UserID: identity.UserID, IP: middleware.GetIPFromContext(c)}
	if err := h.Engine.CheckOut(c.Request.Context(), actor, id); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Success})
}

// ===========================
// 🔍 Check-in status - GET /workshops/:id/checkin
// @Summary Whether the caller is checked in
// @Tags Checkins
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]bool
// @Router /api/v1/workshops/{id}/checkin [get]
func (h *Handler) Status(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}

	checkedIn, err := h.Engine.IsCheckedIn(c.Request.Context(), identity.UserID, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checked_in": checkedIn})
}

// ===========================
// 📄 My checkins - GET /users/me/checkins
// @Summary Workshops the caller is checked in to
// @Tags Checkins
// @Produce json
// @Success 200 {array} workshop.Workshop
// @Router /api/v1/users/me/checkins [get]
func (h *Handler) MyCheckins(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}

	workshops, err := h.Engine.CheckedInWorkshops(c.Request.Context(), identity.UserID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if workshops == nil {
		workshops = []workshop.Workshop{}
	}

	c.JSON(http.StatusOK, workshops)
}

// ===========================
// 👥 Workshop roster - GET /workshops/:id/checkins
// @Summary Users checked in to a workshop
// @Tags Checkins
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {array} Registrant
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id}/checkins [get]
func (h *Handler) WorkshopCheckins(c *gin.Context) {
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}

	users, err := h.Engine.CheckedInUsers(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if users == nil {
		users = []Registrant{}
	}

	c.JSON(http.StatusOK, users)
}
