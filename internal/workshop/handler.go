package workshop

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 📌 Path helpers
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workshop ID"})
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(c *gin.Context, identity auth.Identity) auditlog.Actor {
	return auditlog.Actor{UserID: identity.UserID, IP: middleware.GetIPFromContext(c)}
}

// ===========================
// 🎯 Create Workshop - POST /workshops
// @Summary Create workshop
// @Tags Workshops
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Workshop"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/workshops [post]
func (h *Handler) Create(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.ValidationError, "message": "invalid input: " + err.Error()})
		return
	}

	w, err := h.Service.Create(c.Request.Context(), actorFrom(c, identity), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": apperr.Created, "workshop": w})
}

// ===========================
// 🔍 Get Workshop - GET /workshops/:id
// @Summary Get workshop
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} Workshop
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	w, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if w.IsDraft && !identity.IsAdmin() {
		apperr.Respond(c, apperr.ErrWorkshopDoesNotExist)
		return
	}

	c.JSON(http.StatusOK, w)
}

// ===========================
// 📄 List Workshops - GET /workshops?limit=
// @Summary List workshops
// @Tags Workshops
// @Produce json
// @Param limit query int false "Maximum number of workshops"
// @Success 200 {array} Workshop
// @Router /api/v1/workshops [get]
func (h *Handler) List(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}

	filter := ListFilter{VisibleOnly: !identity.IsAdmin()}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	workshops, err := h.Service.GetAll(c.Request.Context(), filter)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if workshops == nil {
		workshops = []Workshop{}
	}

	c.JSON(http.StatusOK, workshops)
}

// ===========================
// 🛠 Update Workshop - PATCH /workshops/:id
// @Summary Update workshop (partial)
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param body body UpdateRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Router /api/v1/workshops/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var patch UpdateRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.ValidationError, "message": "invalid input: " + err.Error()})
		return
	}

	w, err := h.Service.Update(c.Request.Context(), actorFrom(c, identity), id, patch)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Updated, "workshop": w})
}

// ===========================
// 🔁 Activate - POST /workshops/:id/activate
// @Summary Activate workshop
// @Tags Workshops
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/workshops/{id}/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// ===========================
// 🔁 Deactivate - POST /workshops/:id/deactivate
// @Summary Deactivate workshop
// @Tags Workshops
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/workshops/{id}/deactivate [post]
func (h *Handler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	w, err := h.Service.SetActive(c.Request.Context(), actorFrom(c, identity), id, active)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Updated, "workshop": w})
}

type setImageRequest struct {
	ImageFileID string `json:"image_file_id" binding:"max=255"`
}

// ===========================
// 🖼 Set image - PUT /workshops/:id/image
// @Summary Attach image file id
// @Tags Workshops
// @Accept json
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/workshops/{id}/image [put]
func (h *Handler) SetImage(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req setImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.ValidationError, "message": "invalid input: " + err.Error()})
		return
	}

	w, err := h.Service.SetImage(c.Request.Context(), actorFrom(c, identity), id, req.ImageFileID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Updated, "workshop": w})
}

// ===========================
// ❌ Delete Workshop - DELETE /workshops/:id
// @Summary Delete workshop and its checkins
// @Tags Workshops
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), actorFrom(c, identity), id); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": apperr.Deleted})
}
