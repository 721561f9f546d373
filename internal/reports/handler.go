package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/sharath018/workshop-checkin-backend/middleware"
)

type Handler struct {
	workshops *workshop.Service
	engine    *checkin.Engine
	exporter  RosterExporter
	importer  *Importer
	baseURL   string
}

func NewHandler(workshops *workshop.Service, engine *checkin.Engine, exporter RosterExporter, baseURL string) *Handler {
	return &Handler{
		workshops: workshops,
		engine:    engine,
		exporter:  exporter,
		importer:  NewImporter(workshops),
		baseURL:   baseURL,
	}
}

// ===========================
// 📤 Roster export - GET /workshops/:id/checkins/export?format=csv|excel|pdf
// @Summary Download the users checked in to a workshop
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Workshop ID"
// @Param format query string false "csv, excel or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id}/checkins/export [get]
func (h *Handler) ExportRoster(c *gin.Context) {
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", FormatCSV)
	if format != FormatCSV && format != FormatExcel && format != FormatPDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv, excel or pdf"})
		return
	}

	ctx := c.Request.Context()
	w, err := h.workshops.Get(ctx, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	rows, err := h.engine.CheckedInUsers(ctx, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	data, fname, mime, err := h.exporter.ExportRoster(format, w, rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}

// ===========================
// 🔳 Check-in QR code - GET /workshops/:id/qr?size=
// @Summary PNG QR code pointing at the workshop check-in
// @Tags Reports
// @Produce png
// @Param id path string true "Workshop ID"
// @Param size query int false "Edge length in pixels"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /api/v1/workshops/{id}/qr [get]
func (h *Handler) QRCode(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}
	id, ok := workshop.ParseID(c)
	if !ok {
		return
	}

	size := DefaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a positive integer"})
			return
		}
		size = n
	}

	w, err := h.workshops.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if w.IsDraft && !identity.IsAdmin() {
		apperr.Respond(c, apperr.ErrWorkshopDoesNotExist)
		return
	}

	png, err := QRCode(CheckInTarget(h.baseURL, w), size)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ===========================
// 📥 Bulk import - POST /workshops/import (multipart "file")
// @Summary Create draft workshops from a CSV or XLSX sheet
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Sheet with an english_name header"
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/workshops/import [post]
func (h *Handler) Import(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return
	}
	defer f.Close()

	actor := auditlog.Actor{UserID: identity.UserID, IP: middleware.GetIPFromContext(c)}
	result, err := h.importer.Import(c.Request.Context(), actor, file.Filename, f)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFile) || errors.Is(err, ErrMissingHeader) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ===========================
// 📄 Import template - GET /workshops/import/template
// @Summary Empty XLSX with the import header row
// @Tags Reports
// @Produce octet-stream
// @Success 200 {file} file
// @Router /api/v1/workshops/import/template [get]
func (h *Handler) ImportTemplate(c *gin.Context) {
	data, err := ImportTemplate()
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=workshops_import_template.xlsx")
	c.Data(http.StatusOK, contentTypeExcel, data)
}
