package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/xuri/excelize/v2"
)

// RosterExporter renders the users checked in to a workshop.
type RosterExporter interface {
	ExportRoster(format string, w *workshop.Workshop, rows []checkin.Registrant) ([]byte, string, string, error)
}

type rosterExporter struct {
	now func() time.Time
}

func NewRosterExporter(now func() time.Time) RosterExporter {
	if now == nil {
		now = time.Now
	}
	return &rosterExporter{now: now}
}

var rosterHeaders = []string{"User ID", "Email", "Telegram", "Role", "Checked In At"}

// ExportRoster returns data, filename and content type.
func (e *rosterExporter) ExportRoster(format string, w *workshop.Workshop, rows []checkin.Registrant) ([]byte, string, string, error) {
	timestamp := e.now().Format("20060102_150405")
	base := fmt.Sprintf("roster_%s_%s", w.ID.String()[:8], timestamp)

	switch format {
	case FormatExcel:
		data, err := e.exportRosterExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".xlsx", contentTypeExcel, nil

	case FormatCSV:
		data, err := e.exportRosterCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".csv", contentTypeCSV, nil

	case FormatPDF:
		data, err := e.exportRosterPDF(w, rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".pdf", contentTypePDF, nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for roster: %s", format)
	}
}

func rosterRecord(r checkin.Registrant) []string {
	telegram := ""
	if r.TelegramUsername != nil {
		telegram = *r.TelegramUsername
	}
	return []string{
		r.ID,
		r.Email,
		telegram,
		string(r.Role),
		r.CheckedInAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func (e *rosterExporter) exportRosterCSV(rows []checkin.Registrant) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(rosterHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := writer.Write(rosterRecord(r)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *rosterExporter) exportRosterExcel(rows []checkin.Registrant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range rosterHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		for j, value := range rosterRecord(r) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+j, row), value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *rosterExporter) exportRosterPDF(w *workshop.Workshop, rows []checkin.Registrant) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(w.EnglishName))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(scheduleLine(w)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{70, 70, 45, 25, 45}
	for i, header := range rosterHeaders {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		for i, value := range rosterRecord(r) {
			pdf.CellFormat(widths[i], 6, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scheduleLine(w *workshop.Workshop) string {
	parts := make([]string, 0, 2)
	if w.DTStart != nil && w.DTEnd != nil {
		parts = append(parts, fmt.Sprintf("%s - %s UTC",
			w.DTStart.UTC().Format("2006-01-02 15:04"), w.DTEnd.UTC().Format("15:04")))
	}
	if w.Place != "" {
		parts = append(parts, w.Place)
	}
	return strings.Join(parts, ", ")
}
