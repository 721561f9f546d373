package reports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFile = errors.New("only .csv and .xlsx files can be imported")
	ErrMissingHeader   = errors.New("invalid file format or missing header")
)

var importTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// WorkshopCreator is the part of the workshop service the importer needs.
type WorkshopCreator interface {
	Create(ctx context.Context, actor auditlog.Actor, req workshop.CreateRequest) (*workshop.Workshop, error)
}

type Importer struct {
	workshops WorkshopCreator
}

func NewImporter(workshops WorkshopCreator) *Importer {
	return &Importer{workshops: workshops}
}

// Import creates one draft workshop per data row. A bad row never stops the rest.
func (i *Importer) Import(ctx context.Context, actor auditlog.Actor, filename string, r io.Reader) (*ImportResult, error) {
	records, err := readRecords(filename, r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for n, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		result.TotalRows++
		line := n + 2

		req, err := parseRow(record, index)
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		w, err := i.workshops.Create(ctx, actor, req)
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.SuccessCount++
		result.CreatedIDs = append(result.CreatedIDs, w.ID.String())
	}
	return result, nil
}

func readRecords(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true
		reader.FieldsPerRecord = -1
		return reader.ReadAll()

	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrMissingHeader
		}
		return f.GetRows(sheets[0])

	default:
		return nil, ErrUnsupportedFile
	}
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(removeInvisible(name)))] = i
	}
	if _, ok := index["english_name"]; !ok {
		return nil, ErrMissingHeader
	}
	return index, nil
}

func parseRow(record []string, index map[string]int) (workshop.CreateRequest, error) {
	get := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(removeInvisible(record[i]))
	}

	req := workshop.CreateRequest{
		EnglishName:        get("english_name"),
		RussianName:        get("russian_name"),
		EnglishDescription: get("english_description"),
		RussianDescription: get("russian_description"),
		Place:              get("place"),
		CheckInType:        workshop.CheckInType(strings.ToLower(get("check_in_type"))),
		IsDraft:            true,
	}

	if v := get("language"); v != "" {
		lang := workshop.Language(strings.ToLower(v))
		req.Language = &lang
	}
	if v := get("check_in_link"); v != "" {
		req.CheckInLink = &v
	}

	var err error
	if req.DTStart, err = parseTime(get("dtstart")); err != nil {
		return req, fmt.Errorf("dtstart: %w", err)
	}
	if req.DTEnd, err = parseTime(get("dtend")); err != nil {
		return req, fmt.Errorf("dtend: %w", err)
	}

	if v := get("capacity"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("capacity %q is not a number", v)
		}
		req.Capacity = &capacity
	}
	return req, nil
}

// parseTime reads RFC 3339 or a plain "YYYY-MM-DD HH:MM" taken as UTC.
func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", v)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func removeInvisible(str string) string {
	return strings.Map(func(r rune) rune {
		if r == '\u200B' || r == '\uFEFF' {
			return -1
		}
		return r
	}, str)
}

// ImportTemplate is an empty sheet holding only the import header row.
func ImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Workshops"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &importColumns); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
