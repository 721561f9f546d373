package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

func sampleWorkshop() *workshop.Workshop {
	start := fixedNow.Add(24 * time.Hour)
	end := start.Add(90 * time.Minute)
	return &workshop.Workshop{
		ID:          uuid.New(),
		EnglishName: "Intro to Go",
		DTStart:     &start,
		DTEnd:       &end,
		Place:       "Room 108",
		CheckInType: workshop.CheckInSystem,
	}
}

func sampleRoster(n int) []checkin.Registrant {
	rows := make([]checkin.Registrant, n)
	for i := range rows {
		tg := gofakeit.Username()
		rows[i] = checkin.Registrant{
			User: auth.User{
				ID:               uuid.NewString(),
				Email:            gofakeit.Email(),
				TelegramUsername: &tg,
				Role:             auth.RoleUser,
			},
			CheckedInAt: fixedNow.Add(time.Duration(i) * time.Minute),
		}
	}
	return rows
}

func TestExportRosterCSV(t *testing.T) {
	e := NewRosterExporter(func() time.Time { return fixedNow })
	w := sampleWorkshop()
	rows := sampleRoster(3)

	data, fname, mime, err := e.ExportRoster(FormatCSV, w, rows)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", mime)
	assert.True(t, strings.HasSuffix(fname, "_20300310_090000.csv"), fname)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, rosterHeaders, records[0])
	assert.Equal(t, rows[0].ID, records[1][0])
	assert.Equal(t, rows[2].Email, records[3][1])
	assert.Equal(t, "2030-03-10 09:01:00", records[2][4])
}

func TestExportRosterExcel(t *testing.T) {
	e := NewRosterExporter(func() time.Time { return fixedNow })
	rows := sampleRoster(2)

	data, fname, _, err := e.ExportRoster(FormatExcel, sampleWorkshop(), rows)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fname, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Roster")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "User ID", got[0][0])
	assert.Equal(t, rows[1].Email, got[2][1])
}

func TestExportRosterPDF(t *testing.T) {
	e := NewRosterExporter(nil)

	data, _, mime, err := e.ExportRoster(FormatPDF, sampleWorkshop(), sampleRoster(5))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportRosterUnknownFormat(t *testing.T) {
	_, _, _, err := NewRosterExporter(nil).ExportRoster("docx", sampleWorkshop(), nil)
	assert.Error(t, err)
}

type fakeCreator struct {
	got []workshop.CreateRequest
}

func (f *fakeCreator) Create(_ context.Context, _ auditlog.Actor, req workshop.CreateRequest) (*workshop.Workshop, error) {
	if req.EnglishName == "" {
		return nil, errors.New("english_name is required")
	}
	f.got = append(f.got, req)
	return &workshop.Workshop{ID: uuid.New(), EnglishName: req.EnglishName}, nil
}

func TestImportCSV(t *testing.T) {
	sheet := strings.Join([]string{
		"english_name,language,dtstart,dtend,capacity,check_in_type,place",
		"Go basics,english,2030-04-01 10:00,2030-04-01 11:30,20,on_innohassle,Room 1",
		",english,,,,,",
		"Bad capacity,english,,,lots,,",
		"Bad time,english,tomorrow,,,,",
		"",
		"Minimal,,,,,,",
	}, "\n")

	creator := &fakeCreator{}
	res, err := NewImporter(creator).Import(context.Background(), auditlog.Actor{UserID: "admin"}, "workshops.csv", strings.NewReader(sheet))
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalRows)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 3, res.FailedCount)
	assert.Len(t, res.CreatedIDs, 2)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "row 3")
	assert.Contains(t, res.Errors[1], "capacity")
	assert.Contains(t, res.Errors[2], "dtstart")

	require.Len(t, creator.got, 2)
	first := creator.got[0]
	assert.True(t, first.IsDraft)
	require.NotNil(t, first.Capacity)
	assert.Equal(t, 20, *first.Capacity)
	require.NotNil(t, first.DTStart)
	assert.Equal(t, time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC), *first.DTStart)
	assert.Equal(t, workshop.CheckInSystem, first.CheckInType)
	require.NotNil(t, first.Language)
	assert.Equal(t, workshop.LanguageEnglish, *first.Language)
	assert.Nil(t, creator.got[1].Capacity)
}

func TestImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"English_Name", "dtstart"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"From sheet", "2030-05-01T08:00:00Z"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	creator := &fakeCreator{}
	res, err := NewImporter(creator).Import(context.Background(), auditlog.Actor{}, "upload.XLSX", buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, "From sheet", creator.got[0].EnglishName)
}

func TestImportRejectsBadFiles(t *testing.T) {
	imp := NewImporter(&fakeCreator{})

	_, err := imp.Import(context.Background(), auditlog.Actor{}, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = imp.Import(context.Background(), auditlog.Actor{}, "a.csv", strings.NewReader("name,place\nx,y\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = imp.Import(context.Background(), auditlog.Actor{}, "a.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestImportTemplateHasHeader(t *testing.T) {
	data, err := ImportTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Workshops")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, importColumns, rows[0])
}

func TestCheckInTarget(t *testing.T) {
	w := sampleWorkshop()
	assert.Equal(t, "https://example.org/workshops/"+w.ID.String(), CheckInTarget("https://example.org/", w))

	link := "https://forms.example.org/abc"
	w.CheckInType = workshop.CheckInByLink
	w.CheckInLink = &link
	assert.Equal(t, link, CheckInTarget("https://example.org", w))
}

func TestQRCode(t *testing.T) {
	png, err := QRCode("https://example.org/workshops/1", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	big, err := QRCode("x", 5000)
	require.NoError(t, err)
	assert.NotEmpty(t, big)
}
