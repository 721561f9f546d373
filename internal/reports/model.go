package reports

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

const (
	contentTypeCSV   = "text/csv"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
)

// ImportResult mirrors a bulk upload: every row is counted, failed rows carry a reason.
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	CreatedIDs   []string `json:"created_ids,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// importColumns is the header expected in the first row of an import sheet.
var importColumns = []string{
	"english_name", "russian_name", "english_description", "russian_description",
	"language", "dtstart", "dtend", "place", "capacity", "check_in_type", "check_in_link",
}
