package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/staypulse/insights-engine/internal/models"
)

func sampleInsights() models.ProblemInsights {
	return models.ProblemInsights{
		Groups: []models.GroupAggregate{
			{
				Key:           "Wi-Fi lento",
				Count:         3,
				AverageRating: 2.0,
				Percentage:    60,
				Departments:   []string{"TI"},
				LastSeen:      time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
			},
			{
				Key:           "Ar-condicionado",
				Count:         2,
				AverageRating: 3.5,
				Percentage:    40,
				Departments:   []string{"Manutenção"},
			},
		},
		Summary: models.Summary{
			TotalProblems:    5,
			CriticalProblems: 3,
			AverageRating:    2.6,
			UniqueAuthors:    4,
		},
	}
}

func TestNewReportRoundTrip(t *testing.T) {
	report, err := NewReport(sampleInsights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer report.Close()

	if report.ID == "" {
		t.Fatal("expected a report ID")
	}
	if !strings.HasSuffix(report.Filename(), ".xlsx") {
		t.Fatalf("unexpected filename: %s", report.Filename())
	}

	var buf bytes.Buffer
	if _, err := report.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %v", sheets)
	}

	total, err := f.GetCellValue("Resumo", "B1")
	if err != nil {
		t.Fatalf("read summary cell: %v", err)
	}
	if total != "5" {
		t.Fatalf("unexpected total problems cell: %q", total)
	}

	rows, err := f.GetRows("Problemas")
	if err != nil {
		t.Fatalf("read group rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 groups, got %d rows", len(rows))
	}
	if rows[1][0] != "Wi-Fi lento" {
		t.Fatalf("unexpected first group: %v", rows[1])
	}
	if len(rows[2]) > 5 && rows[2][5] != "" {
		t.Fatalf("expected empty last-seen for undated group, got %v", rows[2])
	}
}

func TestNewReportUniqueIDs(t *testing.T) {
	a, err := NewReport(sampleInsights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()
	b, err := NewReport(sampleInsights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()
	if a.ID == b.ID {
		t.Fatalf("expected distinct report IDs, both %s", a.ID)
	}
}
