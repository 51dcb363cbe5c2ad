package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/staypulse/insights-engine/internal/models"
)

const (
	summarySheet = "Resumo"
	groupsSheet  = "Problemas"
)

// Report is an XLSX rendering of one insights response, suitable for
// download by dashboard users.
type Report struct {
	ID   string
	file *excelize.File
}

// NewReport builds a two-sheet workbook from the aggregated groups and the
// executive summary. Each report gets a fresh identifier for download
// bookkeeping.
func NewReport(insights models.ProblemInsights) (*Report, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if _, err := f.NewSheet(groupsSheet); err != nil {
		return nil, fmt.Errorf("create groups sheet: %w", err)
	}

	if err := writeSummary(f, insights.Summary); err != nil {
		return nil, err
	}
	if err := writeGroups(f, insights.Groups); err != nil {
		return nil, err
	}

	return &Report{ID: uuid.NewString(), file: f}, nil
}

// WriteTo streams the workbook to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	return r.file.WriteTo(w)
}

// Close releases workbook resources.
func (r *Report) Close() error {
	return r.file.Close()
}

// Filename suggests a download name derived from the report identifier.
func (r *Report) Filename() string {
	return fmt.Sprintf("insights-%s.xlsx", r.ID)
}

func writeSummary(f *excelize.File, summary models.Summary) error {
	rows := [][]any{
		{"Total de problemas", summary.TotalProblems},
		{"Problemas críticos", summary.CriticalProblems},
		{"Nota média", summary.AverageRating},
		{"Hóspedes únicos", summary.UniqueAuthors},
		{"Com sugestões", summary.WithSuggestions},
		{"Com detalhes", summary.WithDetails},
		{"Registros estruturados", summary.DataSourcesCount.AllProblems},
		{"Registros legados", summary.DataSourcesCount.Legacy},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeGroups(f *excelize.File, groups []models.GroupAggregate) error {
	header := []any{"Grupo", "Ocorrências", "Nota média", "% do total", "Departamentos", "Última ocorrência"}
	if err := f.SetSheetRow(groupsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, group := range groups {
		lastSeen := ""
		if !group.LastSeen.IsZero() {
			lastSeen = group.LastSeen.Format("2006-01-02")
		}
		row := []any{
			group.Key,
			group.Count,
			group.AverageRating,
			group.Percentage,
			strings.Join(group.Departments, "; "),
			lastSeen,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(groupsSheet, cell, &row); err != nil {
			return fmt.Errorf("write group row: %w", err)
		}
	}
	return nil
}
