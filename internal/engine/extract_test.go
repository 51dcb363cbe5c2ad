package engine

import (
	"testing"

	"github.com/staypulse/insights-engine/internal/models"
)

func TestExtractOccurrencesStructuredSchemaWins(t *testing.T) {
	rec := record(2, func(r *models.FeedbackRecord) {
		r.Problem = "Legado ignorado"
		r.AllProblems = []models.ProblemEntry{
			{Problem: "Wi-Fi lento", ProblemDetail: "cai toda noite", Sector: "Recepção", Keyword: "internet"},
			{Problem: "Chuveiro frio", Sector: "Manutenção"},
		}
	})

	occs := ExtractOccurrences([]models.FeedbackRecord{rec})
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences from allProblems, got %d", len(occs))
	}
	for _, occ := range occs {
		if occ.Origin != models.OriginAllProblems {
			t.Fatalf("expected allProblems origin, got %s", occ.Origin)
		}
		if occ.Problem == "Legado ignorado" {
			t.Fatalf("legacy field must be ignored when allProblems is populated")
		}
	}
	if occs[0].Department != "Recepção" || occs[0].Keyword != "internet" {
		t.Fatalf("entry sector/keyword not carried: %+v", occs[0])
	}
	if !occs[0].HasDetail || occs[1].HasDetail {
		t.Fatalf("hasDetail flags wrong: %v %v", occs[0].HasDetail, occs[1].HasDetail)
	}
	if occs[1].Keyword != Unidentified {
		t.Fatalf("missing keyword should default to %q, got %q", Unidentified, occs[1].Keyword)
	}
}

func TestExtractOccurrencesLegacyFallback(t *testing.T) {
	rec := record(4, func(r *models.FeedbackRecord) {
		r.Problem = "Wi-Fi lento;Ar-condicionado com defeito"
		r.Sector = "Recepção"
		r.Keyword = "estrutura"
		r.ProblemDetail = "quarto 204"
	})

	occs := ExtractOccurrences([]models.FeedbackRecord{rec})
	if len(occs) != 2 {
		t.Fatalf("expected 2 legacy occurrences, got %d", len(occs))
	}
	for _, occ := range occs {
		if occ.Origin != models.OriginLegacy {
			t.Fatalf("expected legacy origin, got %s", occ.Origin)
		}
		if occ.Department != "Recepção" || occ.Keyword != "estrutura" {
			t.Fatalf("record sector/keyword not carried: %+v", occ)
		}
		if occ.Detail != "quarto 204" || !occ.HasDetail {
			t.Fatalf("problem detail not carried: %+v", occ)
		}
	}
}

func TestExtractOccurrencesSentinelEntryRejected(t *testing.T) {
	rec := record(3, func(r *models.FeedbackRecord) {
		r.AllProblems = []models.ProblemEntry{{Problem: "Vazio"}}
	})
	if occs := ExtractOccurrences([]models.FeedbackRecord{rec}); len(occs) != 0 {
		t.Fatalf("sentinel entry must yield zero occurrences, got %d", len(occs))
	}
}

func TestExtractOccurrencesShortKeywordUnidentified(t *testing.T) {
	records := []models.FeedbackRecord{
		record(2, func(r *models.FeedbackRecord) {
			r.AllProblems = []models.ProblemEntry{{Problem: "Wi-Fi lento", Keyword: "ok"}}
		}),
		record(2, func(r *models.FeedbackRecord) {
			r.Problem = "Chuveiro frio"
			r.Keyword = "-"
		}),
	}

	occs := ExtractOccurrences(records)
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	for _, occ := range occs {
		if occ.Keyword != Unidentified {
			t.Fatalf("short keyword should default to %q, got %q", Unidentified, occ.Keyword)
		}
	}
}

func TestExtractOccurrencesSchemaExclusivity(t *testing.T) {
	// Both schemas populated: allProblems wins, legacy contributes nothing.
	rec := record(3, func(r *models.FeedbackRecord) {
		r.AllProblems = []models.ProblemEntry{{Problem: "Barulho no corredor"}}
		r.Problem = "Wi-Fi lento;Chuveiro frio"
	})
	occs := ExtractOccurrences([]models.FeedbackRecord{rec})
	if len(occs) != 1 {
		t.Fatalf("expected exactly one occurrence, got %d", len(occs))
	}
	if occs[0].Origin != models.OriginAllProblems {
		t.Fatalf("expected allProblems origin, got %s", occs[0].Origin)
	}
}

func TestExtractOccurrencesNoUsableProblem(t *testing.T) {
	records := []models.FeedbackRecord{
		record(5),
		record(5, func(r *models.FeedbackRecord) { r.Problem = "VAZIO" }),
		record(5, func(r *models.FeedbackRecord) { r.AllProblems = []models.ProblemEntry{{Problem: "ok"}} }),
	}
	if occs := ExtractOccurrences(records); len(occs) != 0 {
		t.Fatalf("expected zero occurrences, got %d", len(occs))
	}
}
