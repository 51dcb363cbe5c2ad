package engine

import (
	"strings"

	"github.com/staypulse/insights-engine/internal/models"
)

// ExtractOccurrences flattens records into problem occurrences using the
// default normalizer.
func ExtractOccurrences(records []models.FeedbackRecord) []models.ProblemOccurrence {
	return defaultNormalizer.ExtractOccurrences(records)
}

// ExtractOccurrences emits one occurrence per valid problem token. A record
// with a non-empty allProblems list is read from that schema alone; otherwise
// the legacy semicolon-joined problem field is split. A record never feeds
// both branches, so nothing is double counted.
func (n *Normalizer) ExtractOccurrences(records []models.FeedbackRecord) []models.ProblemOccurrence {
	occurrences := make([]models.ProblemOccurrence, 0, len(records))
	for _, rec := range records {
		if len(rec.AllProblems) > 0 {
			occurrences = n.appendStructured(occurrences, rec)
			continue
		}
		occurrences = n.appendLegacy(occurrences, rec)
	}
	return occurrences
}

func (n *Normalizer) appendStructured(dst []models.ProblemOccurrence, rec models.FeedbackRecord) []models.ProblemOccurrence {
	for _, entry := range rec.AllProblems {
		problem := strings.TrimSpace(entry.Problem)
		if problem == "" || !n.IsValidProblem(problem) {
			continue
		}
		if strings.EqualFold(problem, Unidentified) {
			continue
		}
		dst = append(dst, models.ProblemOccurrence{
			Problem:    problem,
			Detail:     strings.TrimSpace(entry.ProblemDetail),
			Department: orUnidentified(entry.Sector),
			Keyword:    keywordOrUnidentified(entry.Keyword),
			Author:     rec.Author,
			Comment:    rec.Comment,
			Date:       rec.Date.Time,
			Rating:     int(rec.Rating),
			Suggestion: strings.TrimSpace(rec.SuggestionSummary),
			HasDetail:  strings.TrimSpace(entry.ProblemDetail) != "",
			Origin:     models.OriginAllProblems,
		})
	}
	return dst
}

func (n *Normalizer) appendLegacy(dst []models.ProblemOccurrence, rec models.FeedbackRecord) []models.ProblemOccurrence {
	for _, token := range n.SplitValidProblems(rec.Problem) {
		dst = append(dst, models.ProblemOccurrence{
			Problem:    token,
			Detail:     strings.TrimSpace(rec.ProblemDetail),
			Department: orUnidentified(rec.Sector),
			Keyword:    keywordOrUnidentified(rec.Keyword),
			Author:     rec.Author,
			Comment:    rec.Comment,
			Date:       rec.Date.Time,
			Rating:     int(rec.Rating),
			Suggestion: strings.TrimSpace(rec.SuggestionSummary),
			HasDetail:  strings.TrimSpace(rec.ProblemDetail) != "",
			Origin:     models.OriginLegacy,
		})
	}
	return dst
}

func orUnidentified(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Unidentified
	}
	return value
}

// keywordOrUnidentified additionally drops keywords that fail the length
// rule, so stray "ok"-style tokens land in the unidentified bucket instead
// of forming their own groups.
func keywordOrUnidentified(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || !IsValidKeyword(value) {
		return Unidentified
	}
	return value
}
