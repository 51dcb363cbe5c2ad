package engine

import "github.com/staypulse/insights-engine/internal/models"

// Summarize derives whole-collection statistics from flattened occurrences.
// Every field of the zero Summary is a valid answer for empty input; the
// average never divides by zero.
func Summarize(occurrences []models.ProblemOccurrence) models.Summary {
	summary := models.Summary{TotalProblems: len(occurrences)}
	if len(occurrences) == 0 {
		return summary
	}

	authors := make(map[string]struct{})
	totalRating := 0
	for _, occ := range occurrences {
		totalRating += occ.Rating
		if occ.Rating <= 2 {
			summary.CriticalProblems++
		}
		if occ.Author != "" {
			authors[occ.Author] = struct{}{}
		}
		if occ.Suggestion != "" {
			summary.WithSuggestions++
		}
		if occ.HasDetail {
			summary.WithDetails++
		}
		switch occ.Origin {
		case models.OriginAllProblems:
			summary.DataSourcesCount.AllProblems++
		case models.OriginLegacy:
			summary.DataSourcesCount.Legacy++
		}
	}

	summary.AverageRating = float64(totalRating) / float64(len(occurrences))
	summary.UniqueAuthors = len(authors)
	return summary
}
