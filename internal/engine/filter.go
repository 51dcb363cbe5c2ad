package engine

import (
	"strings"

	"github.com/staypulse/insights-engine/internal/models"
)

// FilterValidRecords drops soft-deleted rows and "not identified" sentinel
// feedbacks that the scraper emits when it cannot attribute a review. Input
// order is preserved.
func FilterValidRecords(records []models.FeedbackRecord) []models.FeedbackRecord {
	valid := make([]models.FeedbackRecord, 0, len(records))
	for _, rec := range records {
		if rec.Deleted {
			continue
		}
		if isUnidentifiedFeedback(rec) {
			continue
		}
		valid = append(valid, rec)
	}
	return valid
}

func isUnidentifiedFeedback(rec models.FeedbackRecord) bool {
	comment := normalizeToken(rec.Comment)
	return comment == "não identificado" || comment == "nao identificado"
}

// FilterRecords returns the subset of records satisfying every active facet of
// the filter state. Facets combine conjunctively; an absent constraint never
// restricts. The result keeps input order and the input slice is untouched.
func FilterRecords(records []models.FeedbackRecord, state models.FilterState) []models.FeedbackRecord {
	filtered := make([]models.FeedbackRecord, 0, len(records))
	for _, rec := range FilterValidRecords(records) {
		if ratingHidden(int(rec.Rating), state.HiddenRatings) {
			continue
		}
		if !withinDateRange(rec, state) {
			continue
		}
		if models.Restricts(state.Sentiment) && !strings.EqualFold(string(rec.Sentiment), state.Sentiment) {
			continue
		}
		if models.Restricts(state.Source) && !strings.EqualFold(rec.Source, state.Source) {
			continue
		}
		if models.Restricts(state.Language) && !strings.EqualFold(rec.Language, state.Language) {
			continue
		}
		if models.Restricts(state.Apartment) && !strings.EqualFold(rec.Apartment, state.Apartment) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

func ratingHidden(rating int, hidden []int) bool {
	for _, h := range hidden {
		if rating == h {
			return true
		}
	}
	return false
}

// withinDateRange applies inclusive bounds; a record without a date passes
// unless a bound is active, in which case it cannot be placed and is dropped.
func withinDateRange(rec models.FeedbackRecord, state models.FilterState) bool {
	if state.Start == nil && state.End == nil {
		return true
	}
	if rec.Date.IsZero() {
		return false
	}
	if state.Start != nil && rec.Date.Before(*state.Start) {
		return false
	}
	if state.End != nil && rec.Date.After(*state.End) {
		return false
	}
	return true
}
