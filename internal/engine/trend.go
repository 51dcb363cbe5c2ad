package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/staypulse/insights-engine/internal/models"
	"github.com/staypulse/insights-engine/internal/utils"
)

// trend granularity thresholds, in days of observed span.
const (
	maxDailySpan  = 14
	maxWeeklySpan = 60
)

// BucketByTime buckets records chronologically, choosing day, week, or month
// granularity from the observed date span. valueField selects the per-bucket
// breakdown (sentiment, source, language, apartment); empty, "rating", or an
// unknown field yields overall counts only. Records without a usable date are
// skipped.
func BucketByTime(records []models.FeedbackRecord, valueField string) models.TrendSeries {
	dated := make([]models.FeedbackRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Date.IsZero() {
			dated = append(dated, rec)
		}
	}
	if len(dated) == 0 {
		return models.TrendSeries{Period: models.TrendDaily, Buckets: []models.TrendBucket{}}
	}

	earliest, latest := dated[0].Date.Time, dated[0].Date.Time
	for _, rec := range dated[1:] {
		if rec.Date.Before(earliest) {
			earliest = rec.Date.Time
		}
		if rec.Date.After(latest) {
			latest = rec.Date.Time
		}
	}

	period := periodForSpan(utils.DaysBetween(earliest, latest))
	extract := valueExtractor(valueField)

	byKey := make(map[string]*models.TrendBucket)
	for _, rec := range dated {
		key := bucketKey(rec.Date.Time, period)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &models.TrendBucket{Key: key}
			if extract != nil {
				bucket.ByValue = make(map[string]int)
			}
			byKey[key] = bucket
		}
		bucket.Total++
		if extract != nil {
			bucket.ByValue[extract(rec)]++
		}
	}

	buckets := make([]models.TrendBucket, 0, len(byKey))
	for _, bucket := range byKey {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })

	return models.TrendSeries{Period: period, Buckets: buckets}
}

func periodForSpan(days int) models.TrendPeriod {
	switch {
	case days <= maxDailySpan:
		return models.TrendDaily
	case days <= maxWeeklySpan:
		return models.TrendWeekly
	default:
		return models.TrendMonthly
	}
}

// bucketKey formats zero-padded keys so lexicographic order matches
// chronological order. Week keys use that date's Sunday.
func bucketKey(t time.Time, period models.TrendPeriod) string {
	switch period {
	case models.TrendDaily:
		return t.Format("2006-01-02")
	case models.TrendWeekly:
		return utils.StartOfWeek(t).Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}

func valueExtractor(field string) func(models.FeedbackRecord) string {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "sentiment":
		return func(rec models.FeedbackRecord) string { return orUnidentified(string(rec.Sentiment)) }
	case "source":
		return func(rec models.FeedbackRecord) string { return orUnidentified(rec.Source) }
	case "language":
		return func(rec models.FeedbackRecord) string { return orUnidentified(rec.Language) }
	case "apartment":
		return func(rec models.FeedbackRecord) string { return orUnidentified(rec.Apartment) }
	default:
		return nil
	}
}
