package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/staypulse/insights-engine/internal/engine"
	"github.com/staypulse/insights-engine/internal/metrics"
	"github.com/staypulse/insights-engine/internal/models"
	"github.com/staypulse/insights-engine/internal/utils"
)

// RecordStore defines the record fetch operation the service needs from the
// feedstore layer.
type RecordStore interface {
	FetchRecords(ctx context.Context, scopeID string) ([]models.FeedbackRecord, error)
}

// InsightsService orchestrates record fetch, filtering, extraction, and
// aggregation behind the HTTP API.
type InsightsService struct {
	logger     *slog.Logger
	store      RecordStore
	normalizer *engine.Normalizer
	latencies  *utils.LatencyTracker
}

// NewInsightsService constructs the insights service facade. A nil normalizer
// falls back to the built-in sentinel set.
func NewInsightsService(logger *slog.Logger, store RecordStore, normalizer *engine.Normalizer) *InsightsService {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = engine.NewNormalizer(nil)
	}
	return &InsightsService{
		logger:     logger,
		store:      store,
		normalizer: normalizer,
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// ProblemInsights aggregates problem occurrences along the requested
// dimension and pairs the groups with an executive summary of the filtered
// collection.
func (s *InsightsService) ProblemInsights(ctx context.Context, req models.InsightsRequest) (models.ProblemInsights, error) {
	req.Aggregation = normalizeSpec(req.Aggregation)
	start := time.Now()
	records, occurrences, err := s.load(ctx, req.ScopeID, req.Filter)
	if err != nil {
		metrics.ObserveAggregation(time.Since(start), metrics.OutcomeError)
		return models.ProblemInsights{}, utils.NewAppError("service.ProblemInsights", "load records", err)
	}

	var groups []models.GroupAggregate
	if isRecordDimension(req.Aggregation.Dimension) {
		groups = engine.AggregateRecords(records, req.Aggregation)
	} else {
		groups = engine.Aggregate(occurrences, req.Aggregation)
	}

	s.observe(start)
	return models.ProblemInsights{
		Groups:  groups,
		Summary: engine.Summarize(occurrences),
	}, nil
}

// DepartmentInsights aggregates occurrences per department with a nested
// problem breakdown.
func (s *InsightsService) DepartmentInsights(ctx context.Context, req models.InsightsRequest) (models.DepartmentInsights, error) {
	req.Aggregation = normalizeSpec(req.Aggregation)
	start := time.Now()
	_, occurrences, err := s.load(ctx, req.ScopeID, req.Filter)
	if err != nil {
		metrics.ObserveAggregation(time.Since(start), metrics.OutcomeError)
		return models.DepartmentInsights{}, utils.NewAppError("service.DepartmentInsights", "load records", err)
	}

	departments := engine.AggregateByDepartment(occurrences, req.Aggregation)
	s.observe(start)
	return models.DepartmentInsights{
		Departments: departments,
		Summary:     engine.Summarize(occurrences),
	}, nil
}

// Summary returns only the executive summary for the filtered scope.
func (s *InsightsService) Summary(ctx context.Context, req models.InsightsRequest) (models.Summary, error) {
	start := time.Now()
	_, occurrences, err := s.load(ctx, req.ScopeID, req.Filter)
	if err != nil {
		metrics.ObserveAggregation(time.Since(start), metrics.OutcomeError)
		return models.Summary{}, utils.NewAppError("service.Summary", "load records", err)
	}
	s.observe(start)
	return engine.Summarize(occurrences), nil
}

// Trend buckets the filtered records over time, optionally broken down by a
// categorical record field.
func (s *InsightsService) Trend(ctx context.Context, req models.TrendRequest) (models.TrendSeries, error) {
	start := time.Now()
	records, _, err := s.load(ctx, req.ScopeID, req.Filter)
	if err != nil {
		metrics.ObserveAggregation(time.Since(start), metrics.OutcomeError)
		return models.TrendSeries{}, utils.NewAppError("service.Trend", "load records", err)
	}
	s.observe(start)
	return engine.BucketByTime(records, req.ValueField), nil
}

// LatencyP95 returns the current p95 aggregation latency.
func (s *InsightsService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func (s *InsightsService) load(ctx context.Context, scopeID string, filter models.FilterState) ([]models.FeedbackRecord, []models.ProblemOccurrence, error) {
	records, err := s.store.FetchRecords(ctx, scopeID)
	if err != nil {
		s.logger.Error("record fetch failed", slog.String("scope", scopeID), slog.Any("error", err))
		return nil, nil, err
	}

	valid := engine.FilterValidRecords(records)
	filtered := engine.FilterRecords(valid, filter)
	occurrences := s.normalizer.ExtractOccurrences(filtered)

	s.logger.Debug("records loaded",
		slog.String("scope", scopeID),
		slog.Int("fetched", len(records)),
		slog.Int("filtered", len(filtered)),
		slog.Int("occurrences", len(occurrences)))
	return filtered, occurrences, nil
}

func (s *InsightsService) observe(start time.Time) {
	duration := time.Since(start)
	s.latencies.Observe(duration)
	metrics.ObserveAggregation(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("aggregation latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}
}

func normalizeSpec(spec models.AggregationSpec) models.AggregationSpec {
	spec.Dimension = models.ParseDimension(string(spec.Dimension))
	spec.Sort = models.ParseSortOrder(string(spec.Sort))
	return spec
}

func isRecordDimension(dim models.GroupDimension) bool {
	switch models.GroupDimension(strings.ToLower(string(dim))) {
	case models.GroupBySentiment, models.GroupBySource, models.GroupByLanguage, models.GroupByApartment:
		return true
	default:
		return false
	}
}
