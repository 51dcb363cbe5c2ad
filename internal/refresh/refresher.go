package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staypulse/insights-engine/internal/metrics"
)

// Warmer refreshes the cached record snapshot for one scope.
type Warmer interface {
	Warm(ctx context.Context, scopeID string) (int, error)
}

// Refresher periodically rewarms record snapshots for the configured scopes
// so dashboard requests keep hitting a fresh cache.
type Refresher struct {
	logger   *slog.Logger
	warmer   Warmer
	scopes   []string
	schedule string
	cron     *cron.Cron
}

// NewRefresher constructs a refresher for the given schedule (a standard
// 5-field cron expression) and scope list.
func NewRefresher(logger *slog.Logger, warmer Warmer, schedule string, scopes []string) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		logger:   logger,
		warmer:   warmer,
		scopes:   append([]string(nil), scopes...),
		schedule: schedule,
	}
}

// Start schedules the refresh job. It returns an error for an invalid
// schedule; an empty scope list disables the refresher without error.
func (r *Refresher) Start(ctx context.Context) error {
	if len(r.scopes) == 0 {
		r.logger.Info("cache refresh disabled, no scopes configured")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("parse refresh schedule %q: %w", r.schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("cache refresh scheduled", slog.String("schedule", r.schedule), slog.Int("scopes", len(r.scopes)))
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RunOnce warms every configured scope concurrently and records the outcome.
// A failing scope does not cancel the others; the run is reported as an error
// if any scope failed.
func (r *Refresher) RunOnce(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(4)

	for _, scope := range r.scopes {
		scope := scope
		g.Go(func() error {
			count, err := r.warmer.Warm(ctx, scope)
			if err != nil {
				r.logger.Error("scope refresh failed", slog.String("scope", scope), slog.Any("error", err))
				return err
			}
			r.logger.Debug("scope refreshed", slog.String("scope", scope), slog.Int("records", count))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.ObserveRefresh(metrics.OutcomeError)
		return
	}
	metrics.ObserveRefresh(metrics.OutcomeSuccess)
}
