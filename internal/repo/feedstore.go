package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/staypulse/insights-engine/internal/cache"
	"github.com/staypulse/insights-engine/internal/metrics"
	"github.com/staypulse/insights-engine/internal/models"
)

// FeedstoreClient fetches feedback records for a scope from the feedstore
// HTTP API, with retry on transient failures and an optional read-through
// cache so repeated aggregations do not hammer the store.
type FeedstoreClient struct {
	baseURL     string
	recordsPath string
	httpClient  *http.Client
	maxRetries  uint64
	cache       cache.Provider
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// FeedstoreOptions carries optional collaborators for the client.
type FeedstoreOptions struct {
	Cache    cache.Provider
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewFeedstoreClient constructs a client targeting the configured feedstore instance.
func NewFeedstoreClient(baseURL, recordsPath string, timeout time.Duration, maxRetries uint64, opts FeedstoreOptions) *FeedstoreClient {
	provider := opts.Cache
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedstoreClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		recordsPath: recordsPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		cache:      provider,
		cacheTTL:   opts.CacheTTL,
		logger:     logger,
	}
}

// FetchRecords returns all feedback records for the scope, serving from cache
// when a fresh snapshot exists.
func (c *FeedstoreClient) FetchRecords(ctx context.Context, scopeID string) ([]models.FeedbackRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("feedstore client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("feedstore base URL not configured")
	}
	if strings.TrimSpace(scopeID) == "" {
		return nil, fmt.Errorf("scope id is required")
	}

	key := recordsCacheKey(scopeID)
	if cached, err := c.cache.Get(ctx, key); err == nil {
		var records []models.FeedbackRecord
		if err := json.Unmarshal(cached, &records); err == nil {
			return records, nil
		}
		// Corrupt entry, drop it and fall through to the store.
		_ = c.cache.Del(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("feedstore cache read failed", "scope", scopeID, "error", err)
	}

	records, err := c.fetchRemote(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	c.storeSnapshot(ctx, key, records)
	return records, nil
}

// Warm fetches the scope from the store and refreshes its cached snapshot,
// bypassing any existing cache entry.
func (c *FeedstoreClient) Warm(ctx context.Context, scopeID string) (int, error) {
	records, err := c.fetchRemote(ctx, scopeID)
	if err != nil {
		return 0, err
	}
	c.storeSnapshot(ctx, recordsCacheKey(scopeID), records)
	return len(records), nil
}

func (c *FeedstoreClient) fetchRemote(ctx context.Context, scopeID string) ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord

	operation := func() error {
		fetched, err := c.getRecords(ctx, scopeID)
		if err != nil {
			return err
		}
		records = fetched
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("feedstore records request failed: %w", err)
	}

	metrics.AddRecordsFetched(len(records))
	return records, nil
}

func (c *FeedstoreClient) getRecords(ctx context.Context, scopeID string) ([]models.FeedbackRecord, error) {
	endpoint, err := c.recordsURL(scopeID)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("feedstore returned %s", resp.Status)
	default:
		return nil, backoff.Permanent(fmt.Errorf("feedstore returned %s", resp.Status))
	}

	var response struct {
		Records []models.FeedbackRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return response.Records, nil
}

func (c *FeedstoreClient) recordsURL(scopeID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "/"+strings.TrimLeft(c.recordsPath, "/"))
	q := u.Query()
	q.Set("scope", scopeID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *FeedstoreClient) storeSnapshot(ctx context.Context, key string, records []models.FeedbackRecord) {
	if c.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, payload, c.cacheTTL); err != nil {
		c.logger.Warn("feedstore cache write failed", "key", key, "error", err)
	}
}

func recordsCacheKey(scopeID string) string {
	return "records:" + scopeID
}
