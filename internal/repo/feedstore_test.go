package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

func feedbackPayload(t *testing.T) []byte {
	t.Helper()
	payload := map[string]any{
		"records": []map[string]any{
			{
				"id":      "fb-1",
				"author":  "Mariana",
				"rating":  2,
				"comment": "Wi-Fi lento no quarto",
				"problem": "Wi-Fi lento",
				"sector":  "TI",
				"source":  "booking",
			},
			{
				"id":      "fb-2",
				"author":  "Carlos",
				"rating":  5,
				"comment": "Tudo excelente",
				"source":  "google",
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestFetchRecordsCachesSnapshot(t *testing.T) {
	hits := 0
	cacheStub := newStubCache()
	client := NewFeedstoreClient("https://feedstore.example.com", "/api/v1/feedbacks", time.Second, 0, FeedstoreOptions{
		Cache:    cacheStub,
		CacheTTL: time.Minute,
	})
	data := feedbackPayload(t)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		if req.URL.Path != "/api/v1/feedbacks" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("scope"); got != "hotel-centro" {
			t.Fatalf("unexpected scope query: %q", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	}))

	ctx := context.Background()
	records, err := client.FetchRecords(ctx, "hotel-centro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream request, got %d", hits)
	}
	if len(records) != 2 || records[0].ID != "fb-1" || records[0].Problem != "Wi-Fi lento" {
		t.Fatalf("unexpected records: %+v", records)
	}

	cached, err := client.FetchRecords(ctx, "hotel-centro")
	if err != nil {
		t.Fatalf("unexpected cached error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("cache miss triggered network call; hits=%d", hits)
	}
	if len(cached) != 2 || cached[1].Author != "Carlos" {
		t.Fatalf("unexpected cached payload: %+v", cached)
	}
}

func TestFetchRecordsRetriesServerErrors(t *testing.T) {
	hits := 0
	client := NewFeedstoreClient("https://feedstore.example.com", "/api/v1/feedbacks", time.Second, 2, FeedstoreOptions{})
	data := feedbackPayload(t)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		if hits == 1 {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     make(http.Header),
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	}))

	records, err := client.FetchRecords(context.Background(), "hotel-centro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected retry after 502, got %d hits", hits)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestFetchRecordsDoesNotRetryClientErrors(t *testing.T) {
	hits := 0
	client := NewFeedstoreClient("https://feedstore.example.com", "/api/v1/feedbacks", time.Second, 3, FeedstoreOptions{})
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
		}, nil
	}))

	if _, err := client.FetchRecords(context.Background(), "no-such-scope"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if hits != 1 {
		t.Fatalf("404 should not be retried; hits=%d", hits)
	}
}

func TestFetchRecordsRequiresScope(t *testing.T) {
	client := NewFeedstoreClient("https://feedstore.example.com", "/api/v1/feedbacks", time.Second, 0, FeedstoreOptions{})
	if _, err := client.FetchRecords(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty scope")
	}
}

func TestWarmBypassesCache(t *testing.T) {
	hits := 0
	cacheStub := newStubCache()
	client := NewFeedstoreClient("https://feedstore.example.com", "/api/v1/feedbacks", time.Second, 0, FeedstoreOptions{
		Cache:    cacheStub,
		CacheTTL: time.Minute,
	})
	data := feedbackPayload(t)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	}))

	ctx := context.Background()
	if _, err := client.FetchRecords(ctx, "hotel-centro"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err := client.Warm(ctx, "hotel-centro")
	if err != nil {
		t.Fatalf("unexpected warm error: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected warm count: %d", count)
	}
	if hits != 2 {
		t.Fatalf("warm should bypass the cache; hits=%d", hits)
	}
}
