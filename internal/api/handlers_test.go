package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/staypulse/insights-engine/internal/models"
)

type fakeProvider struct {
	problems    models.ProblemInsights
	departments models.DepartmentInsights
	summary     models.Summary
	trend       models.TrendSeries
	err         error

	lastInsights models.InsightsRequest
	lastTrend    models.TrendRequest
}

func (f *fakeProvider) ProblemInsights(_ context.Context, req models.InsightsRequest) (models.ProblemInsights, error) {
	f.lastInsights = req
	return f.problems, f.err
}

func (f *fakeProvider) DepartmentInsights(_ context.Context, req models.InsightsRequest) (models.DepartmentInsights, error) {
	f.lastInsights = req
	return f.departments, f.err
}

func (f *fakeProvider) Summary(_ context.Context, req models.InsightsRequest) (models.Summary, error) {
	f.lastInsights = req
	return f.summary, f.err
}

func (f *fakeProvider) Trend(_ context.Context, req models.TrendRequest) (models.TrendSeries, error) {
	f.lastTrend = req
	return f.trend, f.err
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleProblems(t *testing.T) {
	provider := &fakeProvider{
		problems: models.ProblemInsights{
			Groups:  []models.GroupAggregate{{Key: "Wi-Fi lento", Count: 2}},
			Summary: models.Summary{TotalProblems: 2},
		},
	}
	handler := NewHandler(nil, provider).Routes()

	rec := postJSON(t, handler, "/v1/insights/problems", models.InsightsRequest{
		ScopeID:     "hotel-centro",
		Aggregation: models.AggregationSpec{Dimension: models.GroupByProblem, TopN: 5},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.ProblemInsights
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Groups) != 1 || resp.Groups[0].Key != "Wi-Fi lento" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if provider.lastInsights.Aggregation.TopN != 5 {
		t.Fatalf("aggregation spec not forwarded: %+v", provider.lastInsights)
	}
}

func TestHandleProblemsRequiresScope(t *testing.T) {
	handler := NewHandler(nil, &fakeProvider{}).Routes()
	rec := postJSON(t, handler, "/v1/insights/problems", models.InsightsRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scopeId") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHandleProblemsInvalidJSON(t *testing.T) {
	handler := NewHandler(nil, &fakeProvider{}).Routes()
	req := httptest.NewRequest(http.MethodPost, "/v1/insights/problems", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProblemsServiceError(t *testing.T) {
	handler := NewHandler(nil, &fakeProvider{err: errors.New("store down")}).Routes()
	rec := postJSON(t, handler, "/v1/insights/problems", models.InsightsRequest{ScopeID: "hotel-centro"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHandleDepartments(t *testing.T) {
	provider := &fakeProvider{
		departments: models.DepartmentInsights{
			Departments: []models.DepartmentAggregate{{Department: "TI", Count: 3}},
		},
	}
	handler := NewHandler(nil, provider).Routes()

	rec := postJSON(t, handler, "/v1/insights/departments", models.InsightsRequest{ScopeID: "hotel-centro"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp models.DepartmentInsights
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Departments) != 1 || resp.Departments[0].Department != "TI" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleSummary(t *testing.T) {
	provider := &fakeProvider{summary: models.Summary{TotalProblems: 7, CriticalProblems: 2}}
	handler := NewHandler(nil, provider).Routes()

	rec := postJSON(t, handler, "/v1/insights/summary", models.InsightsRequest{ScopeID: "hotel-centro"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp models.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalProblems != 7 || resp.CriticalProblems != 2 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestHandleTrend(t *testing.T) {
	provider := &fakeProvider{
		trend: models.TrendSeries{
			Period:  models.TrendDaily,
			Buckets: []models.TrendBucket{{Key: "2026-05-03", Total: 4}},
		},
	}
	handler := NewHandler(nil, provider).Routes()

	rec := postJSON(t, handler, "/v1/insights/trend", models.TrendRequest{ScopeID: "hotel-centro", ValueField: "source"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if provider.lastTrend.ValueField != "source" {
		t.Fatalf("value field not forwarded: %+v", provider.lastTrend)
	}
	var resp models.TrendSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Period != models.TrendDaily || len(resp.Buckets) != 1 {
		t.Fatalf("unexpected series: %+v", resp)
	}
}

func TestHandleReport(t *testing.T) {
	provider := &fakeProvider{
		problems: models.ProblemInsights{
			Groups:  []models.GroupAggregate{{Key: "Wi-Fi lento", Count: 2, Percentage: 100}},
			Summary: models.Summary{TotalProblems: 2},
		},
	}
	handler := NewHandler(nil, provider).Routes()

	rec := postJSON(t, handler, "/v1/reports/xlsx", models.InsightsRequest{ScopeID: "hotel-centro"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Header().Get("X-Report-Id") == "" {
		t.Fatal("expected a report id header")
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected workbook bytes in body")
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewHandler(nil, &fakeProvider{}).Routes()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewHandler(nil, &fakeProvider{}).Routes()
	req := httptest.NewRequest(http.MethodGet, "/v1/insights/problems", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
