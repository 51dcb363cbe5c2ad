package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/staypulse/insights-engine/internal/export"
	"github.com/staypulse/insights-engine/internal/models"
)

// InsightsProvider defines the service operations the handlers expose.
type InsightsProvider interface {
	ProblemInsights(ctx context.Context, req models.InsightsRequest) (models.ProblemInsights, error)
	DepartmentInsights(ctx context.Context, req models.InsightsRequest) (models.DepartmentInsights, error)
	Summary(ctx context.Context, req models.InsightsRequest) (models.Summary, error)
	Trend(ctx context.Context, req models.TrendRequest) (models.TrendSeries, error)
}

// Handler routes JSON requests onto the insights service.
type Handler struct {
	logger  *slog.Logger
	service InsightsProvider
}

// NewHandler constructs the API handler set.
func NewHandler(logger *slog.Logger, service InsightsProvider) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Routes returns the HTTP mux with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/insights/problems", h.handleProblems)
	mux.HandleFunc("POST /v1/insights/departments", h.handleDepartments)
	mux.HandleFunc("POST /v1/insights/summary", h.handleSummary)
	mux.HandleFunc("POST /v1/insights/trend", h.handleTrend)
	mux.HandleFunc("POST /v1/reports/xlsx", h.handleReport)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

func (h *Handler) handleProblems(w http.ResponseWriter, r *http.Request) {
	var req models.InsightsRequest
	if !h.decodeInsightsRequest(w, r, &req) {
		return
	}
	result, err := h.service.ProblemInsights(r.Context(), req)
	if err != nil {
		h.serviceError(w, "problem insights failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	var req models.InsightsRequest
	if !h.decodeInsightsRequest(w, r, &req) {
		return
	}
	result, err := h.service.DepartmentInsights(r.Context(), req)
	if err != nil {
		h.serviceError(w, "department insights failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req models.InsightsRequest
	if !h.decodeInsightsRequest(w, r, &req) {
		return
	}
	summary, err := h.service.Summary(r.Context(), req)
	if err != nil {
		h.serviceError(w, "summary failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	var req models.TrendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.ScopeID) == "" {
		h.writeError(w, http.StatusBadRequest, "scopeId is required")
		return
	}
	series, err := h.service.Trend(r.Context(), req)
	if err != nil {
		h.serviceError(w, "trend failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, series)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req models.InsightsRequest
	if !h.decodeInsightsRequest(w, r, &req) {
		return
	}
	result, err := h.service.ProblemInsights(r.Context(), req)
	if err != nil {
		h.serviceError(w, "report aggregation failed", err)
		return
	}

	report, err := export.NewReport(result)
	if err != nil {
		h.serviceError(w, "report rendering failed", err)
		return
	}
	defer report.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
	w.Header().Set("X-Report-Id", report.ID)
	if _, err := report.WriteTo(w); err != nil {
		h.logger.Error("report write failed", slog.Any("error", err))
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeInsightsRequest(w http.ResponseWriter, r *http.Request, req *models.InsightsRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	if strings.TrimSpace(req.ScopeID) == "" {
		h.writeError(w, http.StatusBadRequest, "scopeId is required")
		return false
	}
	return true
}

func (h *Handler) serviceError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	h.writeError(w, http.StatusBadGateway, msg)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response encode failed", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
