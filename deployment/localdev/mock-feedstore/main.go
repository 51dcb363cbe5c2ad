package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type problemEntry struct {
	Problem       string `json:"problem"`
	ProblemDetail string `json:"problem_detail,omitempty"`
	Sector        string `json:"sector,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
}

type feedbackRecord struct {
	ID                string         `json:"id"`
	Author            string         `json:"author"`
	Rating            int            `json:"rating"`
	Sentiment         string         `json:"sentiment,omitempty"`
	Comment           string         `json:"comment,omitempty"`
	Date              time.Time      `json:"date"`
	Source            string         `json:"source"`
	Language          string         `json:"language"`
	Apartment         string         `json:"apartment,omitempty"`
	Sector            string         `json:"sector,omitempty"`
	Keyword           string         `json:"keyword,omitempty"`
	Problem           string         `json:"problem,omitempty"`
	ProblemDetail     string         `json:"problem_detail,omitempty"`
	SuggestionSummary string         `json:"suggestion_summary,omitempty"`
	AllProblems       []problemEntry `json:"allProblems,omitempty"`
}

func sampleRecords() []feedbackRecord {
	day := func(d int) time.Time {
		return time.Date(2026, 5, d, 14, 30, 0, 0, time.UTC)
	}
	return []feedbackRecord{
		{
			ID:        "fb-1001",
			Author:    "Mariana Souza",
			Rating:    2,
			Sentiment: "negative",
			Comment:   "Internet caiu várias vezes durante a estadia",
			Date:      day(2),
			Source:    "booking",
			Language:  "pt",
			Apartment: "302",
			AllProblems: []problemEntry{
				{Problem: "Wi-Fi lento", ProblemDetail: "Sinal fraco no terceiro andar", Sector: "TI", Keyword: "internet"},
				{Problem: "Barulho", Sector: "Recepção", Keyword: "ruído"},
			},
			SuggestionSummary: "Instalar repetidores nos corredores",
		},
		{
			ID:        "fb-1002",
			Author:    "Carlos Lima",
			Rating:    4,
			Sentiment: "positive",
			Comment:   "Quarto ótimo, só o ar-condicionado pingava",
			Date:      day(9),
			Source:    "google",
			Language:  "pt",
			Apartment: "110",
			Problem:   "Ar-condicionado",
			Sector:    "Manutenção",
			Keyword:   "climatização",
		},
		{
			ID:       "fb-1003",
			Author:   "Emily Carter",
			Rating:   5,
			Comment:  "Lovely stay, nothing to report",
			Date:     day(12),
			Source:   "expedia",
			Language: "en",
			Problem:  "VAZIO",
		},
		{
			ID:        "fb-1004",
			Author:    "João Pedro",
			Rating:    1,
			Sentiment: "negative",
			Comment:   "Chuveiro frio e atendimento demorado",
			Date:      day(15),
			Source:    "booking",
			Language:  "pt",
			Apartment: "215",
			Problem:   "Chuveiro frio;Atendimento demorado",
			Sector:    "Manutenção",
			Keyword:   "banho",
		},
	}
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/feedbacks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Query().Get("scope") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"scope is required"}`))
			return
		}
		writeJSON(w, map[string]any{"records": sampleRecords()})
	})

	logger := log.New(log.Writer(), "feedstore-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8081",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8081")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
