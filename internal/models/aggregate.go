package models

import "time"

// SchemaOrigin tags which problem representation an occurrence came from.
type SchemaOrigin string

const (
	OriginAllProblems SchemaOrigin = "allProblems"
	OriginLegacy      SchemaOrigin = "legacy"
)

// ProblemOccurrence is one (record, problem-token) pair after splitting and
// validity filtering. Created fresh on every aggregation pass, never persisted.
type ProblemOccurrence struct {
	Problem    string       `json:"problem"`
	Detail     string       `json:"detail,omitempty"`
	Department string       `json:"department"`
	Keyword    string       `json:"keyword"`
	Author     string       `json:"author,omitempty"`
	Comment    string       `json:"comment,omitempty"`
	Date       time.Time    `json:"date"`
	Rating     int          `json:"rating"`
	Suggestion string       `json:"suggestion,omitempty"`
	HasDetail  bool         `json:"hasDetail"`
	Origin     SchemaOrigin `json:"schemaOrigin"`
}

// Example is a representative record attached to a group for drill-down.
type Example struct {
	Comment    string    `json:"comment,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Author     string    `json:"author,omitempty"`
	Date       time.Time `json:"date"`
	Rating     int       `json:"rating"`
	Department string    `json:"department,omitempty"`
	Keyword    string    `json:"keyword,omitempty"`
}

// GroupAggregate is the boundary representation of one group. Distinct-value
// sets are already converted to sorted slices so the payload serializes
// deterministically.
type GroupAggregate struct {
	Key           string    `json:"key"`
	Count         int       `json:"count"`
	TotalRating   int       `json:"totalRating"`
	Ratings       []int     `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	Percentage    float64   `json:"percentage"`
	Authors       []string  `json:"authors"`
	Departments   []string  `json:"departments,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
	Suggestions   []string  `json:"suggestions,omitempty"`
	Examples      []Example `json:"examples"`
	WorstRating   int       `json:"worstRating"`
	BestRating    int       `json:"bestRating"`
	LastSeen      time.Time `json:"lastSeen"`
}

// ProblemDetailAggregate tracks one problem inside a department group,
// including the distinct specific details observed for that pair.
type ProblemDetailAggregate struct {
	Problem         string    `json:"problem"`
	Count           int       `json:"count"`
	TotalRating     int       `json:"totalRating"`
	AverageRating   float64   `json:"averageRating"`
	SpecificDetails []string  `json:"specificDetails"`
	Examples        []Example `json:"examples"`
}

// DepartmentAggregate is a department-keyed group with a nested per-problem
// breakdown.
type DepartmentAggregate struct {
	Department    string                   `json:"department"`
	Count         int                      `json:"count"`
	TotalRating   int                      `json:"totalRating"`
	AverageRating float64                  `json:"averageRating"`
	Percentage    float64                  `json:"percentage"`
	Authors       []string                 `json:"authors"`
	Problems      []ProblemDetailAggregate `json:"problems"`
}

// SchemaMix counts occurrences per schema origin.
type SchemaMix struct {
	AllProblems int `json:"allProblems"`
	Legacy      int `json:"legacy"`
}

// Summary carries whole-collection statistics. It is the denominator source
// for every percentage shown alongside a group.
type Summary struct {
	TotalProblems    int       `json:"totalProblems"`
	CriticalProblems int       `json:"criticalProblems"`
	AverageRating    float64   `json:"averageRating"`
	UniqueAuthors    int       `json:"uniqueAuthors"`
	WithSuggestions  int       `json:"withSuggestions"`
	WithDetails      int       `json:"withDetails"`
	DataSourcesCount SchemaMix `json:"dataSourcesCount"`
}

// TrendPeriod is the granularity chosen for time bucketing.
type TrendPeriod string

const (
	TrendDaily   TrendPeriod = "day"
	TrendWeekly  TrendPeriod = "week"
	TrendMonthly TrendPeriod = "month"
)

// TrendBucket is one chronological bucket. Keys are zero-padded so plain
// string comparison sorts them correctly.
type TrendBucket struct {
	Key     string         `json:"key"`
	Total   int            `json:"total"`
	ByValue map[string]int `json:"byValue,omitempty"`
}

// TrendSeries is the bucketed output for trend charts.
type TrendSeries struct {
	Period  TrendPeriod   `json:"period"`
	Buckets []TrendBucket `json:"data"`
}
