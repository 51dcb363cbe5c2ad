package models

import "strings"

// GroupDimension selects the grouping key for an aggregation pass.
type GroupDimension string

const (
	GroupByProblem    GroupDimension = "problem"
	GroupByDepartment GroupDimension = "department"
	GroupByKeyword    GroupDimension = "keyword"
	GroupByRating     GroupDimension = "rating"
	GroupBySource     GroupDimension = "source"
	GroupByLanguage   GroupDimension = "language"
	GroupBySentiment  GroupDimension = "sentiment"
	GroupByApartment  GroupDimension = "apartment"
)

// SortOrder selects the ranking applied after group filters.
type SortOrder string

const (
	SortByFrequency  SortOrder = "frequency"
	SortAlphabetical SortOrder = "alphabetical"
	SortBySeverity   SortOrder = "severity"
	SortByRecent     SortOrder = "recent"
)

// GroupFilter narrows the group list before sorting.
type GroupFilter string

const (
	FilterCritical        GroupFilter = "critical"
	FilterWithSuggestions GroupFilter = "with-suggestions"
	FilterWithDetails     GroupFilter = "with-details"
)

// AggregationSpec parameterises one aggregation pass. TopN <= 0 means no
// truncation. ExcludeUnidentified drops the fallback department/keyword group
// from the ranked output (a caller decision, not a core rule).
type AggregationSpec struct {
	Dimension           GroupDimension `json:"dimension"`
	Sort                SortOrder      `json:"sort"`
	Filters             []GroupFilter  `json:"filters,omitempty"`
	TopN                int            `json:"topN,omitempty"`
	ExcludeUnidentified bool           `json:"excludeUnidentified,omitempty"`
}

// ParseDimension maps a selector string onto a known dimension, falling back
// to problem grouping so the UI stays usable with an unrecognised value.
func ParseDimension(s string) GroupDimension {
	dim := GroupDimension(strings.ToLower(strings.TrimSpace(s)))
	switch dim {
	case GroupByProblem, GroupByDepartment, GroupByKeyword, GroupByRating,
		GroupBySource, GroupByLanguage, GroupBySentiment, GroupByApartment:
		return dim
	default:
		return GroupByProblem
	}
}

// ParseSortOrder maps a selector string onto a known sort order, defaulting
// to frequency.
func ParseSortOrder(s string) SortOrder {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByFrequency, SortAlphabetical, SortBySeverity, SortByRecent:
		return order
	default:
		return SortByFrequency
	}
}

// InsightsRequest is the API payload shared by the insight endpoints.
type InsightsRequest struct {
	ScopeID     string          `json:"scopeId"`
	Filter      FilterState     `json:"filter"`
	Aggregation AggregationSpec `json:"aggregation"`
}

// TrendRequest asks for a time-bucketed series over the filtered records.
// ValueField picks the per-bucket breakdown (sentiment, source, language);
// empty or "rating" yields overall counts only.
type TrendRequest struct {
	ScopeID    string      `json:"scopeId"`
	Filter     FilterState `json:"filter"`
	ValueField string      `json:"valueField,omitempty"`
}

// ProblemInsights is the composite response for group-oriented views.
type ProblemInsights struct {
	Groups  []GroupAggregate `json:"groups"`
	Summary Summary          `json:"summary"`
}

// DepartmentInsights is the composite response for the department view.
type DepartmentInsights struct {
	Departments []DepartmentAggregate `json:"departments"`
	Summary     Summary               `json:"summary"`
}
