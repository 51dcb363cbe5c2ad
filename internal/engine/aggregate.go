package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/staypulse/insights-engine/internal/models"
)

// accumulator gathers per-group state during a single aggregation pass.
// Distinct-value tracking uses map sets; they are converted to sorted slices
// when the group crosses the engine boundary.
type accumulator struct {
	key         string
	count       int
	totalRating int
	ratings     []int
	authors     map[string]struct{}
	departments map[string]struct{}
	keywords    map[string]struct{}
	suggestions map[string]struct{}
	examples    []models.Example
	worst       int
	best        int
	lastSeen    time.Time
}

func newAccumulator(key string) *accumulator {
	return &accumulator{
		key:         key,
		authors:     make(map[string]struct{}),
		departments: make(map[string]struct{}),
		keywords:    make(map[string]struct{}),
		suggestions: make(map[string]struct{}),
	}
}

func (a *accumulator) observe(rating int, author string, date time.Time, suggestion string, example models.Example) {
	a.count++
	a.totalRating += rating
	a.ratings = append(a.ratings, rating)
	if author != "" {
		a.authors[author] = struct{}{}
	}
	if suggestion != "" {
		a.suggestions[suggestion] = struct{}{}
	}
	a.examples = append(a.examples, example)
	if a.count == 1 {
		a.worst = rating
		a.best = rating
	} else {
		if rating < a.worst {
			a.worst = rating
		}
		if rating > a.best {
			a.best = rating
		}
	}
	if date.After(a.lastSeen) {
		a.lastSeen = date
	}
}

func (a *accumulator) finalize(denominator int) models.GroupAggregate {
	group := models.GroupAggregate{
		Key:         a.key,
		Count:       a.count,
		TotalRating: a.totalRating,
		Ratings:     a.ratings,
		Authors:     sortedKeys(a.authors),
		Departments: sortedKeys(a.departments),
		Keywords:    sortedKeys(a.keywords),
		Suggestions: sortedKeys(a.suggestions),
		Examples:    a.examples,
		WorstRating: a.worst,
		BestRating:  a.best,
		LastSeen:    a.lastSeen,
	}
	if a.count > 0 {
		group.AverageRating = float64(a.totalRating) / float64(a.count)
	}
	if denominator > 0 {
		group.Percentage = 100 * float64(a.count) / float64(denominator)
	}
	return group
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aggregate buckets problem occurrences by the spec's dimension and returns
// ranked groups. Percentages are computed against the full occurrence count
// before any filter or top-N truncation, so truncating the result never
// shifts a reported share.
func Aggregate(occurrences []models.ProblemOccurrence, spec models.AggregationSpec) []models.GroupAggregate {
	denominator := len(occurrences)
	byKey := make(map[string]*accumulator)
	ordered := make([]*accumulator, 0)

	for _, occ := range occurrences {
		key := occurrenceKey(occ, spec.Dimension)
		acc, ok := byKey[key]
		if !ok {
			acc = newAccumulator(key)
			byKey[key] = acc
			ordered = append(ordered, acc)
		}
		acc.departments[occ.Department] = struct{}{}
		acc.keywords[occ.Keyword] = struct{}{}
		acc.observe(occ.Rating, occ.Author, occ.Date, occ.Suggestion, models.Example{
			Comment:    occ.Comment,
			Detail:     occ.Detail,
			Author:     occ.Author,
			Date:       occ.Date,
			Rating:     occ.Rating,
			Department: occ.Department,
			Keyword:    occ.Keyword,
		})
	}

	groups := make([]models.GroupAggregate, 0, len(ordered))
	for _, acc := range ordered {
		groups = append(groups, acc.finalize(denominator))
	}

	groups = applyGroupFilters(groups, spec.Filters)
	if spec.ExcludeUnidentified {
		groups = withoutKey(groups, Unidentified)
	}
	sortGroups(groups, spec.Sort)
	return truncate(groups, spec.TopN)
}

// AggregateRecords buckets whole records by a record-level facet (sentiment,
// source, language, apartment, rating). Each record counts once; problem
// splitting does not apply.
func AggregateRecords(records []models.FeedbackRecord, spec models.AggregationSpec) []models.GroupAggregate {
	denominator := len(records)
	byKey := make(map[string]*accumulator)
	ordered := make([]*accumulator, 0)

	for _, rec := range records {
		key := recordKey(rec, spec.Dimension)
		acc, ok := byKey[key]
		if !ok {
			acc = newAccumulator(key)
			byKey[key] = acc
			ordered = append(ordered, acc)
		}
		acc.observe(int(rec.Rating), rec.Author, rec.Date.Time, strings.TrimSpace(rec.SuggestionSummary), models.Example{
			Comment: rec.Comment,
			Detail:  strings.TrimSpace(rec.ProblemDetail),
			Author:  rec.Author,
			Date:    rec.Date.Time,
			Rating:  int(rec.Rating),
		})
	}

	groups := make([]models.GroupAggregate, 0, len(ordered))
	for _, acc := range ordered {
		groups = append(groups, acc.finalize(denominator))
	}

	groups = applyGroupFilters(groups, spec.Filters)
	sortGroups(groups, spec.Sort)
	return truncate(groups, spec.TopN)
}

func occurrenceKey(occ models.ProblemOccurrence, dim models.GroupDimension) string {
	switch dim {
	case models.GroupByDepartment:
		return occ.Department
	case models.GroupByKeyword:
		return occ.Keyword
	case models.GroupByRating:
		return strconv.Itoa(occ.Rating)
	default:
		return strings.TrimSpace(occ.Problem)
	}
}

func recordKey(rec models.FeedbackRecord, dim models.GroupDimension) string {
	var key string
	switch dim {
	case models.GroupBySentiment:
		key = string(rec.Sentiment)
	case models.GroupBySource:
		key = rec.Source
	case models.GroupByLanguage:
		key = rec.Language
	case models.GroupByApartment:
		key = rec.Apartment
	case models.GroupByRating:
		return strconv.Itoa(int(rec.Rating))
	default:
		return strconv.Itoa(int(rec.Rating))
	}
	return orUnidentified(key)
}

func applyGroupFilters(groups []models.GroupAggregate, filters []models.GroupFilter) []models.GroupAggregate {
	for _, filter := range filters {
		kept := groups[:0]
		for _, group := range groups {
			if groupPasses(group, filter) {
				kept = append(kept, group)
			}
		}
		groups = kept
	}
	return groups
}

func groupPasses(group models.GroupAggregate, filter models.GroupFilter) bool {
	switch filter {
	case models.FilterCritical:
		return group.Count > 0 && group.AverageRating <= 2
	case models.FilterWithSuggestions:
		return len(group.Suggestions) > 0
	case models.FilterWithDetails:
		for _, example := range group.Examples {
			if example.Detail != "" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func withoutKey(groups []models.GroupAggregate, key string) []models.GroupAggregate {
	kept := groups[:0]
	for _, group := range groups {
		if !strings.EqualFold(group.Key, key) {
			kept = append(kept, group)
		}
	}
	return kept
}

// sortGroups ranks in place. Every order uses a stable sort so ties keep
// insertion order, which follows the input record order.
func sortGroups(groups []models.GroupAggregate, order models.SortOrder) {
	switch order {
	case models.SortAlphabetical:
		coll := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		sort.SliceStable(groups, func(i, j int) bool {
			return coll.CompareString(groups[i].Key, groups[j].Key) < 0
		})
	case models.SortBySeverity:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].AverageRating < groups[j].AverageRating
		})
	case models.SortByRecent:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].LastSeen.After(groups[j].LastSeen)
		})
	default:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Count > groups[j].Count
		})
	}
}

func truncate(groups []models.GroupAggregate, topN int) []models.GroupAggregate {
	if topN > 0 && len(groups) > topN {
		return groups[:topN]
	}
	return groups
}

// deptAccumulator nests a per-problem breakdown inside a department group.
type deptAccumulator struct {
	department  string
	count       int
	totalRating int
	authors     map[string]struct{}
	problems    map[string]*problemDetailAcc
	ordered     []string
}

type problemDetailAcc struct {
	problem     string
	count       int
	totalRating int
	details     map[string]struct{}
	examples    []models.Example
}

// AggregateByDepartment buckets occurrences by department and, inside each
// department, by exact problem text, tracking the distinct specific details
// seen for every (department, problem) pair.
func AggregateByDepartment(occurrences []models.ProblemOccurrence, spec models.AggregationSpec) []models.DepartmentAggregate {
	denominator := len(occurrences)
	byDept := make(map[string]*deptAccumulator)
	ordered := make([]*deptAccumulator, 0)

	for _, occ := range occurrences {
		dept, ok := byDept[occ.Department]
		if !ok {
			dept = &deptAccumulator{
				department: occ.Department,
				authors:    make(map[string]struct{}),
				problems:   make(map[string]*problemDetailAcc),
			}
			byDept[occ.Department] = dept
			ordered = append(ordered, dept)
		}
		dept.count++
		dept.totalRating += occ.Rating
		if occ.Author != "" {
			dept.authors[occ.Author] = struct{}{}
		}

		problem := strings.TrimSpace(occ.Problem)
		acc, ok := dept.problems[problem]
		if !ok {
			acc = &problemDetailAcc{problem: problem, details: make(map[string]struct{})}
			dept.problems[problem] = acc
			dept.ordered = append(dept.ordered, problem)
		}
		acc.count++
		acc.totalRating += occ.Rating
		if occ.Detail != "" {
			acc.details[occ.Detail] = struct{}{}
		}
		acc.examples = append(acc.examples, models.Example{
			Comment:    occ.Comment,
			Detail:     occ.Detail,
			Author:     occ.Author,
			Date:       occ.Date,
			Rating:     occ.Rating,
			Department: occ.Department,
			Keyword:    occ.Keyword,
		})
	}

	departments := make([]models.DepartmentAggregate, 0, len(ordered))
	for _, dept := range ordered {
		if spec.ExcludeUnidentified && strings.EqualFold(dept.department, Unidentified) {
			continue
		}
		departments = append(departments, dept.finalize(denominator))
	}

	sortDepartments(departments, spec.Sort)
	if spec.TopN > 0 && len(departments) > spec.TopN {
		departments = departments[:spec.TopN]
	}
	return departments
}

func (d *deptAccumulator) finalize(denominator int) models.DepartmentAggregate {
	agg := models.DepartmentAggregate{
		Department:  d.department,
		Count:       d.count,
		TotalRating: d.totalRating,
		Authors:     sortedKeys(d.authors),
		Problems:    make([]models.ProblemDetailAggregate, 0, len(d.ordered)),
	}
	if d.count > 0 {
		agg.AverageRating = float64(d.totalRating) / float64(d.count)
	}
	if denominator > 0 {
		agg.Percentage = 100 * float64(d.count) / float64(denominator)
	}
	for _, problem := range d.ordered {
		acc := d.problems[problem]
		detail := models.ProblemDetailAggregate{
			Problem:         acc.problem,
			Count:           acc.count,
			TotalRating:     acc.totalRating,
			SpecificDetails: sortedKeys(acc.details),
			Examples:        acc.examples,
		}
		if acc.count > 0 {
			detail.AverageRating = float64(acc.totalRating) / float64(acc.count)
		}
		agg.Problems = append(agg.Problems, detail)
	}
	sort.SliceStable(agg.Problems, func(i, j int) bool {
		return agg.Problems[i].Count > agg.Problems[j].Count
	})
	return agg
}

func sortDepartments(departments []models.DepartmentAggregate, order models.SortOrder) {
	switch order {
	case models.SortAlphabetical:
		coll := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		sort.SliceStable(departments, func(i, j int) bool {
			return coll.CompareString(departments[i].Department, departments[j].Department) < 0
		})
	case models.SortBySeverity:
		sort.SliceStable(departments, func(i, j int) bool {
			return departments[i].AverageRating < departments[j].AverageRating
		})
	default:
		sort.SliceStable(departments, func(i, j int) bool {
			return departments[i].Count > departments[j].Count
		})
	}
}
