package models

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Sentiment classifies the overall tone of a feedback record.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Rating is a 1-5 guest score. The feedstore occasionally delivers ratings as
// strings or omits them entirely; anything non-numeric decodes to zero so that
// aggregate math stays total.
type Rating int

// UnmarshalJSON accepts numbers, numeric strings, null, and garbage (as zero).
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		*r = Rating(int(f))
		return nil
	}
	*r = 0
	return nil
}

// Date wraps time.Time with tolerant decoding for the feedstore's mixed
// timestamp formats. A missing or unparseable value yields the zero time; such
// records are excluded from trend views but still count in other aggregates.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// UnmarshalJSON tries RFC3339, a handful of legacy layouts, and epoch millis.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	d.Time = time.Time{}
	return nil
}

// MarshalJSON renders RFC3339 or null for the zero time.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(time.RFC3339) + `"`), nil
}

// ProblemEntry is one structured problem in the newer record schema.
type ProblemEntry struct {
	Problem       string `json:"problem"`
	ProblemDetail string `json:"problem_detail"`
	Sector        string `json:"sector"`
	Keyword       string `json:"keyword"`
}

// FeedbackRecord is the immutable input unit fetched from the feedstore.
// Problem information lives either in AllProblems (newer schema) or in the
// legacy semicolon-joined scalar fields; never both at extraction time.
type FeedbackRecord struct {
	ID                string         `json:"id"`
	Author            string         `json:"author"`
	Rating            Rating         `json:"rating"`
	Sentiment         Sentiment      `json:"sentiment"`
	Comment           string         `json:"comment,omitempty"`
	Date              Date           `json:"date"`
	Source            string         `json:"source"`
	Language          string         `json:"language"`
	Apartment         string         `json:"apartment,omitempty"`
	Sector            string         `json:"sector,omitempty"`
	Keyword           string         `json:"keyword,omitempty"`
	Problem           string         `json:"problem,omitempty"`
	ProblemDetail     string         `json:"problem_detail,omitempty"`
	SuggestionSummary string         `json:"suggestion_summary,omitempty"`
	AllProblems       []ProblemEntry `json:"allProblems,omitempty"`
	Deleted           bool           `json:"deleted,omitempty"`
}

// FilterState captures the active facet selections. A nil bound or an
// empty/"all" selector means no restriction on that facet, never "exclude
// everything". The presentation layer owns it and passes it by value.
type FilterState struct {
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	HiddenRatings []int      `json:"hiddenRatings,omitempty"`
	Sentiment     string     `json:"sentiment,omitempty"`
	Source        string     `json:"source,omitempty"`
	Language      string     `json:"language,omitempty"`
	Apartment     string     `json:"apartment,omitempty"`
}

// Restricts reports whether a selector value constrains its facet.
func Restricts(selector string) bool {
	return selector != "" && !strings.EqualFold(selector, "all")
}
