package engine

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Unidentified is the fallback label for a missing department or keyword.
const Unidentified = "Não identificado"

const sentinelEmpty = "vazio"

// problemBlocklist holds normalized placeholder values that carry no signal.
var problemBlocklist = map[string]struct{}{
	"vazio":            {},
	"sem problemas":    {},
	"nao identificado": {},
	"não identificado": {},
	"sem problema":     {},
	"nenhum problema":  {},
	"ok":               {},
	"tudo ok":          {},
	"sem":              {},
	"n/a":              {},
	"na":               {},
	"-":                {},
	"":                 {},
	"não":              {},
	"nao":              {},
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitTags splits a semicolon-delimited multi-value field into trimmed atomic
// tokens, dropping empty parts and the "VAZIO" sentinel (case-insensitive).
// A bare non-sentinel value v yields [v].
func SplitTags(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ";")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || normalizeToken(part) == sentinelEmpty {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// IsValidProblem reports whether a problem token is semantically meaningful.
// Placeholders, blocklisted values, anything containing "vazio" or
// "sem problemas", and tokens of two characters or fewer are all noise.
func IsValidProblem(token string) bool {
	return defaultNormalizer.IsValidProblem(token)
}

// IsValidKeyword applies the simplified keyword/department rule: only the
// length check is enforced.
func IsValidKeyword(token string) bool {
	return utf8.RuneCountInString(normalizeToken(token)) > 2
}

// Normalizer bundles the validity rules with operator-supplied extra sentinel
// terms. The zero-value rules are the fixed blocklist alone.
type Normalizer struct {
	extra map[string]struct{}
}

var defaultNormalizer = &Normalizer{}

// NewNormalizer builds a Normalizer whose blocklist is extended with the
// provided terms (normalized before matching).
func NewNormalizer(extraSentinels []string) *Normalizer {
	n := &Normalizer{}
	if len(extraSentinels) > 0 {
		n.extra = make(map[string]struct{}, len(extraSentinels))
		for _, term := range extraSentinels {
			if norm := normalizeToken(term); norm != "" {
				n.extra[norm] = struct{}{}
			}
		}
	}
	return n
}

// IsValidProblem applies the fixed rules plus any extra sentinel terms.
func (n *Normalizer) IsValidProblem(token string) bool {
	norm := normalizeToken(token)
	if _, blocked := problemBlocklist[norm]; blocked {
		return false
	}
	if strings.Contains(norm, sentinelEmpty) || strings.Contains(norm, "sem problemas") {
		return false
	}
	if utf8.RuneCountInString(norm) <= 2 {
		return false
	}
	if n != nil && n.extra != nil {
		if _, blocked := n.extra[norm]; blocked {
			return false
		}
	}
	return true
}

// SplitValidProblems splits a legacy problem field and keeps only tokens that
// pass the validity filter.
func (n *Normalizer) SplitValidProblems(field string) []string {
	tokens := SplitTags(field)
	valid := tokens[:0]
	for _, token := range tokens {
		if n.IsValidProblem(token) {
			valid = append(valid, token)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

type sentinelPackFile struct {
	Sentinels []string `yaml:"sentinels"`
}

// LoadSentinelPack reads extra sentinel terms from an optional YAML file.
// A missing file is not an error; deployments without one use the fixed
// blocklist only.
func LoadSentinelPack(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var pack sentinelPackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, err
	}
	return pack.Sentinels, nil
}
