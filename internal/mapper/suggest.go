// Package mapper reconciles arbitrary source columns into the canonical
// ingestion schema. Suggestion is three-tiered: a curated alias dictionary,
// an irrelevant-column drop list, and keyword-anchored fuzzy matching
// against a small whitelist of canonical fields. Export stays blocked until
// every source column has an explicit disposition.
package mapper

import (
	"github.com/agext/levenshtein"

	"github.com/jobpulse/ingest-cli/internal/textnorm"
)

// SimilarityThreshold is the minimum fuzzy score for an automatic
// suggestion. Below it a column stays unresolved and needs a human.
const SimilarityThreshold = 0.75

// ruleMap maps normalized source headers straight onto canonical fields.
// Keys are textnorm.Header output.
var ruleMap = map[string]string{
	"title":            "role_name",
	"job title":        "role_name",
	"position":         "role_name",
	"role":             "role_name",
	"job name":         "role_name",
	"company":          "company_name",
	"company name":     "company_name",
	"employer":         "company_name",
	"organization":     "company_name",
	"city":             "city",
	"town":             "city",
	"country":          "country",
	"country code":     "country_iso",
	"country iso":      "country_iso",
	"location":         "location_city_country",
	"place":            "location_city_country",
	"region":           "location_city_country",
	"salary":           "salary_min_max",
	"salary range":     "salary_min_max",
	"pay range":        "salary_min_max",
	"compensation":     "salary_min_max",
	"salary min":       "salary_min",
	"min salary":       "salary_min",
	"minimum salary":   "salary_min",
	"salary max":       "salary_max",
	"max salary":       "salary_max",
	"maximum salary":   "salary_max",
	"currency":         "currency",
	"salary currency":  "currency",
	"employment type":  "employment_type",
	"job type":         "employment_type",
	"contract type":    "employment_type",
	"schedule type":    "employment_type",
	"remote":           "work_from_home_flag",
	"work from home":   "work_from_home_flag",
	"wfh":              "work_from_home_flag",
	"is remote":        "work_from_home_flag",
	"remote ratio":     "remote_ratio",
	"posted date":      "posted_date",
	"date posted":      "posted_date",
	"created at":       "posted_date",
	"publication date": "posted_date",
	"expired date":     "expired_date",
	"expiry date":      "expired_date",
	"closing date":     "expired_date",
	"valid until":      "expired_date",
	"description":      "description",
	"job description":  "description",
	"summary":          "description",
	"id":               "__source_id",
	"job id":           "__source_id",
	"posting id":       "__source_id",
}

// autoDrop lists normalized headers known to carry nothing the canonical
// schema wants.
var autoDrop = map[string]bool{
	"index":          true,
	"unnamed 0":      true,
	"url":            true,
	"link":           true,
	"job link":       true,
	"apply url":      true,
	"apply link":     true,
	"logo":           true,
	"company logo":   true,
	"scraped at":     true,
	"crawl date":     true,
	"search term":    true,
	"search keyword": true,
	"page":           true,
	"benefits":       true,
	"telephone":      true,
	"email":          true,
}

// fuzzyWhitelist anchors the fuzzy tier: a header containing the anchor
// keyword is only compared against that anchor's candidate fields, never
// the whole schema.
var fuzzyWhitelist = []struct {
	anchor     string
	candidates []string
}{
	{"salary", []string{"salary_min", "salary_max", "salary_min_max"}},
	{"title", []string{"role_name"}},
	{"company", []string{"company_name"}},
	{"location", []string{"city", "country", "location_city_country"}},
	{"date", []string{"posted_date", "expired_date"}},
}

// Action is the suggested handling for one source column.
type Action string

const (
	ActionMap        Action = "map"
	ActionDrop       Action = "drop"
	ActionUnresolved Action = "unresolved"
)

// Suggestion is the mapper's verdict for one source column.
type Suggestion struct {
	Source     string  `json:"source" yaml:"source"`
	Action     Action  `json:"action" yaml:"action"`
	Target     string  `json:"target,omitempty" yaml:"target,omitempty"`
	Similarity float64 `json:"similarity,omitempty" yaml:"similarity,omitempty"`
}

// Suggest produces a disposition suggestion for one source header.
func Suggest(header string) Suggestion {
	norm := textnorm.Header(header)

	if target, ok := ruleMap[norm]; ok {
		return Suggestion{Source: header, Action: ActionMap, Target: target, Similarity: 1}
	}
	if autoDrop[norm] {
		return Suggestion{Source: header, Action: ActionDrop}
	}

	if target, score, ok := fuzzyMatch(norm); ok {
		return Suggestion{Source: header, Action: ActionMap, Target: target, Similarity: score}
	}
	return Suggestion{Source: header, Action: ActionUnresolved}
}

// SuggestAll runs Suggest over a header row in order.
func SuggestAll(headers []string) []Suggestion {
	out := make([]Suggestion, len(headers))
	for i, h := range headers {
		out[i] = Suggest(h)
	}
	return out
}

func fuzzyMatch(norm string) (string, float64, bool) {
	params := levenshtein.NewParams()
	var (
		best      string
		bestScore float64
	)
	for _, w := range fuzzyWhitelist {
		if !containsToken(norm, w.anchor) {
			continue
		}
		for _, candidate := range w.candidates {
			score := levenshtein.Similarity(norm, textnorm.Header(candidate), params)
			if score > bestScore {
				best, bestScore = candidate, score
			}
		}
	}
	if bestScore >= SimilarityThreshold {
		return best, bestScore, true
	}
	return "", 0, false
}

func containsToken(norm, token string) bool {
	for _, t := range textnorm.Tokens(norm) {
		if t == token {
			return true
		}
	}
	return false
}
