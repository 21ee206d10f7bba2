// Package role standardizes raw job titles onto the canonical role
// taxonomy. Matching runs in three tiers: taxonomy term matching over
// sliding-window phrases, a core-word fallback for data-context titles, and
// a leadership fallback; anything that survives no tier becomes Unmatched.
package role

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/audit"
	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
	"github.com/jobpulse/ingest-cli/internal/textnorm"
)

// Canonical field this stage owns.
const FieldRole = "role_name"

// RoleSeparator joins multiple canonical roles emitted for one title.
const RoleSeparator = " | "

// maxPhraseLen bounds the sliding-window phrases built from a title.
const maxPhraseLen = 3

// contextTokens gate the core-word fallback: a bare "engineer" is not a
// data role unless the title also carries a data-domain token.
var contextTokens = tokenSet("data", "analytics", "analytic", "ml", "ai", "ia", "machine", "learning", "platform", "bi", "big")

// coreRoles maps a short core word onto its canonical role for titles the
// taxonomy terms miss, e.g. "data quality engineer".
var coreRoles = map[string]string{
	"analyst":   "Data Analyst",
	"engineer":  "Data Engineer",
	"scientist": "Data Scientist",
	"architect": "Data Architect",
	"steward":   "Data Steward",
	"modeler":   "Data Modeler",
}

// Leadership fallback vocabulary. French forms appear because several
// source job boards post in French.
var (
	leadershipTokens = tokenSet("officer", "director", "directeur", "responsable", "chief", "head", "lead")
	aiTokens         = tokenSet("ai", "ia")
	hardExcludes     = tokenSet("technician", "center", "centre", "facilities", "entry", "clerk", "assistant", "collector", "survey", "security", "shift", "hvac", "electrical")
)

// Stats summarizes one file's pass through the stage.
type Stats struct {
	Rows      int
	Matched   int
	Unmatched int
}

// Standardize rewrites role_name in place to canonical taxonomy roles.
// Titles that match nothing become Unmatched and go to the unmatched-role
// report; the raw title is only recoverable from there.
func Standardize(ref *refdata.Ref, unmatched *audit.Log, t *model.Table) Stats {
	var stats Stats
	log := zap.L().With(zap.String("stage", "role"))

	for _, row := range t.Rows {
		stats.Rows++
		raw := row.Get(FieldRole)
		if !raw.IsReal() {
			continue
		}

		roles := Match(ref, raw.Raw())
		if len(roles) == 0 {
			row.Set(FieldRole, model.Unmatched())
			unmatched.Add(audit.Entry{
				SourceName: row.Get(schema.ColSourceName).Raw(),
				SourceID:   row.Get(schema.ColSourceID).Raw(),
				RawValue:   raw.Raw(),
			})
			stats.Unmatched++
			continue
		}
		row.Set(FieldRole, model.Real(strings.Join(roles, RoleSeparator)))
		stats.Matched++
	}

	log.Info("role standardization complete",
		zap.Int("rows", stats.Rows),
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched))
	return stats
}

// Match resolves one raw title to its canonical roles, sorted and
// deduplicated. An empty result means no tier matched.
func Match(ref *refdata.Ref, rawTitle string) []string {
	title := textnorm.Title(rawTitle)
	tokens := textnorm.Tokens(title)
	if len(tokens) == 0 {
		return nil
	}
	phrases := buildPhrases(tokens)

	matched := map[string]bool{}
	for _, role := range ref.Roles() {
		if !anyTermIn(role.Terms, phrases) {
			continue
		}
		if anyTermIn(role.Excludes, phrases) {
			continue
		}
		matched[role.Canonical] = true
	}

	// Tier 2: data context + core word, still subject to the target role's
	// exclude terms.
	if len(matched) == 0 && hasAny(tokens, contextTokens) {
		for _, tok := range tokens {
			canonical, ok := coreRoles[tok]
			if !ok {
				continue
			}
			if excludedBy(ref, canonical, phrases) {
				continue
			}
			matched[canonical] = true
		}
	}

	// Tier 3: data leadership titles carry no core word at all.
	if len(matched) == 0 && hasToken(tokens, "data") && hasAny(tokens, leadershipTokens) && !hasAny(tokens, hardExcludes) {
		if hasAny(tokens, aiTokens) {
			matched["Data Lead"] = true
		} else {
			matched["Data Manager"] = true
		}
	}

	if len(matched) == 0 {
		return nil
	}
	roles := make([]string, 0, len(matched))
	for r := range matched {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// buildPhrases returns every 1..3-token window of the title as a set.
func buildPhrases(tokens []string) map[string]bool {
	phrases := make(map[string]bool)
	for i := range tokens {
		for n := 1; n <= maxPhraseLen && i+n <= len(tokens); n++ {
			phrases[strings.Join(tokens[i:i+n], " ")] = true
		}
	}
	return phrases
}

func anyTermIn(terms []string, phrases map[string]bool) bool {
	for _, t := range terms {
		if phrases[t] {
			return true
		}
	}
	return false
}

func excludedBy(ref *refdata.Ref, canonical string, phrases map[string]bool) bool {
	for _, role := range ref.Roles() {
		if role.Canonical == canonical {
			return anyTermIn(role.Excludes, phrases)
		}
	}
	return false
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func hasAny(tokens []string, set map[string]bool) bool {
	for _, t := range tokens {
		if set[t] {
			return true
		}
	}
	return false
}

func tokenSet(tokens ...string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
