package mapper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/textnorm"
)

// Derived-field parsers. Composite source columns (a salary-range string, a
// combined location, a remote flag) decompose into their canonical targets
// here; the actual write happens during export.

var salaryToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([kKmM])?`)

// ParseSalaryRange extracts up to two numeric tokens with optional K/M
// suffixes from a salary-range string. Commas are thousands separators and
// are stripped before matching. A single number yields a degenerate [v, v]
// range.
func ParseSalaryRange(s string) (min, max string, ok bool) {
	s = strings.ReplaceAll(s, ",", "")
	matches := salaryToken.FindAllStringSubmatch(s, 2)
	var vals []float64
	for _, m := range matches {
		if m[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 0:
		return "", "", false
	case 1:
		v := strconv.FormatFloat(vals[0], 'f', -1, 64)
		return v, v, true
	default:
		if vals[0] > vals[1] {
			vals[0], vals[1] = vals[1], vals[0]
		}
		return strconv.FormatFloat(vals[0], 'f', -1, 64), strconv.FormatFloat(vals[1], 'f', -1, 64), true
	}
}

// remoteKeywords flag a location token as meaning "no fixed workplace".
var remoteKeywords = map[string]bool{
	"remote":         true,
	"fully remote":   true,
	"anywhere":       true,
	"worldwide":      true,
	"home office":    true,
	"homeoffice":     true,
	"teletravail":    true,
	"work from home": true,
}

var locationDelims = regexp.MustCompile(`[,\-|/]`)

// Location is the decomposition of a combined location string.
type Location struct {
	City    string
	Country string
	Remote  bool
}

// ParseLocation splits a combined location on common delimiters and
// classifies each token against the city and country reference tables and
// the remote-keyword set. The first city-like and first country-like token
// win; later ones are ignored.
func ParseLocation(ref *refdata.Ref, s string) Location {
	var loc Location
	for _, part := range locationDelims.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if remoteKeywords[textnorm.Title(part)] {
			loc.Remote = true
			continue
		}
		if loc.City == "" {
			if c, ok := ref.City(part); ok {
				loc.City = c.Name
				continue
			}
			if canonical, ok := ref.CityAlias(part); ok {
				loc.City = canonical
				continue
			}
		}
		if loc.Country == "" {
			if c, ok := ref.Country(part); ok {
				loc.Country = c.Name
				continue
			}
			if c, ok := ref.CountryByISO(part); ok && len(part) == 2 {
				loc.Country = c.Name
			}
		}
	}
	return loc
}

// Remote-option enum values.
const (
	RemoteOnsite = "Onsite"
	RemoteHybrid = "Hybrid"
	RemoteFull   = "Remote"
)

var truthy = map[string]bool{"true": true, "yes": true, "y": true, "1": true}
var falsy = map[string]bool{"false": true, "no": true, "n": true, "0": true}

// ParseWFHFlag maps a boolean remote indicator onto the remote-option enum.
func ParseWFHFlag(s string) (string, bool) {
	switch norm := strings.ToLower(strings.TrimSpace(s)); {
	case truthy[norm]:
		return RemoteFull, true
	case falsy[norm]:
		return RemoteOnsite, true
	default:
		return "", false
	}
}

// dateLayouts are the source date formats seen across the job boards, in
// trial order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate canonicalizes a source date onto ISO yyyy-mm-dd. Unrecognized
// formats report false and the raw value is kept as-is.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseRemoteRatio maps a remote-work percentage onto the remote-option
// enum: 0 is Onsite, 100 is Remote, anything between is Hybrid.
func ParseRemoteRatio(s string) (string, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return "", false
	}
	switch {
	case v == 0:
		return RemoteOnsite, true
	case v == 100:
		return RemoteFull, true
	default:
		return RemoteHybrid, true
	}
}
