// Package refdata loads the read-only reference tables the enrichment
// stages depend on: cities, countries, city aliases, currency rates and
// aliases, employment-type keywords, and the role taxonomy. The tables are
// loaded once per process into a Ref context and shared read-only; stages
// receive the context explicitly so tests can run on fixtures without disk.
package refdata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/jobpulse/ingest-cli/internal/textnorm"
)

// City is one row of the city reference table.
type City struct {
	Name       string `csv:"name"`
	Country    string `csv:"country"`
	CountryISO string `csv:"country_iso"`
}

// Country is one row of the country reference table. The city table does
// not carry coordinates or population, so country-level attributes always
// come from here.
type Country struct {
	Name       string  `csv:"name"`
	ISO        string  `csv:"iso"`
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
	Population int64   `csv:"population"`
}

// CityAlias maps an exonym or district name to its canonical city.
type CityAlias struct {
	Alias     string `csv:"alias"`
	Canonical string `csv:"canonical"`
}

// CurrencyRate converts one unit of a currency into USD.
type CurrencyRate struct {
	Code      string  `csv:"code"`
	RateToUSD float64 `csv:"rate_to_usd"`
}

// CurrencyAlias maps symbols and spellings onto an ISO 4217 code.
type CurrencyAlias struct {
	Alias string `csv:"alias"`
	Code  string `csv:"code"`
}

// EmploymentType maps a source keyword onto the canonical employment enum.
type EmploymentType struct {
	Keyword   string `csv:"keyword"`
	Canonical string `csv:"canonical"`
}

// RoleEntry is one canonical role of the taxonomy. The term lists are
// pipe-separated in the CSV.
type RoleEntry struct {
	Canonical    string `csv:"canonical_role"`
	Aliases      string `csv:"aliases"`
	StrongTerms  string `csv:"strong_terms"`
	Keywords     string `csv:"keywords"`
	ExcludeTerms string `csv:"exclude_terms"`
}

// Role is a taxonomy entry with its term lists split and normalized.
type Role struct {
	Canonical string
	// Terms holds every phrase that matches this role: aliases, strong
	// terms, keywords, and the normalized canonical name itself.
	Terms []string
	// Excludes veto a match when any of them appears in the title.
	Excludes []string
}

// Ref is the immutable reference-data context. All lookup keys go through
// textnorm so callers never deal with casing or accents.
type Ref struct {
	cities       map[string]City
	countries    map[string]Country
	countryByISO map[string]Country
	cityAliases  map[string]string
	rates        map[string]float64
	curAliases   map[string]string
	employment   map[string]string
	roles        []Role
}

// File names expected under the reference directory.
const (
	FileCities          = "cities.csv"
	FileCountries       = "countries.csv"
	FileCityAliases     = "city_aliases.csv"
	FileCurrencyRates   = "currency_rates.csv"
	FileCurrencyAliases = "currency_aliases.csv"
	FileEmploymentTypes = "employment_types.csv"
	FileRoleTaxonomy    = "role_taxonomy.csv"
)

// Load reads every reference table from dir and builds the lookup context.
func Load(dir string) (*Ref, error) {
	var (
		cities     []City
		countries  []Country
		aliases    []CityAlias
		rates      []CurrencyRate
		curAliases []CurrencyAlias
		employment []EmploymentType
		taxonomy   []RoleEntry
	)
	loads := []struct {
		file string
		dst  any
	}{
		{FileCities, &cities},
		{FileCountries, &countries},
		{FileCityAliases, &aliases},
		{FileCurrencyRates, &rates},
		{FileCurrencyAliases, &curAliases},
		{FileEmploymentTypes, &employment},
		{FileRoleTaxonomy, &taxonomy},
	}
	for _, l := range loads {
		if err := readCSV(filepath.Join(dir, l.file), l.dst); err != nil {
			return nil, err
		}
	}
	return New(cities, countries, aliases, rates, curAliases, employment, taxonomy)
}

// New builds a Ref from in-memory tables. Tests construct fixtures here.
func New(
	cities []City,
	countries []Country,
	aliases []CityAlias,
	rates []CurrencyRate,
	curAliases []CurrencyAlias,
	employment []EmploymentType,
	taxonomy []RoleEntry,
) (*Ref, error) {
	r := &Ref{
		cities:       make(map[string]City, len(cities)),
		countries:    make(map[string]Country, len(countries)),
		countryByISO: make(map[string]Country, len(countries)),
		cityAliases:  make(map[string]string, len(aliases)),
		rates:        make(map[string]float64, len(rates)),
		curAliases:   make(map[string]string, len(curAliases)),
		employment:   make(map[string]string, len(employment)),
	}
	for _, c := range cities {
		r.cities[textnorm.Key(c.Name)] = c
	}
	for _, c := range countries {
		r.countries[textnorm.Key(c.Name)] = c
		r.countryByISO[strings.ToUpper(strings.TrimSpace(c.ISO))] = c
	}
	for _, a := range aliases {
		r.cityAliases[textnorm.Key(a.Alias)] = a.Canonical
	}
	for _, rt := range rates {
		if rt.RateToUSD <= 0 {
			return nil, eris.Errorf("refdata: non-positive rate for currency %q", rt.Code)
		}
		r.rates[strings.ToUpper(strings.TrimSpace(rt.Code))] = rt.RateToUSD
	}
	for _, a := range curAliases {
		r.curAliases[currencyKey(a.Alias)] = strings.ToUpper(strings.TrimSpace(a.Code))
	}
	for _, e := range employment {
		r.employment[textnorm.Key(e.Keyword)] = e.Canonical
	}
	for _, t := range taxonomy {
		role := Role{Canonical: t.Canonical}
		seen := map[string]bool{}
		for _, list := range []string{t.Canonical, t.Aliases, t.StrongTerms, t.Keywords} {
			for _, term := range splitTerms(list) {
				if !seen[term] {
					seen[term] = true
					role.Terms = append(role.Terms, term)
				}
			}
		}
		role.Excludes = splitTerms(t.ExcludeTerms)
		r.roles = append(r.roles, role)
	}
	return r, nil
}

func splitTerms(list string) []string {
	var out []string
	for _, part := range strings.Split(list, "|") {
		if t := textnorm.Title(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func readCSV(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "refdata: read reference table")
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if err := csvutil.Unmarshal(raw, dst); err != nil {
		return eris.Wrapf(err, "refdata: decode %s", filepath.Base(path))
	}
	return nil
}

// City resolves a raw city string directly against the city table.
func (r *Ref) City(raw string) (City, bool) {
	c, ok := r.cities[textnorm.Key(raw)]
	return c, ok
}

// CityAlias resolves a raw city string through the alias table, returning
// the canonical city name.
func (r *Ref) CityAlias(raw string) (string, bool) {
	c, ok := r.cityAliases[textnorm.Key(raw)]
	return c, ok
}

// Country resolves a country name against the country table.
func (r *Ref) Country(raw string) (Country, bool) {
	c, ok := r.countries[textnorm.Key(raw)]
	return c, ok
}

// CountryByISO resolves an ISO 3166-1 alpha-2 code.
func (r *Ref) CountryByISO(iso string) (Country, bool) {
	c, ok := r.countryByISO[strings.ToUpper(strings.TrimSpace(iso))]
	return c, ok
}

// currencyKey normalizes a currency alias. Symbol aliases like "€" would
// vanish under the punctuation-stripping Key, so those keep their raw form.
func currencyKey(s string) string {
	if k := textnorm.Key(s); k != "" {
		return k
	}
	return strings.TrimSpace(s)
}

// CurrencyCode canonicalizes a raw currency string: alias table first, then
// any three-letter code that has a rate. Returns "" when unrecognized.
func (r *Ref) CurrencyCode(raw string) string {
	if code, ok := r.curAliases[currencyKey(raw)]; ok {
		return code
	}
	code := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := r.rates[code]; ok {
		return code
	}
	return ""
}

// Rate returns the USD conversion rate for an ISO currency code.
func (r *Ref) Rate(code string) (float64, bool) {
	rate, ok := r.rates[strings.ToUpper(strings.TrimSpace(code))]
	return rate, ok
}

// EmploymentType maps a raw employment string onto the canonical enum.
func (r *Ref) EmploymentType(raw string) (string, bool) {
	e, ok := r.employment[textnorm.Key(raw)]
	return e, ok
}

// Roles returns the role taxonomy. Callers must not mutate it.
func (r *Ref) Roles() []Role { return r.roles }
