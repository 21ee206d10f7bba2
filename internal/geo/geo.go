// Package geo enriches location fields from the reference tables. The
// passes are layered and only ever add information: a value another pass
// already resolved is never downgraded, and markers set by earlier stages
// stay put.
package geo

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/audit"
	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
)

// Canonical field names this stage owns.
const (
	FieldCity       = "city"
	FieldCountry    = "country"
	FieldCountryISO = "country_iso"
	FieldLatitude   = "latitude"
	FieldLongitude  = "longitude"
	FieldPopulation = "population"
)

// Stats summarizes one file's pass through the stage.
type Stats struct {
	Rows      int
	Resolved  int
	Unmatched int
}

// Enrich resolves city names through the alias and city tables, derives
// country name and ISO code, and fills country-level attributes from the
// country table. Cities that resolve through no pass become Unmatched and
// are recorded in the unmatched-city report.
func Enrich(ref *refdata.Ref, unmatched *audit.Log, t *model.Table) Stats {
	var stats Stats
	log := zap.L().With(zap.String("stage", "geo"))

	for _, row := range t.Rows {
		stats.Rows++
		enrichRow(ref, unmatched, row, &stats)
	}

	log.Info("geo enrichment complete",
		zap.Int("rows", stats.Rows),
		zap.Int("resolved", stats.Resolved),
		zap.Int("unmatched", stats.Unmatched))
	return stats
}

func enrichRow(ref *refdata.Ref, unmatched *audit.Log, row model.Row, stats *Stats) {
	// Pass 1: raw city -> canonical city, via the city table directly or
	// through the alias table. A present city that resolves through
	// neither is a terminal reference miss.
	if raw := row.Get(FieldCity); raw.IsReal() {
		city, ok := resolveCity(ref, raw.Raw())
		if !ok {
			row.Set(FieldCity, model.Unmatched())
			unmatched.Add(audit.Entry{
				SourceName: row.Get(schema.ColSourceName).Raw(),
				SourceID:   row.Get(schema.ColSourceID).Raw(),
				RawValue:   raw.Raw(),
			})
			stats.Unmatched++
		} else {
			row.Set(FieldCity, model.Real(city.Name))
			// Pass 2: the city table names the country authoritatively.
			row.Set(FieldCountry, model.Real(city.Country))
			row.Set(FieldCountryISO, model.Real(city.CountryISO))
			stats.Resolved++
		}
	}

	// Pass 3: a valid ISO code wins over a possibly stale country name.
	if iso := row.Get(FieldCountryISO); iso.IsReal() {
		if c, ok := ref.CountryByISO(iso.Raw()); ok {
			row.Set(FieldCountry, model.Real(c.Name))
			row.Set(FieldCountryISO, model.Real(c.ISO))
		}
	}

	// Pass 4: country name -> full record. Coordinates and population only
	// exist at country level.
	if name := row.Get(FieldCountry); name.IsReal() {
		if c, ok := ref.Country(name.Raw()); ok {
			row.Set(FieldCountry, model.Real(c.Name))
			row.Set(FieldCountryISO, model.Real(c.ISO))
			setIfAbsent(row, FieldLatitude, formatFloat(c.Latitude))
			setIfAbsent(row, FieldLongitude, formatFloat(c.Longitude))
			setIfAbsent(row, FieldPopulation, formatInt(c.Population))
		}
	}
}

func resolveCity(ref *refdata.Ref, raw string) (refdata.City, bool) {
	if c, ok := ref.City(raw); ok {
		return c, true
	}
	if canonical, ok := ref.CityAlias(raw); ok {
		// An alias target still has to verify against the city table.
		if c, ok := ref.City(canonical); ok {
			return c, true
		}
	}
	return refdata.City{}, false
}

func setIfAbsent(row model.Row, field, value string) {
	if row.Get(field).IsNA() {
		row.Set(field, model.Real(value))
	}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }
