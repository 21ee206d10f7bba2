// Package salary canonicalizes salary ranges into yearly USD. The raw
// min/max pair may arrive in any currency and any pay unit; the unit is
// never stated and must be inferred from the magnitude of the values.
package salary

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
)

// Canonical field names this stage owns.
const (
	FieldMin      = "salary_min"
	FieldMax      = "salary_max"
	FieldCurrency = "currency"
)

// band is the plausible USD value range for one pay unit.
type band struct {
	unit   string
	lo, hi float64
	// perYear annualizes a value quoted in this unit.
	perYear float64
}

// Unit bands and their fixed priority order. The bands overlap (a value of
// 5000 could be weekly or monthly), so resolution depends on iterating this
// slice in order and taking the first plausible unit, never on map order.
var unitBands = []band{
	{unit: "hour", lo: 15, hi: 250, perYear: 2080},
	{unit: "week", lo: 400, hi: 8000, perYear: 52},
	{unit: "month", lo: 1500, hi: 40000, perYear: 12},
	{unit: "year", lo: 20000, hi: 500000, perYear: 1},
}

// Yearly USD interval every canonicalized range must fall within.
const (
	yearlyFloor = 20000
	yearlyCeil  = 500000
)

// Stats summarizes one file's pass through the stage. Invalid counts rows
// this pass invalidated; Skipped counts rows that arrived already terminal.
type Stats struct {
	Rows      int
	Converted int
	Missing   int
	Invalid   int
	Skipped   int
}

// Normalize rewrites salary_min/salary_max in place to rounded yearly USD.
// Row-level failures become the Invalid marker and never abort the file.
func Normalize(ref *refdata.Ref, t *model.Table) Stats {
	var stats Stats
	log := zap.L().With(zap.String("stage", "salary"))

	for _, row := range t.Rows {
		stats.Rows++
		vmin, vmax := row.Get(FieldMin), row.Get(FieldMax)

		// Terminal markers from an earlier pass stay terminal.
		if vmin.IsTerminal() || vmax.IsTerminal() {
			stats.Skipped++
			continue
		}
		if vmin.IsNA() && vmax.IsNA() {
			stats.Missing++
			continue
		}
		// One-sided range: fill the absent side from the present one,
		// producing a degenerate [v, v] range.
		if vmin.IsNA() {
			vmin = vmax
		}
		if vmax.IsNA() {
			vmax = vmin
		}

		lo, okLo := parseAmount(vmin.Raw())
		hi, okHi := parseAmount(vmax.Raw())
		if !okLo || !okHi || lo <= 0 || hi <= 0 {
			markInvalid(row)
			stats.Invalid++
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}

		rate := usdRate(ref, row.Get(FieldCurrency))
		lo *= rate
		hi *= rate

		yearLo, yearHi, ok := annualize(lo, hi)
		if !ok {
			markInvalid(row)
			stats.Invalid++
			continue
		}

		row.Set(FieldMin, model.Real(formatAmount(yearLo)))
		row.Set(FieldMax, model.Real(formatAmount(yearHi)))
		if row.Get(FieldCurrency).IsReal() {
			row.Set(FieldCurrency, model.Real("USD"))
		}
		stats.Converted++
	}

	log.Info("salary normalization complete",
		zap.Int("rows", stats.Rows),
		zap.Int("converted", stats.Converted),
		zap.Int("missing", stats.Missing),
		zap.Int("invalid", stats.Invalid),
		zap.Int("skipped", stats.Skipped))
	return stats
}

// annualize infers the pay unit of a USD interval and converts it to
// yearly. Candidate units are those whose band overlaps [lo, hi]; the first
// candidate in priority order whose annualized interval overlaps the global
// yearly band wins. The chosen interval must then sit fully inside the
// yearly band.
func annualize(lo, hi float64) (float64, float64, bool) {
	for _, b := range unitBands {
		if hi < b.lo || lo > b.hi {
			continue
		}
		yearLo, yearHi := lo*b.perYear, hi*b.perYear
		if yearHi < yearlyFloor || yearLo > yearlyCeil {
			continue
		}
		if yearLo < yearlyFloor || yearHi > yearlyCeil {
			return 0, 0, false
		}
		return yearLo, yearHi, true
	}
	return 0, 0, false
}

// usdRate resolves the conversion rate for a row's currency value. An
// absent or unrecognized currency is treated as already USD.
func usdRate(ref *refdata.Ref, cur model.Value) float64 {
	if !cur.IsReal() {
		return 1
	}
	code := ref.CurrencyCode(cur.Raw())
	if code == "" {
		return 1
	}
	rate, ok := ref.Rate(code)
	if !ok {
		return 1
	}
	return rate
}

func markInvalid(row model.Row) {
	row.Set(FieldMin, model.Invalid())
	row.Set(FieldMax, model.Invalid())
}

var amountJunk = regexp.MustCompile(`[,\s$€£]`)

// parseAmount reads a numeric-like cell, tolerating thousands separators
// and stray currency symbols.
func parseAmount(s string) (float64, bool) {
	s = amountJunk.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// formatAmount rounds to cents and trims trailing zeros.
func formatAmount(v float64) string {
	v = math.Round(v*100) / 100
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
