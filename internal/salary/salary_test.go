package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
)

func fixtureRef(t *testing.T) *refdata.Ref {
	t.Helper()
	ref, err := refdata.New(nil, nil, nil,
		[]refdata.CurrencyRate{
			{Code: "USD", RateToUSD: 1},
			{Code: "EUR", RateToUSD: 1.08},
		},
		[]refdata.CurrencyAlias{{Alias: "euros", Code: "EUR"}},
		nil, nil,
	)
	require.NoError(t, err)
	return ref
}

func tableWith(rows ...model.Row) *model.Table {
	t := model.NewTable([]string{FieldMin, FieldMax, FieldCurrency})
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func row(min, max, currency string) model.Row {
	r := model.Row{}
	r.Set(FieldMin, model.ParseValue(min))
	r.Set(FieldMax, model.ParseValue(max))
	r.Set(FieldCurrency, model.ParseValue(currency))
	return r
}

func TestNormalizeUnitInference(t *testing.T) {
	ref := fixtureRef(t)

	tests := []struct {
		name     string
		min, max string
		wantMin  string
		wantMax  string
	}{
		{"already yearly", "50000", "70000", "50000", "70000"},
		{"hourly", "25", "35", "52000", "72800"},
		{"weekly", "1000", "1400", "52000", "72800"},
		{"monthly", "9000", "11000", "108000", "132000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := tableWith(row(tt.min, tt.max, "USD"))
			stats := Normalize(ref, tab)

			assert.Equal(t, 1, stats.Converted)
			assert.Equal(t, tt.wantMin, tab.Rows[0].Get(FieldMin).Raw())
			assert.Equal(t, tt.wantMax, tab.Rows[0].Get(FieldMax).Raw())
		})
	}
}

func TestNormalizeBelowAllBandsIsInvalid(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("5", "8", "USD"))

	stats := Normalize(ref, tab)

	assert.Equal(t, 1, stats.Invalid)
	assert.True(t, tab.Rows[0].Get(FieldMin).IsInvalid())
	assert.True(t, tab.Rows[0].Get(FieldMax).IsInvalid())
}

func TestNormalizeCurrencyConversion(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("40000", "60000", "euros"))

	Normalize(ref, tab)

	assert.Equal(t, "43200", tab.Rows[0].Get(FieldMin).Raw())
	assert.Equal(t, "64800", tab.Rows[0].Get(FieldMax).Raw())
	assert.Equal(t, "USD", tab.Rows[0].Get(FieldCurrency).Raw())
}

func TestNormalizeUnknownCurrencyTreatedAsUSD(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("50000", "70000", "doubloons"))

	Normalize(ref, tab)

	assert.Equal(t, "50000", tab.Rows[0].Get(FieldMin).Raw())
}

func TestNormalizeOneSidedRangeFillsSymmetrically(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("", "30", "USD"))

	Normalize(ref, tab)

	// 30/hour annualized on both sides.
	assert.Equal(t, "62400", tab.Rows[0].Get(FieldMin).Raw())
	assert.Equal(t, "62400", tab.Rows[0].Get(FieldMax).Raw())
}

func TestNormalizeBothMissingPreserved(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("", "", "USD"))

	stats := Normalize(ref, tab)

	assert.Equal(t, 1, stats.Missing)
	assert.True(t, tab.Rows[0].Get(FieldMin).IsNA())
	assert.True(t, tab.Rows[0].Get(FieldMax).IsNA())
}

func TestNormalizeUnparseableIsInvalid(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("competitive", "70000", "USD"))

	Normalize(ref, tab)

	assert.True(t, tab.Rows[0].Get(FieldMin).IsInvalid())
	assert.True(t, tab.Rows[0].Get(FieldMax).IsInvalid())
}

func TestNormalizeSwapsInvertedRange(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("70000", "50000", "USD"))

	Normalize(ref, tab)

	assert.Equal(t, "50000", tab.Rows[0].Get(FieldMin).Raw())
	assert.Equal(t, "70000", tab.Rows[0].Get(FieldMax).Raw())
}

func TestNormalizePreservesTerminalMarkers(t *testing.T) {
	ref := fixtureRef(t)
	r := model.Row{}
	r.Set(FieldMin, model.Invalid())
	r.Set(FieldMax, model.Real("70000"))
	tab := tableWith(r)

	stats := Normalize(ref, tab)

	assert.True(t, tab.Rows[0].Get(FieldMin).IsInvalid())
	assert.Equal(t, "70000", tab.Rows[0].Get(FieldMax).Raw())
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Invalid)
}

func TestNormalizeThousandsSeparators(t *testing.T) {
	ref := fixtureRef(t)
	tab := tableWith(row("50,000", "70,000", "USD"))

	Normalize(ref, tab)

	assert.Equal(t, "50000", tab.Rows[0].Get(FieldMin).Raw())
}

func TestAnnualizePriorityOrder(t *testing.T) {
	// 2000 sits in both the week and month bands; week comes first and
	// its annualization lands inside the yearly band, so week wins.
	lo, hi, ok := annualize(2000, 2000)
	require.True(t, ok)
	assert.Equal(t, float64(104000), lo)
	assert.Equal(t, float64(104000), hi)
}

func TestAnnualizeOverlapButNotContainedIsInvalid(t *testing.T) {
	// 150-400/hour overlaps the hour band and its yearly projection
	// overlaps the yearly band but exceeds the ceiling.
	_, _, ok := annualize(150, 400)
	assert.False(t, ok)
}
