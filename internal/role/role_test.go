package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingest-cli/internal/audit"
	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
)

func fixtureRef(t *testing.T) *refdata.Ref {
	t.Helper()
	ref, err := refdata.New(nil, nil, nil,
		[]refdata.CurrencyRate{{Code: "USD", RateToUSD: 1}},
		nil, nil,
		[]refdata.RoleEntry{
			{Canonical: "Data Scientist", Aliases: "data science", StrongTerms: "machine learning scientist"},
			{Canonical: "Data Engineer", Aliases: "etl developer", Keywords: "data pipeline", ExcludeTerms: "civil"},
			{Canonical: "Data Analyst", Aliases: "bi analyst"},
		},
	)
	require.NoError(t, err)
	return ref
}

func TestMatchTaxonomyTerms(t *testing.T) {
	ref := fixtureRef(t)

	tests := []struct {
		title string
		want  []string
	}{
		{"Senior Data Scientist (Remote)", []string{"Data Scientist"}},
		{"ETL Developer", []string{"Data Engineer"}},
		{"Machine-Learning Scientist", []string{"Data Scientist"}},
		{"Data Scientist / Data Engineer", []string{"Data Engineer", "Data Scientist"}},
		{"Civil Engineer, Data Pipeline Projects", nil},
		{"Gardener", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(ref, tt.title))
		})
	}
}

func TestMatchCoreWordFallback(t *testing.T) {
	ref := fixtureRef(t)

	tests := []struct {
		title string
		want  []string
	}{
		// No taxonomy term matches, but the data context plus a core word
		// resolves it.
		{"Data Quality Engineer", []string{"Data Engineer"}},
		{"Analytics Engineer", []string{"Data Engineer"}},
		{"ML Platform Architect", []string{"Data Architect"}},
		// Core word without any data-context token stays unmatched.
		{"Mechanical Engineer", nil},
		// The fallback target's exclude terms still veto.
		{"Civil Engineer, Big Data", nil},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(ref, tt.title))
		})
	}
}

func TestMatchLeadershipFallback(t *testing.T) {
	ref := fixtureRef(t)

	tests := []struct {
		title string
		want  []string
	}{
		{"Head of Data", []string{"Data Manager"}},
		{"Directeur Data", []string{"Data Manager"}},
		{"Chief Data & AI Officer", []string{"Data Lead"}},
		{"Responsable Data IA", []string{"Data Lead"}},
		// Hard excludes keep operational titles out of the fallback.
		{"Data Center Technician", nil},
		{"Data Entry Clerk Lead", nil},
		// Leadership token without "data" never triggers.
		{"Head of Marketing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(ref, tt.title))
		})
	}
}

func TestStandardize(t *testing.T) {
	ref := fixtureRef(t)
	unmatched := audit.NewLog()

	tab := model.NewTable([]string{FieldRole})
	matched := model.Row{FieldRole: model.Real("Data Scientist / Data Engineer")}
	missed := model.Row{
		FieldRole:            model.Real("Data Center Technician"),
		schema.ColSourceName: model.Real("jobs.csv"),
		schema.ColSourceID:   model.Real("017"),
	}
	absent := model.Row{}
	tab.Append(matched)
	tab.Append(missed)
	tab.Append(absent)

	stats := Standardize(ref, unmatched, tab)

	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, "Data Engineer | Data Scientist", matched.Get(FieldRole).Raw())
	assert.True(t, missed.Get(FieldRole).IsUnmatched())
	assert.True(t, absent.Get(FieldRole).IsNA())

	require.Equal(t, 1, unmatched.Len())
	assert.Equal(t, "Data Center Technician", unmatched.Entries()[0].RawValue)
}
