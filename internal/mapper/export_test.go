package mapper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/schema"
)

func exportFixture() (*Plan, *model.Table) {
	plan := NewPlan("jobs.csv", []Suggestion{
		{Source: "Job Title", Action: ActionMap, Target: "role_name"},
		{Source: "Company", Action: ActionMap, Target: "company_name"},
		{Source: "Location", Action: ActionMap, Target: "location_city_country"},
		{Source: "Salary", Action: ActionMap, Target: "salary_min_max"},
		{Source: "Type", Action: ActionMap, Target: "employment_type"},
		{Source: "Ref", Action: ActionMap, Target: "__source_id"},
		{Source: "URL", Action: ActionDrop},
	})

	src := model.NewTable([]string{"Job Title", "Company", "Location", "Salary", "Type", "Ref", "URL"})
	src.Append(model.Row{
		"Job Title": model.Real("Data Scientist"),
		"Company":   model.Real("  Acme   Corp "),
		"Location":  model.Real("Paris, France"),
		"Salary":    model.Real("40k-60k"),
		"Type":      model.Real("Full Time"),
		"Ref":       model.Real("A-17"),
		"URL":       model.Real("https://example.com/1"),
	})
	src.Append(model.Row{
		"Job Title": model.Real("ETL Developer"),
	})
	return plan, src
}

func TestExport(t *testing.T) {
	ref := fixtureRef(t)
	plan, src := exportFixture()

	out, report, err := Export(schema.Default(), ref, plan, src, "jobs.csv")
	require.NoError(t, err)

	assert.Equal(t, schema.Default().ExportOrder(), out.Columns)
	require.Equal(t, 2, out.Len())

	first := out.Rows[0]
	assert.Equal(t, "Data Scientist", first.Get("role_name").Raw())
	assert.Equal(t, "Acme Corp", first.Get("company_name").Raw(), "whitespace collapsed")
	assert.Equal(t, "Paris", first.Get("city").Raw())
	assert.Equal(t, "France", first.Get("country").Raw())
	assert.Equal(t, "40000", first.Get("salary_min").Raw())
	assert.Equal(t, "60000", first.Get("salary_max").Raw())
	assert.Equal(t, "Full-time", first.Get("employment_type").Raw())
	assert.Equal(t, "jobs.csv", first.Get(schema.ColSourceName).Raw())
	assert.Equal(t, "A-17", first.Get(schema.ColSourceID).Raw())

	second := out.Rows[1]
	assert.True(t, second.Get("city").IsNA(), "unmapped fields fill with NA")
	assert.Equal(t, "002", second.Get(schema.ColSourceID).Raw(), "generated ordinal id")

	assert.Equal(t, 2, report.Rows)
	assert.Contains(t, report.MissingFields, "posted_date")
	assert.NotContains(t, report.MissingFields, "salary_min", "covered through the composite")
	assert.NotContains(t, report.MissingFields, "remote_option", "covered through the composite")
}

func TestExportBlockedByInvalidPlan(t *testing.T) {
	ref := fixtureRef(t)
	plan, src := exportFixture()
	plan.Columns = append(plan.Columns, Column{Source: "Extra", Action: ActionUnresolved})

	_, _, err := Export(schema.Default(), ref, plan, src, "jobs.csv")
	assert.Error(t, err)
}

func TestExportDirectMapBeatsDerived(t *testing.T) {
	ref := fixtureRef(t)
	plan := NewPlan("jobs.csv", []Suggestion{
		{Source: "City", Action: ActionMap, Target: "city"},
		{Source: "Location", Action: ActionMap, Target: "location_city_country"},
	})
	src := model.NewTable([]string{"City", "Location"})
	src.Append(model.Row{
		"City":     model.Real("Beijing"),
		"Location": model.Real("Paris, France"),
	})

	out, _, err := Export(schema.Default(), ref, plan, src, "jobs.csv")
	require.NoError(t, err)

	assert.Equal(t, "Beijing", out.Rows[0].Get("city").Raw())
	assert.Equal(t, "France", out.Rows[0].Get("country").Raw(), "derived still fills the gaps")
}

func TestExportConfirmedMergeConcatenates(t *testing.T) {
	ref := fixtureRef(t)
	plan := NewPlan("jobs.csv", []Suggestion{
		{Source: "Summary", Action: ActionMap, Target: "description"},
		{Source: "Details", Action: ActionMap, Target: "description"},
	})
	plan.ConfirmMerge("description")

	src := model.NewTable([]string{"Summary", "Details"})
	src.Append(model.Row{
		"Summary": model.Real("Build pipelines"),
		"Details": model.Real("On the data platform team"),
	})
	src.Append(model.Row{
		"Details": model.Real("Second half only"),
	})

	out, report, err := Export(schema.Default(), ref, plan, src, "jobs.csv")
	require.NoError(t, err)

	assert.Equal(t, "Build pipelines | On the data platform team", out.Rows[0].Get("description").Raw())
	assert.Equal(t, "Second half only", out.Rows[1].Get("description").Raw(), "absent sides drop out of the join")
	assert.Equal(t, []string{"description"}, report.MergedTargets)
}

func TestReportWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs_report.json")
	r := &Report{SourceFile: "jobs.csv", Rows: 3}
	require.NoError(t, r.Write(path))
	assert.FileExists(t, path)
}
