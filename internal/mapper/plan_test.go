package mapper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingest-cli/internal/schema"
)

func planFixture() *Plan {
	return NewPlan("jobs.csv", []Suggestion{
		{Source: "Job Title", Action: ActionMap, Target: "role_name"},
		{Source: "URL", Action: ActionDrop},
		{Source: "Mystery", Action: ActionUnresolved},
	})
}

func TestPlanValidateBlocksUnresolved(t *testing.T) {
	p := planFixture()
	err := p.Validate(schema.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mystery")
}

func TestPlanValidatePassesWhenResolved(t *testing.T) {
	p := planFixture()
	require.NoError(t, p.SetTarget("Mystery", "description"))
	assert.NoError(t, p.Validate(schema.Default()))
}

func TestPlanValidateRejectsUnknownTarget(t *testing.T) {
	p := planFixture()
	require.NoError(t, p.SetTarget("Mystery", "shoe_size"))
	assert.Error(t, p.Validate(schema.Default()))
}

func TestPlanValidateAllowsSourceIDTarget(t *testing.T) {
	p := planFixture()
	require.NoError(t, p.SetTarget("Mystery", schema.ColSourceID))
	assert.NoError(t, p.Validate(schema.Default()))
}

func TestPlanValidateRejectsSourceNameTarget(t *testing.T) {
	// __source_name is always set from the file name, so mapping a column
	// onto it would be silently ignored.
	p := planFixture()
	require.NoError(t, p.SetTarget("Mystery", schema.ColSourceName))
	assert.Error(t, p.Validate(schema.Default()))
}

func TestPlanDuplicatesNeedConfirmation(t *testing.T) {
	p := planFixture()
	require.NoError(t, p.SetTarget("Mystery", "role_name"))

	assert.Equal(t, []string{"role_name"}, p.Duplicates())
	require.Error(t, p.Validate(schema.Default()))

	p.ConfirmMerge("role_name")
	assert.NoError(t, p.Validate(schema.Default()))
	assert.Equal(t, []string{"Job Title", "Mystery"}, p.Sources("role_name"))
}

func TestPlanDropAndUndo(t *testing.T) {
	p := planFixture()

	require.NoError(t, p.Drop("Job Title"))
	assert.Empty(t, p.Sources("role_name"))

	require.True(t, p.Undo())
	assert.Equal(t, []string{"Job Title"}, p.Sources("role_name"))

	assert.False(t, p.Undo(), "history is exhausted")
}

func TestPlanUnknownSource(t *testing.T) {
	p := planFixture()
	assert.Error(t, p.SetTarget("nope", "role_name"))
	assert.Error(t, p.Drop("nope"))
}

func TestPlanSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	p := planFixture()
	p.ConfirmMerge("role_name")
	require.NoError(t, p.Save(path))

	back, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, p.File, back.File)
	assert.Equal(t, p.Columns, back.Columns)
	assert.Equal(t, p.ConfirmedMerges, back.ConfirmedMerges)
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
