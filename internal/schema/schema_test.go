package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	s := Default()
	require.NotEmpty(t, s.Fields)

	f, ok := s.Field("salary_min")
	require.True(t, ok)
	assert.Equal(t, "float", f.Type)

	comp, ok := s.Field("salary_min_max")
	require.True(t, ok)
	assert.Equal(t, []string{"salary_min", "salary_max"}, comp.DeriveTo)
	assert.True(t, s.IsComposite("salary_min_max"))
	assert.False(t, s.IsComposite("salary_min"))
}

func TestExportOrderExcludesComposites(t *testing.T) {
	s := Default()
	order := s.ExportOrder()

	assert.NotContains(t, order, "salary_min_max")
	assert.NotContains(t, order, "location_city_country")
	assert.NotContains(t, order, "work_from_home_flag")

	// Provenance columns close the row.
	require.GreaterOrEqual(t, len(order), 2)
	assert.Equal(t, ColSourceName, order[len(order)-2])
	assert.Equal(t, ColSourceID, order[len(order)-1])
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	yaml := `
fields:
  - name: role_name
    table: job_posting
    type: string
  - name: combined
    table: job_posting
    type: string
    derive_to: [role_name]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.IsComposite("combined"))
	assert.Equal(t, []string{"role_name", ColSourceName, ColSourceID}, s.ExportOrder())
}

func TestLoadRejectsBadSchemas(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "fields: []"},
		{"duplicate field", "fields:\n  - name: a\n    type: string\n  - name: a\n    type: string"},
		{"unknown derive target", "fields:\n  - name: a\n    type: string\n    derive_to: [nope]"},
		{"derive to composite", "fields:\n  - name: a\n    type: string\n    derive_to: [b]\n  - name: b\n    type: string\n    derive_to: [c]\n  - name: c\n    type: string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schema.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
