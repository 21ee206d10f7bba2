package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingest-cli/internal/model"
)

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	content := "title,city,salary\nAnalyst,Paris,50000\nEngineer,__NA__,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tab, err := ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "city", "salary"}, tab.Columns)
	require.Equal(t, 2, tab.Len())
	assert.Equal(t, "Paris", tab.Rows[0].Get("city").Raw())
	assert.True(t, tab.Rows[1].Get("city").IsNA(), "explicit NA marker")
	assert.True(t, tab.Rows[1].Get("salary").IsNA(), "empty cell reads as NA")
}

func TestReadTableStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := "\xEF\xBB\xBFtitle,city\nAnalyst,Paris\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tab, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "title", tab.Columns[0])
}

func TestReadTablePadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "a,b,c\n1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tab, err := ReadTable(path)
	require.NoError(t, err)
	assert.True(t, tab.Rows[0].Get("c").IsNA())
}

func TestWriteTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tab := model.NewTable([]string{"city", "salary_min"})
	row := model.Row{}
	row.Set("city", model.Real("Berlin"))
	row.Set("salary_min", model.Invalid())
	tab.Append(row)

	require.NoError(t, WriteTable(path, tab))

	// Output carries a BOM for spreadsheet compatibility.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])

	back, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, tab.Columns, back.Columns)
	assert.True(t, back.Rows[0].Get("salary_min").IsInvalid())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteTableFillsAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	tab := model.NewTable([]string{"city", "country"})
	tab.Append(model.Row{"city": model.Real("Lyon")})
	require.NoError(t, WriteTable(path, tab))

	back, err := ReadTable(path)
	require.NoError(t, err)
	assert.True(t, back.Rows[0].Get("country").IsNA())
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadTableEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := ReadTable(path)
	assert.Error(t, err)
}
