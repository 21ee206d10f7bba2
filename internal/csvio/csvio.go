// Package csvio is the file boundary of the pipeline: CSV reading that
// tolerates a UTF-8 BOM and ragged rows, atomic CSV writing with a BOM for
// Excel compatibility, and first-sheet XLSX reading for spreadsheet sources.
package csvio

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/jobpulse/ingest-cli/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable reads a CSV or XLSX file into a Table. The first row is the
// header; short data rows are padded with NotAvailable.
func ReadTable(path string) (*model.Table, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readXLSX(path)
	} else {
		records, err = ReadRecords(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, eris.Errorf("csvio: %s has no header row", filepath.Base(path))
	}

	header := records[0]
	t := model.NewTable(header)
	for _, rec := range records[1:] {
		row := make(model.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row.Set(col, model.ParseValue(rec[i]))
			} else {
				row.Set(col, model.NA())
			}
		}
		t.Append(row)
	}
	return t, nil
}

// ReadRecords reads raw CSV records, stripping a leading UTF-8 BOM.
func ReadRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csvio: open")
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csvio: read %s", filepath.Base(path))
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "csvio: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("csvio: %s has no sheets", filepath.Base(path))
	}
	sheet := f.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		records = append(records, cells)
	}
	return records, nil
}

// WriteTable writes a table to path atomically: the file is written to a
// temporary sibling and renamed into place, so an interrupted run never
// leaves a partial output that a later status scan would count as done.
func WriteTable(path string, t *model.Table) error {
	records := make([][]string, 0, t.Len()+1)
	records = append(records, t.Columns)
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[i] = row.Get(col).String()
		}
		records = append(records, rec)
	}
	return WriteRecords(path, records)
}

// WriteRecords writes raw CSV records atomically with a UTF-8 BOM.
func WriteRecords(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "csvio: create output dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "csvio: create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(utf8BOM); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csvio: write bom")
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csvio: write records")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "csvio: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "csvio: rename into place")
	}
	return nil
}
