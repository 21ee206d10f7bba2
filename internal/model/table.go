package model

// Row maps canonical field names to their values. Fields absent from the
// map read as NotAvailable.
type Row map[string]Value

// Get returns the value for a field, NotAvailable when the field is absent.
func (r Row) Get(field string) Value {
	if v, ok := r[field]; ok {
		return v
	}
	return NA()
}

// Set stores a value for a field.
func (r Row) Set(field string, v Value) { r[field] = v }

// Table is an in-memory stage dataset: a fixed column order plus rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row to the table.
func (t *Table) Append(r Row) { t.Rows = append(t.Rows, r) }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
