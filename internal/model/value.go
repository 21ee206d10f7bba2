// Package model defines the core data types shared across the ingestion
// pipeline: field values with their marker states, rows, tables, and
// per-file stage tracking.
package model

// Marker strings used at the CSV boundary. Inside the pipeline a cell is
// always a Value; the markers only exist in serialized form.
const (
	MarkerNA        = "__NA__"
	MarkerInvalid   = "__INVALID__"
	MarkerUnmatched = "__UNMATCHED__"

	// MarkerDrop is a mapping-tool sentinel only. It never appears in a
	// persisted data row.
	MarkerDrop = "__DROP__"
)

// Kind discriminates the states a field value can be in.
type Kind int

const (
	KindReal Kind = iota
	KindNA
	KindInvalid
	KindUnmatched
)

// Value is a tagged union over a real cell value and the three marker
// states. The zero Value is NotAvailable.
type Value struct {
	kind Kind
	raw  string
}

// Real wraps a concrete cell value.
func Real(s string) Value { return Value{kind: KindReal, raw: s} }

// NA is the NotAvailable marker.
func NA() Value { return Value{kind: KindNA} }

// Invalid is the terminal validation-failure marker.
func Invalid() Value { return Value{kind: KindInvalid} }

// Unmatched is the terminal reference-lookup-failure marker.
func Unmatched() Value { return Value{kind: KindUnmatched} }

// ParseValue converts a serialized CSV cell into a Value. Empty cells are
// treated as NotAvailable, matching the upstream extraction convention.
func ParseValue(s string) Value {
	switch s {
	case "", MarkerNA:
		return NA()
	case MarkerInvalid:
		return Invalid()
	case MarkerUnmatched:
		return Unmatched()
	default:
		return Real(s)
	}
}

// Kind reports the state of the value.
func (v Value) Kind() Kind { return v.kind }

// IsReal reports whether the value carries real data.
func (v Value) IsReal() bool { return v.kind == KindReal }

// IsNA reports whether the value is the NotAvailable marker.
func (v Value) IsNA() bool { return v.kind == KindNA }

// IsInvalid reports whether the value is the Invalid marker.
func (v Value) IsInvalid() bool { return v.kind == KindInvalid }

// IsUnmatched reports whether the value is the Unmatched marker.
func (v Value) IsUnmatched() bool { return v.kind == KindUnmatched }

// IsTerminal reports whether the value is in a terminal marker state that a
// later stage must never overwrite with a guess.
func (v Value) IsTerminal() bool {
	return v.kind == KindInvalid || v.kind == KindUnmatched
}

// Raw returns the underlying string for real values and "" otherwise.
func (v Value) Raw() string {
	if v.kind == KindReal {
		return v.raw
	}
	return ""
}

// String serializes the value back into its CSV form.
func (v Value) String() string {
	switch v.kind {
	case KindReal:
		return v.raw
	case KindInvalid:
		return MarkerInvalid
	case KindUnmatched:
		return MarkerUnmatched
	default:
		return MarkerNA
	}
}
