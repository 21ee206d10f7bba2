package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{"real value", "Berlin", KindReal},
		{"empty cell is not available", "", KindNA},
		{"na marker", "__NA__", KindNA},
		{"invalid marker", "__INVALID__", KindInvalid},
		{"unmatched marker", "__UNMATCHED__", KindUnmatched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, ParseValue(tt.in).Kind())
		})
	}
}

func TestValueRoundTrip(t *testing.T) {
	for _, s := range []string{"__NA__", "__INVALID__", "__UNMATCHED__", "plain"} {
		assert.Equal(t, s, ParseValue(s).String())
	}
}

func TestValueTerminality(t *testing.T) {
	assert.True(t, Invalid().IsTerminal())
	assert.True(t, Unmatched().IsTerminal())
	assert.False(t, NA().IsTerminal())
	assert.False(t, Real("x").IsTerminal())
}

func TestZeroValueIsNA(t *testing.T) {
	var v Value
	assert.True(t, v.IsNA())
	assert.Equal(t, MarkerNA, v.String())
}

func TestRowGetDefaultsToNA(t *testing.T) {
	r := Row{}
	assert.True(t, r.Get("anything").IsNA())

	r.Set("city", Real("Paris"))
	assert.Equal(t, "Paris", r.Get("city").Raw())
}

func TestPipelineFileStatus(t *testing.T) {
	f := PipelineFile{Name: "jobs.csv", Origin: OriginExternal}
	assert.Equal(t, StatusNotStarted, f.Status("map"))

	f.SetStatus("map", StatusDone)
	assert.Equal(t, StatusDone, f.Status("map"))
}
