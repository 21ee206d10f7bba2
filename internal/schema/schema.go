// Package schema describes the canonical ingestion schema every source
// dataset is mapped into. The schema ships embedded and can be overridden
// by a yaml file so new canonical fields do not require a rebuild.
package schema

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// Field is one canonical field definition.
type Field struct {
	Name        string   `yaml:"name"`
	Table       string   `yaml:"table"`
	Type        string   `yaml:"type"`
	Enum        []string `yaml:"enum,omitempty"`
	Description string   `yaml:"description,omitempty"`
	// DeriveTo lists the canonical fields a composite source column
	// decomposes into. Fields with a non-empty DeriveTo are parse targets
	// only and never appear in exported output.
	DeriveTo []string `yaml:"derive_to,omitempty"`
}

// Schema is the ordered canonical field set.
type Schema struct {
	Fields []Field `yaml:"fields"`

	byName map[string]*Field
}

// Provenance columns appended to every exported file.
const (
	ColSourceName = "__source_name"
	ColSourceID   = "__source_id"
)

// Default returns the embedded canonical schema.
func Default() *Schema {
	s, err := parse(defaultSchema)
	if err != nil {
		// The embedded schema is validated by tests; a parse failure here
		// is a build defect, not a runtime condition.
		panic(err)
	}
	return s
}

// Load reads a schema override from a yaml file.
func Load(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "schema: read schema file")
	}
	s, err := parse(raw)
	if err != nil {
		return nil, eris.Wrap(err, "schema: parse schema file")
	}
	return s, nil
}

func parse(raw []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.Fields) == 0 {
		return nil, eris.New("schema: no fields defined")
	}
	s.byName = make(map[string]*Field, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return nil, eris.New("schema: field with empty name")
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, eris.Errorf("schema: duplicate field %q", f.Name)
		}
		s.byName[f.Name] = f
	}
	for _, f := range s.Fields {
		for _, target := range f.DeriveTo {
			t, ok := s.byName[target]
			if !ok {
				return nil, eris.Errorf("schema: field %q derives to unknown field %q", f.Name, target)
			}
			if len(t.DeriveTo) > 0 {
				return nil, eris.Errorf("schema: field %q derives to composite field %q", f.Name, target)
			}
		}
	}
	return &s, nil
}

// Field looks up a canonical field by name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// IsComposite reports whether the named field is a parse-only composite.
func (s *Schema) IsComposite(name string) bool {
	f, ok := s.byName[name]
	return ok && len(f.DeriveTo) > 0
}

// ExportOrder returns the fixed output column order: every non-composite
// canonical field in declaration order, then the provenance columns.
func (s *Schema) ExportOrder() []string {
	out := make([]string, 0, len(s.Fields)+2)
	for _, f := range s.Fields {
		if len(f.DeriveTo) > 0 {
			continue
		}
		out = append(out, f.Name)
	}
	return append(out, ColSourceName, ColSourceID)
}

// Targets returns every field a mapping may point a source column at:
// non-composite fields plus composites (which expand on export).
func (s *Schema) Targets() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}
