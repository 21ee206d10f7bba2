package mapper

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/jobpulse/ingest-cli/internal/schema"
)

// Column is the explicit disposition of one source column inside a plan.
type Column struct {
	Source string `yaml:"source"`
	Action Action `yaml:"action"`
	Target string `yaml:"target,omitempty"`
}

// Plan is the full mapping decision for one source file. Export requires
// the plan to validate: every column dispositioned, every multi-source
// target explicitly confirmed as a merge.
type Plan struct {
	File    string   `yaml:"file,omitempty"`
	Columns []Column `yaml:"columns"`
	// ConfirmedMerges lists canonical targets the user has approved
	// receiving more than one source column.
	ConfirmedMerges []string `yaml:"confirmed_merges,omitempty"`

	undo []Column
}

// NewPlan seeds a plan from suggestions, preserving source-column order.
func NewPlan(file string, suggestions []Suggestion) *Plan {
	p := &Plan{File: file, Columns: make([]Column, len(suggestions))}
	for i, s := range suggestions {
		p.Columns[i] = Column{Source: s.Source, Action: s.Action, Target: s.Target}
	}
	return p
}

// LoadPlan reads a plan from a yaml file.
func LoadPlan(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "mapper: read plan file")
	}
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, eris.Wrap(err, "mapper: parse plan file")
	}
	return &p, nil
}

// Save writes the plan as yaml.
func (p *Plan) Save(path string) error {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "mapper: marshal plan")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrap(err, "mapper: write plan file")
	}
	return nil
}

func (p *Plan) column(source string) *Column {
	for i := range p.Columns {
		if p.Columns[i].Source == source {
			return &p.Columns[i]
		}
	}
	return nil
}

// SetTarget maps a source column onto a canonical field.
func (p *Plan) SetTarget(source, target string) error {
	c := p.column(source)
	if c == nil {
		return eris.Errorf("mapper: unknown source column %q", source)
	}
	c.Action, c.Target = ActionMap, target
	return nil
}

// Drop marks a source column as dropped and pushes the previous disposition
// onto the undo history.
func (p *Plan) Drop(source string) error {
	c := p.column(source)
	if c == nil {
		return eris.Errorf("mapper: unknown source column %q", source)
	}
	p.undo = append(p.undo, *c)
	c.Action, c.Target = ActionDrop, ""
	return nil
}

// Undo restores the most recently dropped column's prior disposition.
func (p *Plan) Undo() bool {
	if len(p.undo) == 0 {
		return false
	}
	last := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	if c := p.column(last.Source); c != nil {
		*c = last
	}
	return true
}

// ConfirmMerge approves a canonical target receiving multiple sources.
func (p *Plan) ConfirmMerge(target string) {
	for _, t := range p.ConfirmedMerges {
		if t == target {
			return
		}
	}
	p.ConfirmedMerges = append(p.ConfirmedMerges, target)
}

func (p *Plan) mergeConfirmed(target string) bool {
	for _, t := range p.ConfirmedMerges {
		if t == target {
			return true
		}
	}
	return false
}

// Sources returns the source columns mapped to a target, in source order.
func (p *Plan) Sources(target string) []string {
	var out []string
	for _, c := range p.Columns {
		if c.Action == ActionMap && c.Target == target {
			out = append(out, c.Source)
		}
	}
	return out
}

// Duplicates returns the canonical targets with more than one source,
// sorted for stable reporting.
func (p *Plan) Duplicates() []string {
	counts := map[string]int{}
	for _, c := range p.Columns {
		if c.Action == ActionMap && c.Target != "" {
			counts[c.Target]++
		}
	}
	var dups []string
	for target, n := range counts {
		if n > 1 {
			dups = append(dups, target)
		}
	}
	sort.Strings(dups)
	return dups
}

// Validate checks the plan against the schema. Any unresolved column,
// unknown target, or unconfirmed duplicate target blocks export.
func (p *Plan) Validate(sch *schema.Schema) error {
	for _, c := range p.Columns {
		switch c.Action {
		case ActionDrop:
		case ActionMap:
			if c.Target == schema.ColSourceName {
				return eris.Errorf("mapper: column %q maps to %q, which export always sets from the file name", c.Source, schema.ColSourceName)
			}
			if c.Target == schema.ColSourceID {
				continue
			}
			if _, ok := sch.Field(c.Target); !ok {
				return eris.Errorf("mapper: column %q maps to unknown field %q", c.Source, c.Target)
			}
		default:
			return eris.Errorf("mapper: column %q is unresolved", c.Source)
		}
	}
	for _, target := range p.Duplicates() {
		if !p.mergeConfirmed(target) {
			return eris.Errorf("mapper: %d columns map to %q; confirm the merge to proceed", len(p.Sources(target)), target)
		}
	}
	return nil
}
