package mapper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
)

// MergeSeparator joins values when a confirmed merge concatenates multiple
// source columns into one canonical field.
const MergeSeparator = " | "

// Report records what a mapping export produced, written as json next to
// the mapped file.
type Report struct {
	SourceFile    string   `json:"source_file"`
	Rows          int      `json:"rows"`
	Columns       []Column `json:"columns"`
	MergedTargets []string `json:"merged_targets,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// WriteReport writes the report as indented json.
func (r *Report) Write(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "mapper: marshal report")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrap(err, "mapper: write report")
	}
	return nil
}

// Export applies a validated plan to a source table and emits the full
// canonical field set in fixed order. Canonical fields with no source fill
// with NotAvailable; composite sources decompose into their derive targets
// without overwriting directly mapped values.
func Export(sch *schema.Schema, ref *refdata.Ref, plan *Plan, src *model.Table, sourceName string) (*model.Table, *Report, error) {
	if err := plan.Validate(sch); err != nil {
		return nil, nil, err
	}

	order := sch.ExportOrder()
	out := model.NewTable(order)
	for i, srcRow := range src.Rows {
		row := make(model.Row, len(order))

		for _, field := range sch.Targets() {
			sources := plan.Sources(field)
			if len(sources) == 0 {
				continue
			}
			v := mergedValue(srcRow, sources)
			if sch.IsComposite(field) {
				deriveInto(ref, row, field, v)
				continue
			}
			setIfMissing(row, field, normalizeField(ref, field, v))
		}

		row.Set(schema.ColSourceName, model.Real(sourceName))
		setIfMissing(row, schema.ColSourceID, sourceID(srcRow, plan, i))
		out.Append(row)
	}

	report := &Report{
		SourceFile:    sourceName,
		Rows:          out.Len(),
		Columns:       plan.Columns,
		MergedTargets: plan.Duplicates(),
		MissingFields: missingFields(sch, plan),
	}
	zap.L().Info("mapping export complete",
		zap.String("source", sourceName),
		zap.Int("rows", report.Rows),
		zap.Int("missing_fields", len(report.MissingFields)))
	return out, report, nil
}

// mergedValue reads the mapped sources of one field in source-column order,
// concatenating non-empty values when a confirmed merge spans several.
func mergedValue(srcRow model.Row, sources []string) model.Value {
	var parts []string
	for _, s := range sources {
		if v := srcRow.Get(s); v.IsReal() {
			parts = append(parts, v.Raw())
		}
	}
	if len(parts) == 0 {
		return model.NA()
	}
	return model.Real(strings.Join(parts, MergeSeparator))
}

// deriveInto decomposes a composite value into its canonical targets.
func deriveInto(ref *refdata.Ref, row model.Row, field string, v model.Value) {
	if !v.IsReal() {
		return
	}
	switch field {
	case "salary_min_max":
		if lo, hi, ok := ParseSalaryRange(v.Raw()); ok {
			setIfMissing(row, "salary_min", model.Real(lo))
			setIfMissing(row, "salary_max", model.Real(hi))
		}
	case "location_city_country":
		loc := ParseLocation(ref, v.Raw())
		if loc.City != "" {
			setIfMissing(row, "city", model.Real(loc.City))
		}
		if loc.Country != "" {
			setIfMissing(row, "country", model.Real(loc.Country))
		}
		if loc.Remote {
			setIfMissing(row, "remote_option", model.Real(RemoteFull))
		}
	case "work_from_home_flag":
		if opt, ok := ParseWFHFlag(v.Raw()); ok {
			setIfMissing(row, "remote_option", model.Real(opt))
		}
	case "remote_ratio":
		if opt, ok := ParseRemoteRatio(v.Raw()); ok {
			setIfMissing(row, "remote_option", model.Real(opt))
		}
	}
}

// normalizeField applies the enum normalizations the mapper owns.
func normalizeField(ref *refdata.Ref, field string, v model.Value) model.Value {
	if !v.IsReal() {
		return v
	}
	switch field {
	case "employment_type":
		if canonical, ok := ref.EmploymentType(v.Raw()); ok {
			return model.Real(canonical)
		}
	case "remote_option":
		if opt, ok := ParseWFHFlag(v.Raw()); ok {
			return model.Real(opt)
		}
	case "posted_date", "expired_date":
		if iso, ok := ParseDate(v.Raw()); ok {
			return model.Real(iso)
		}
	case "company_name":
		return model.Real(strings.Join(strings.Fields(v.Raw()), " "))
	}
	return v
}

// sourceID reads a mapped id column or generates a zero-padded ordinal.
func sourceID(srcRow model.Row, plan *Plan, rowIdx int) model.Value {
	for _, s := range plan.Sources(schema.ColSourceID) {
		if v := srcRow.Get(s); v.IsReal() {
			return v
		}
	}
	return model.Real(fmt.Sprintf("%03d", rowIdx+1))
}

// setIfMissing writes a field unless a real value is already present, so a
// directly mapped column always beats a derived one.
func setIfMissing(row model.Row, field string, v model.Value) {
	if row.Get(field).IsReal() {
		return
	}
	row.Set(field, v)
}

func missingFields(sch *schema.Schema, plan *Plan) []string {
	covered := map[string]bool{}
	for _, c := range plan.Columns {
		if c.Action != ActionMap {
			continue
		}
		covered[c.Target] = true
		if f, ok := sch.Field(c.Target); ok {
			for _, t := range f.DeriveTo {
				covered[t] = true
			}
		}
	}
	var missing []string
	for _, f := range sch.ExportOrder() {
		if f == schema.ColSourceName || f == schema.ColSourceID {
			continue
		}
		if !covered[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
