package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/jobpulse/ingest-cli/internal/csvio"
	"github.com/jobpulse/ingest-cli/internal/geo"
	"github.com/jobpulse/ingest-cli/internal/mapper"
	"github.com/jobpulse/ingest-cli/internal/role"
	"github.com/jobpulse/ingest-cli/internal/salary"
)

// Stage names in pipeline order.
const (
	StageMap    = "map"
	StageSalary = "salary"
	StageGeo    = "geo"
	StageRole   = "role"
)

// Dirs are the per-stage output directories.
type Dirs struct {
	Extracted    string
	Mapped       string
	Normalized   string
	Enriched     string
	Standardized string
}

// Stages builds the standard stage table: schema mapping, salary
// canonicalization, geo enrichment, role standardization.
func Stages(d Dirs) []Stage {
	return []Stage{
		{Name: StageMap, Dir: d.Mapped, Prefix: "mapped_", Transform: mapTransform},
		{Name: StageSalary, Dir: d.Normalized, Prefix: "normalized_", Transform: salaryTransform},
		{Name: StageGeo, Dir: d.Enriched, Prefix: "enriched_", Transform: geoTransform},
		{Name: StageRole, Dir: d.Standardized, Prefix: "standardized_", Transform: roleTransform},
	}
}

// mapTransform applies the file's saved mapping plan and exports the
// canonical field set. The plan lives at <plans>/<stem>.yaml; a missing
// plan fails the stage rather than guessing a mapping.
func mapTransform(rc *RunContext, inPath, outPath string) error {
	stem := Stem(filepath.Base(inPath))
	planPath := filepath.Join(rc.PlansDir, stem+".yaml")
	plan, err := mapper.LoadPlan(planPath)
	if err != nil {
		return eris.Wrapf(err, "pipeline: mapping plan for %s", stem)
	}

	src, err := csvio.ReadTable(inPath)
	if err != nil {
		return err
	}
	out, report, err := mapper.Export(rc.Schema, rc.Ref, plan, src, filepath.Base(inPath))
	if err != nil {
		return err
	}
	if err := csvio.WriteTable(outPath, out); err != nil {
		return err
	}
	reportPath := strings.TrimSuffix(outPath, ".csv") + "_report.json"
	return report.Write(reportPath)
}

func salaryTransform(rc *RunContext, inPath, outPath string) error {
	t, err := csvio.ReadTable(inPath)
	if err != nil {
		return err
	}
	salary.Normalize(rc.Ref, t)
	return csvio.WriteTable(outPath, t)
}

func geoTransform(rc *RunContext, inPath, outPath string) error {
	t, err := csvio.ReadTable(inPath)
	if err != nil {
		return err
	}
	geo.Enrich(rc.Ref, rc.Audit.Cities, t)
	return csvio.WriteTable(outPath, t)
}

func roleTransform(rc *RunContext, inPath, outPath string) error {
	t, err := csvio.ReadTable(inPath)
	if err != nil {
		return err
	}
	role.Standardize(rc.Ref, rc.Audit.Roles, t)
	return csvio.WriteTable(outPath, t)
}
