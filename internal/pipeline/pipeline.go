package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/audit"
	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
)

// Transform executes one stage for one file, reading inPath and writing
// outPath. Implementations must not write outPath on failure.
type Transform func(rc *RunContext, inPath, outPath string) error

// Stage is one ordered pipeline step with a dedicated output directory and
// output filename prefix.
type Stage struct {
	Name      string
	Dir       string
	Prefix    string
	Transform Transform
}

// RunContext carries the immutable run dependencies every transform sees.
type RunContext struct {
	Ref      *refdata.Ref
	Schema   *schema.Schema
	Audit    *audit.Run
	PlansDir string
}

// StepResult reports one Execute outcome.
type StepResult struct {
	File   string
	Stage  string
	Status model.StageStatus
	// Ran is false when the idempotency check satisfied the step without
	// executing the transform.
	Ran bool
	Err error
}

// Orchestrator owns the stage table and the per-file status map for one
// process. At most one (file, stage) pair runs at any instant.
type Orchestrator struct {
	extractedDir string
	stages       []Stage
	status       StatusStore
	rc           *RunContext
	files        []*model.PipelineFile
	log          *zap.Logger
}

// New builds an orchestrator over the given stage table.
func New(extractedDir string, stages []Stage, status StatusStore, rc *RunContext) *Orchestrator {
	return &Orchestrator{
		extractedDir: extractedDir,
		stages:       stages,
		status:       status,
		rc:           rc,
		log:          zap.L().With(zap.String("component", "pipeline")),
	}
}

// Stages returns the ordered stage table.
func (o *Orchestrator) Stages() []Stage { return o.stages }

// Files returns the discovered files in name order.
func (o *Orchestrator) Files() []*model.PipelineFile { return o.files }

// StageIndex resolves a stage name to its position in the table.
func (o *Orchestrator) StageIndex(name string) (int, error) {
	for i, s := range o.stages {
		if s.Name == name {
			return i, nil
		}
	}
	return 0, eris.Errorf("pipeline: unknown stage %q", name)
}

// DiscoverFiles scans the extracted directory for source files. A file
// whose name starts with a registered crawler name is tagged crawled,
// anything else external.
func (o *Orchestrator) DiscoverFiles(crawlers []string) error {
	entries, err := os.ReadDir(o.extractedDir)
	if err != nil {
		return eris.Wrap(err, "pipeline: read extracted dir")
	}
	o.files = o.files[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		origin := model.OriginExternal
		for _, c := range crawlers {
			if strings.HasPrefix(e.Name(), c) {
				origin = model.OriginCrawled
				break
			}
		}
		o.files = append(o.files, &model.PipelineFile{Name: e.Name(), Origin: origin})
	}
	sort.Slice(o.files, func(i, j int) bool { return o.files[i].Name < o.files[j].Name })
	return nil
}

// Initialize derives every (file, stage) status from the filesystem without
// executing anything. Rescanning after any sequence of runs reproduces the
// same statuses.
func (o *Orchestrator) Initialize() error {
	for _, f := range o.files {
		stem := Stem(f.Name)
		for _, s := range o.stages {
			matches, err := o.status.Matches(s.Dir, s.Prefix, stem)
			if err != nil {
				return err
			}
			if len(matches) > 0 {
				f.SetStatus(s.Name, model.StatusDone)
			} else {
				f.SetStatus(s.Name, model.StatusNotStarted)
			}
		}
	}
	return nil
}

// File looks up a discovered file by name.
func (o *Orchestrator) File(name string) (*model.PipelineFile, error) {
	for _, f := range o.files {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, eris.Errorf("pipeline: unknown file %q", name)
}

// Execute runs one (file, stage) pair. Prior output satisfies the step
// unless overwrite is set, in which case matching outputs for exactly this
// pair are deleted first. A failure marks the stage fail and every later
// stage of the same file skipped; other files are unaffected.
func (o *Orchestrator) Execute(f *model.PipelineFile, idx int, overwrite bool) StepResult {
	stage := o.stages[idx]
	stem := Stem(f.Name)
	res := StepResult{File: f.Name, Stage: stage.Name}

	inPath, err := o.resolveInput(f, idx, stem)
	if err != nil {
		return o.fail(f, idx, res, err)
	}

	outputs, err := o.status.Matches(stage.Dir, stage.Prefix, stem)
	if err != nil {
		return o.fail(f, idx, res, err)
	}
	if len(outputs) > 0 && !overwrite {
		f.SetStatus(stage.Name, model.StatusDone)
		res.Status = model.StatusDone
		o.log.Debug("output exists, skipping execution",
			zap.String("file", f.Name), zap.String("stage", stage.Name))
		return res
	}
	if len(outputs) > 0 {
		if err := o.status.Remove(outputs); err != nil {
			return o.fail(f, idx, res, err)
		}
	}

	f.SetStatus(stage.Name, model.StatusRunning)
	outPath := filepath.Join(stage.Dir, stage.Prefix+stem+".csv")
	o.log.Info("executing stage",
		zap.String("file", f.Name),
		zap.String("stage", stage.Name),
		zap.String("input", inPath))

	if err := stage.Transform(o.rc, inPath, outPath); err != nil {
		return o.fail(f, idx, res, eris.Wrapf(err, "pipeline: stage %s on %s", stage.Name, f.Name))
	}

	f.SetStatus(stage.Name, model.StatusDone)
	res.Status = model.StatusDone
	res.Ran = true
	return res
}

// resolveInput finds the stage input: the raw source file for the first
// stage, otherwise exactly one output of the preceding stage.
func (o *Orchestrator) resolveInput(f *model.PipelineFile, idx int, stem string) (string, error) {
	if idx == 0 {
		p := filepath.Join(o.extractedDir, f.Name)
		if _, err := os.Stat(p); err != nil {
			return "", eris.Wrapf(err, "pipeline: source file %s", f.Name)
		}
		return p, nil
	}
	prev := o.stages[idx-1]
	matches, err := o.status.Matches(prev.Dir, prev.Prefix, stem)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", eris.Errorf("pipeline: no %s output for %s", prev.Name, f.Name)
	case 1:
		return matches[0], nil
	default:
		return "", eris.Errorf("pipeline: %d %s outputs match %s, expected exactly one", len(matches), prev.Name, f.Name)
	}
}

// fail marks the stage failed and cascades skipped onto every later stage
// of the same file.
func (o *Orchestrator) fail(f *model.PipelineFile, idx int, res StepResult, err error) StepResult {
	f.SetStatus(o.stages[idx].Name, model.StatusFail)
	for i := idx + 1; i < len(o.stages); i++ {
		f.SetStatus(o.stages[i].Name, model.StatusSkipped)
	}
	res.Status = model.StatusFail
	res.Err = err
	o.log.Error("stage failed",
		zap.String("file", f.Name),
		zap.String("stage", o.stages[idx].Name),
		zap.Error(err))
	return res
}

// Stem strips the extension from a source file name; output files embed it.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
