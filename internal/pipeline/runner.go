package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/jobpulse/ingest-cli/internal/model"
)

// Runner walks a [from, to] stage window across all files in deterministic
// (filename, then stage) order, executing exactly one (file, stage) pair
// per Next call. The single-step contract lets the driving loop observe and
// record progress between atomic executions; cancelling between steps
// loses nothing because every completed step is on disk.
type Runner struct {
	o         *Orchestrator
	from, to  int
	overwrite bool

	fileIdx  int
	stageIdx int
}

// NewRunner builds a runner over the stage window [from, to], inclusive.
func (o *Orchestrator) NewRunner(from, to int, overwrite bool) (*Runner, error) {
	if from < 0 || to >= len(o.stages) || from > to {
		return nil, eris.Errorf("pipeline: invalid stage window [%d, %d]", from, to)
	}
	return &Runner{o: o, from: from, to: to, overwrite: overwrite, stageIdx: from}, nil
}

// Next executes the next pending (file, stage) pair. The second return is
// false when the window is exhausted. Pairs already cascaded to skipped are
// reported without executing, so the caller sees every cell of the window.
func (r *Runner) Next() (StepResult, bool) {
	for r.fileIdx < len(r.o.files) {
		f := r.o.files[r.fileIdx]
		if r.stageIdx > r.to {
			r.fileIdx++
			r.stageIdx = r.from
			continue
		}
		idx := r.stageIdx
		r.stageIdx++

		stage := r.o.stages[idx]
		if f.Status(stage.Name) == model.StatusSkipped {
			return StepResult{File: f.Name, Stage: stage.Name, Status: model.StatusSkipped}, true
		}
		return r.o.Execute(f, idx, r.overwrite), true
	}
	return StepResult{}, false
}
