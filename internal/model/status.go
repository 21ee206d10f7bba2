package model

// StageStatus tracks one stage of one file through a run. Statuses are
// derived from the filesystem at startup and only move forward within a
// run: a failed stage forces every later stage of the same file to skipped.
type StageStatus string

const (
	StatusNotStarted StageStatus = "not_started"
	StatusRunning    StageStatus = "running"
	StatusDone       StageStatus = "done"
	StatusFail       StageStatus = "fail"
	StatusSkipped    StageStatus = "skipped"
)

// Origin tags where a source file came from.
type Origin string

const (
	OriginCrawled  Origin = "crawled"
	OriginExternal Origin = "external"
)

// PipelineFile tracks one source file across all stages.
type PipelineFile struct {
	Name   string                 `json:"name"`
	Origin Origin                 `json:"origin"`
	Stages map[string]StageStatus `json:"stages"`
}

// Status returns the recorded status for a stage, not_started by default.
func (f *PipelineFile) Status(stage string) StageStatus {
	if s, ok := f.Stages[stage]; ok {
		return s
	}
	return StatusNotStarted
}

// SetStatus records a stage status.
func (f *PipelineFile) SetStatus(stage string, s StageStatus) {
	if f.Stages == nil {
		f.Stages = make(map[string]StageStatus)
	}
	f.Stages[stage] = s
}
