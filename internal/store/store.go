// Package store persists run history: which runs happened, which (file,
// stage) steps they executed, and how each ended. It is an observability
// record only; pipeline status itself is always derived from the
// filesystem, never from here.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RunStatus is the lifecycle of one recorded run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of the pipeline over a stage window.
type Run struct {
	ID         string     `json:"id"`
	StageFrom  string     `json:"stage_from"`
	StageTo    string     `json:"stage_to"`
	Overwrite  bool       `json:"overwrite"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Step is one executed (file, stage) pair within a run.
type Step struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	File       string    `json:"file"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, stageFrom, stageTo string, overwrite bool) (*Run, error)
	CompleteRun(ctx context.Context, runID string, status RunStatus) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	RecordStep(ctx context.Context, runID, file, stage, status, errMsg string) error
	ListSteps(ctx context.Context, runID string) ([]Step, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the postgres store uses; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
