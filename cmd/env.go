package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/jobpulse/ingest-cli/internal/audit"
	"github.com/jobpulse/ingest-cli/internal/pipeline"
	"github.com/jobpulse/ingest-cli/internal/refdata"
	"github.com/jobpulse/ingest-cli/internal/schema"
	"github.com/jobpulse/ingest-cli/internal/store"
)

// initOrchestrator loads reference data and the canonical schema, then
// builds the orchestrator with statuses derived from a fresh scan.
func initOrchestrator() (*pipeline.Orchestrator, *pipeline.RunContext, error) {
	ref, err := refdata.Load(cfg.Data.ReferenceDir())
	if err != nil {
		return nil, nil, err
	}

	sch := schema.Default()
	if cfg.Data.SchemaFile != "" {
		if sch, err = schema.Load(cfg.Data.SchemaFile); err != nil {
			return nil, nil, err
		}
	}

	rc := &pipeline.RunContext{
		Ref:      ref,
		Schema:   sch,
		Audit:    audit.NewRun(),
		PlansDir: cfg.Data.PlansDir(),
	}

	dirs := cfg.Data.Dirs()
	o := pipeline.New(dirs.Extracted, pipeline.Stages(dirs), pipeline.FSStatus{}, rc)
	if err := o.DiscoverFiles(cfg.Crawlers); err != nil {
		return nil, nil, err
	}
	if err := o.Initialize(); err != nil {
		return nil, nil, err
	}
	return o, rc, nil
}

// initStore opens the configured run-history backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
