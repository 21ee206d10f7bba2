package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/pipeline"
	"github.com/jobpulse/ingest-cli/internal/store"
)

var (
	runStage     string
	runFrom      string
	runTo        string
	runFile      string
	runOverwrite bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute pipeline stages over the tracked files",
	Long:  "Runs a single (file, stage) pair or a stage window across all files, one step at a time. Existing outputs are skipped unless --overwrite is set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		o, rc, err := initOrchestrator()
		if err != nil {
			return err
		}

		from, to, err := stageWindow(o)
		if err != nil {
			return err
		}

		// Single (file, stage) mode.
		if runFile != "" {
			if runStage == "" {
				return eris.New("--file requires --stage")
			}
			f, err := o.File(runFile)
			if err != nil {
				return err
			}
			res := o.Execute(f, from, runOverwrite)
			printStep(res)
			if err := rc.Audit.Flush(cfg.Data.AuditDir()); err != nil {
				return err
			}
			return res.Err
		}

		runner, err := o.NewRunner(from, to, runOverwrite)
		if err != nil {
			return err
		}

		var st store.Store
		var run *store.Run
		if !runNoHistory {
			if st, err = initStore(ctx); err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			if run, err = st.CreateRun(ctx, o.Stages()[from].Name, o.Stages()[to].Name, runOverwrite); err != nil {
				return err
			}
		}

		failures := 0
		for {
			res, ok := runner.Next()
			if !ok {
				break
			}
			printStep(res)
			if res.Err != nil {
				failures++
			}
			if st != nil {
				errMsg := ""
				if res.Err != nil {
					errMsg = res.Err.Error()
				}
				if err := st.RecordStep(ctx, run.ID, res.File, res.Stage, string(res.Status), errMsg); err != nil {
					zap.L().Warn("record step", zap.Error(err))
				}
			}
		}

		if err := rc.Audit.Flush(cfg.Data.AuditDir()); err != nil {
			return err
		}

		if st != nil {
			status := store.RunStatusComplete
			if failures > 0 {
				status = store.RunStatusFailed
			}
			if err := st.CompleteRun(ctx, run.ID, status); err != nil {
				zap.L().Warn("complete run", zap.Error(err))
			}
		}
		if failures > 0 {
			return eris.Errorf("%d stage executions failed", failures)
		}
		return nil
	},
}

// stageWindow resolves the [from, to] window from the flags: --stage pins
// both ends, otherwise --from/--to default to the full stage table.
func stageWindow(o *pipeline.Orchestrator) (int, int, error) {
	if runStage != "" {
		idx, err := o.StageIndex(runStage)
		if err != nil {
			return 0, 0, err
		}
		return idx, idx, nil
	}
	from, to := 0, len(o.Stages())-1
	var err error
	if runFrom != "" {
		if from, err = o.StageIndex(runFrom); err != nil {
			return 0, 0, err
		}
	}
	if runTo != "" {
		if to, err = o.StageIndex(runTo); err != nil {
			return 0, 0, err
		}
	}
	return from, to, nil
}

func printStep(res pipeline.StepResult) {
	switch {
	case res.Err != nil:
		fmt.Fprintf(os.Stderr, "FAIL  %-12s %-40s %v\n", res.Stage, res.File, res.Err)
	case res.Status == model.StatusSkipped:
		fmt.Printf("skip  %-12s %s\n", res.Stage, res.File)
	case res.Ran:
		fmt.Printf("done  %-12s %s\n", res.Stage, res.File)
	default:
		fmt.Printf("have  %-12s %s\n", res.Stage, res.File)
	}
}

func init() {
	runCmd.Flags().StringVar(&runStage, "stage", "", "run exactly one stage (map, salary, geo, role)")
	runCmd.Flags().StringVar(&runFrom, "from", "", "first stage of the window (default: first)")
	runCmd.Flags().StringVar(&runTo, "to", "", "last stage of the window (default: last)")
	runCmd.Flags().StringVar(&runFile, "file", "", "run a single source file (requires --stage)")
	runCmd.Flags().BoolVar(&runOverwrite, "overwrite", false, "delete prior outputs and re-run")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "skip recording the run to the history store")
	rootCmd.AddCommand(runCmd)
}
