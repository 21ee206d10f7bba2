package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobpulse/ingest-cli/internal/model"
	"github.com/jobpulse/ingest-cli/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the file-by-stage status table",
	Long:  "Derives every (file, stage) status from a fresh scan of the stage output directories. Nothing is executed.",
	RunE: func(_ *cobra.Command, _ []string) error {
		o, _, err := initOrchestrator()
		if err != nil {
			return err
		}
		formatStatus(os.Stdout, o)
		return nil
	},
}

func formatStatus(out io.Writer, o *pipeline.Orchestrator) {
	files := o.Files()
	if len(files) == 0 {
		fmt.Fprintln(out, "No source files found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "FILE\tORIGIN")
	for _, s := range o.Stages() {
		fmt.Fprintf(w, "\t%s", s.Name)
	}
	fmt.Fprintln(w)

	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s", f.Name, f.Origin)
		for _, s := range o.Stages() {
			fmt.Fprintf(w, "\t%s", statusMark(f.Status(s.Name)))
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
}

func statusMark(s model.StageStatus) string {
	switch s {
	case model.StatusDone:
		return "done"
	case model.StatusFail:
		return "FAIL"
	case model.StatusSkipped:
		return "skip"
	case model.StatusRunning:
		return "run"
	default:
		return "-"
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
