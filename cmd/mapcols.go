package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jobpulse/ingest-cli/internal/csvio"
	"github.com/jobpulse/ingest-cli/internal/mapper"
	"github.com/jobpulse/ingest-cli/internal/pipeline"
)

var mapcolsCmd = &cobra.Command{
	Use:   "mapcols",
	Short: "Inspect and apply source-column mappings",
	Long:  "Suggests canonical-field dispositions for a raw file's columns and applies saved mapping plans. Export is blocked while any column is unresolved or a duplicate target is unconfirmed.",
}

// -- mapcols suggest --

var mapcolsSave bool

var mapcolsSuggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Suggest a mapping plan for a raw file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := filepath.Join(cfg.Data.Dirs().Extracted, args[0])
		t, err := csvio.ReadTable(path)
		if err != nil {
			return err
		}

		suggestions := mapper.SuggestAll(t.Columns)
		formatSuggestions(os.Stdout, suggestions)

		if !mapcolsSave {
			return nil
		}
		plan := mapper.NewPlan(args[0], suggestions)
		planPath := filepath.Join(cfg.Data.PlansDir(), pipeline.Stem(args[0])+".yaml")
		if err := os.MkdirAll(cfg.Data.PlansDir(), 0o755); err != nil {
			return eris.Wrap(err, "create plans dir")
		}
		if err := plan.Save(planPath); err != nil {
			return err
		}
		fmt.Printf("plan written to %s\n", planPath)
		return nil
	},
}

// -- mapcols apply --

var (
	mapcolsConfirmMerges []string
	mapcolsOverwrite     bool
)

var mapcolsApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a saved mapping plan and produce the mapped output",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		o, _, err := initOrchestrator()
		if err != nil {
			return err
		}

		if len(mapcolsConfirmMerges) > 0 {
			planPath := filepath.Join(cfg.Data.PlansDir(), pipeline.Stem(args[0])+".yaml")
			plan, err := mapper.LoadPlan(planPath)
			if err != nil {
				return err
			}
			for _, target := range mapcolsConfirmMerges {
				plan.ConfirmMerge(target)
			}
			if err := plan.Save(planPath); err != nil {
				return err
			}
		}

		f, err := o.File(args[0])
		if err != nil {
			return err
		}
		idx, err := o.StageIndex(pipeline.StageMap)
		if err != nil {
			return err
		}
		res := o.Execute(f, idx, mapcolsOverwrite)
		printStep(res)
		return res.Err
	},
}

func formatSuggestions(out io.Writer, suggestions []mapper.Suggestion) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tACTION\tTARGET\tSIMILARITY")
	for _, s := range suggestions {
		sim := ""
		if s.Action == mapper.ActionMap && s.Similarity < 1 {
			sim = fmt.Sprintf("%.2f", s.Similarity)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Source, s.Action, s.Target, sim)
	}
	_ = w.Flush()
}

func init() {
	mapcolsSuggestCmd.Flags().BoolVar(&mapcolsSave, "save", false, "write the suggestions as a mapping plan")
	mapcolsApplyCmd.Flags().StringSliceVar(&mapcolsConfirmMerges, "confirm-merge", nil, "canonical fields approved to merge multiple source columns")
	mapcolsApplyCmd.Flags().BoolVar(&mapcolsOverwrite, "overwrite", false, "delete a prior mapped output and re-run")

	mapcolsCmd.AddCommand(mapcolsSuggestCmd)
	mapcolsCmd.AddCommand(mapcolsApplyCmd)
	rootCmd.AddCommand(mapcolsCmd)
}
