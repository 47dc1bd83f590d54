package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

var analyzeFlags struct {
	quarter   string
	write     bool
	structure bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize the call network of each quarter",
	Long: `Splits the dataset's calls by quarter and prints the directed network
summary (sizes, strongly and weakly connected components) and the undirected
one (sizes, average clustering) of each quarter. With --structure it also
prints the weak component sizes and the edge overlap distribution.

Example:
  cdrhelper analyze --quarter 2013Q1 --structure`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.quarter, "quarter", "", "only this quarter, e.g. 2013Q1")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.write, "write", false, "also write the reports as CSV next to the dataset")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.structure, "structure", false, "add component sizes and edge overlaps")
}

type quarterReport struct {
	kind   string
	report analyze.Report
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	calls, err := loadCalls()
	if err != nil {
		return err
	}
	summaries, err := analyze.SummarizeQuarters(cmd.Context(), calls)
	if err != nil {
		return err
	}

	var structures []*analyze.StructureStats
	if analyzeFlags.structure {
		structures, err = analyze.StructureQuarters(cmd.Context(), calls)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	shown := 0
	for i, q := range summaries {
		if analyzeFlags.quarter != "" && q.Quarter != analyzeFlags.quarter {
			continue
		}
		shown++
		reports := []quarterReport{
			{"directed", q.Directed.Report()},
			{"undirected", q.Undirected.Report()},
		}
		if structures != nil {
			reports = append(reports, quarterReport{"structure", structures[i].Report()})
		}
		for _, r := range reports {
			fmt.Fprintf(out, "== %s %s ==\n%s\n", q.Quarter, r.kind, r.report)
			if analyzeFlags.write {
				path := filepath.Join(cfg.OutputDir, orchestrator.ReportFilename(cfg.Name, q.Quarter, r.kind))
				if err := writeReport(path, r.report); err != nil {
					return err
				}
				logger.Info("file written", zap.String("path", path))
			}
		}
	}
	if shown == 0 && analyzeFlags.quarter != "" {
		return fmt.Errorf("no calls in quarter %s", analyzeFlags.quarter)
	}
	return nil
}

func writeReport(path string, r analyze.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
