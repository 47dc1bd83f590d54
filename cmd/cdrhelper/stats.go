package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

var statsTable string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics of a dataset table",
	Long: `Prints min, max, mean, median, variance, standard deviation, unique count,
count and quartiles of every numeric column of the call, attribute or
missing-attribute table. Missing values are skipped.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsTable, "table", "t", "calls", "calls, attributes or missing")
}

func runStats(cmd *cobra.Command, args []string) error {
	var columns []analyze.Column
	switch statsTable {
	case "calls":
		calls, err := loadCalls()
		if err != nil {
			return err
		}
		columns = analyze.CallColumns(calls)
	case "attributes":
		attrs, err := loadAttributes(orchestrator.ArtifactAttributes)
		if err != nil {
			return err
		}
		columns = analyze.AttributeColumns(attrs)
	case "missing":
		attrs, err := loadAttributes(orchestrator.ArtifactMissing)
		if err != nil {
			return err
		}
		columns = analyze.AttributeColumns(attrs)
	default:
		return fmt.Errorf("unknown table %q: want calls, attributes or missing", statsTable)
	}

	fmt.Fprint(cmd.OutOrStdout(), analyze.SummaryStats(columns))
	return nil
}
