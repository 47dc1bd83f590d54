//go:build cgo

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
	"github.com/dusk-indust/cdrhelper/internal/warehouse"
)

var loadFlags struct {
	db      string
	threads int
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a dataset into DuckDB and print daily traffic",
	Long: `Loads the call and attribute tables into a DuckDB warehouse and prints the
row counts and the traffic of each day. The warehouse is in memory unless
--db names a file.

Example:
  cdrhelper load --db data/test.duckdb`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadFlags.db, "db", "", "DuckDB file (default: in memory)")
	loadCmd.Flags().IntVar(&loadFlags.threads, "threads", 0, "DuckDB worker threads (0: DuckDB default)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	wh, err := warehouse.Open(ctx, loadFlags.db, warehouse.WithThreads(loadFlags.threads))
	if err != nil {
		return err
	}
	defer wh.Close()

	callsPath := orchestrator.ArtifactCalls.Path(cfg.OutputDir, cfg.Name)
	if _, err := os.Stat(callsPath); err != nil {
		return fmt.Errorf("no call table for dataset %q\nRun 'cdrhelper generate' first", cfg.Name)
	}
	nCalls, err := wh.LoadCallsFile(ctx, callsPath)
	if err != nil {
		return err
	}
	nAttrs, err := wh.LoadAttributesFile(ctx, orchestrator.ArtifactAttributes.Path(cfg.OutputDir, cfg.Name))
	if err != nil {
		return err
	}
	logger.Info("Loaded warehouse",
		zap.String("db", loadFlags.db),
		zap.Int("calls", nCalls),
		zap.Int("attributes", nAttrs))

	rows, err := wh.CountRows(ctx, warehouse.TableCalls)
	if err != nil {
		return err
	}
	pairs, err := wh.AggregateCalls(ctx)
	if err != nil {
		return err
	}
	days, err := wh.DailyTraffic(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "calls: %d rows, %d caller pairs; attributes: %d rows\n\n", rows, len(pairs), nAttrs)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\trecords\tcalls\tminutes\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t\n", d.Date, d.Records, d.Calls, d.Minutes)
	}
	return tw.Flush()
}
