package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cdrhelper/internal/export"
)

var exportWrite bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the JSON manifest of a dataset",
	Long: `Prints the dataset's JSON manifest: its ID, generation parameters, files
with row counts and the per-quarter network reports.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVarP(&exportWrite, "write", "w", false, "also write <name>-manifest.json")
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := export.ExportDataset(cfg.OutputDir, cfg.Name)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if exportWrite {
		path, err := export.WriteManifest(cfg.OutputDir, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "wrote", path)
	}
	return data.Write(cmd.OutOrStdout())
}
