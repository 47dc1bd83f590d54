package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cdrhelper/internal/status"
)

var statusAll bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which files of a dataset exist",
	Long: `Shows the files of the configured dataset, or with --all of every dataset
found in the output directory.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAll, "all", "a", false, "list every dataset in the output directory")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !statusAll {
		printDatasetStatus(out, status.GetDatasetStatus(cfg.OutputDir, cfg.Name))
		return nil
	}

	datasets, err := status.ListDatasets(cfg.OutputDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(datasets) == 0 {
		fmt.Fprintf(out, "No datasets found in %s.\n", cfg.OutputDir)
		fmt.Fprintln(out, "Run 'cdrhelper generate' to create one.")
		return nil
	}
	for i, ds := range datasets {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printDatasetStatus(out, ds)
	}
	return nil
}

func printDatasetStatus(w io.Writer, ds status.DatasetStatus) {
	state := "incomplete"
	if ds.Complete {
		state = "complete"
	}
	fmt.Fprintf(w, "Dataset: %s (%s) [%s]\n", ds.Name, ds.Dir, state)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, a := range ds.Artifacts {
		mark := "  "
		size := "-"
		if a.Exists {
			mark = "✓ "
			size = fmt.Sprintf("%d B", a.Size)
		}
		fmt.Fprintf(tw, "  %s%s\t%s\t%s\n", mark, a.Label, a.Artifact.Filename(ds.Name), size)
	}
	for _, r := range ds.Reports {
		fmt.Fprintf(tw, "  ✓ %s %s report\t%s\t\n", r.Quarter, r.Kind, r.FilePath)
	}
	_ = tw.Flush()
}
