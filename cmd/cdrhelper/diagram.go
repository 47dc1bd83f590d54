//go:build cgo

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cdrhelper/internal/export"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Print the persisted call graph as a Mermaid diagram",
	Args:  cobra.NoArgs,
	RunE:  runDiagram,
}

func init() {
	rootCmd.AddCommand(diagramCmd)
}

func runDiagram(cmd *cobra.Command, args []string) error {
	graphPath := cfg.GraphPath()
	if _, err := os.Stat(graphPath); err != nil {
		return fmt.Errorf("no graph found at %s\nRun 'cdrhelper persist' first", graphPath)
	}

	store, err := graph.NewKuzuFileStore(graphPath)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer store.Close()

	mermaid, err := export.GenerateMermaid(cmd.Context(), store)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), mermaid)
	return nil
}
