//go:build cgo

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/graph"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

var persistCmd = &cobra.Command{
	Use:   "persist",
	Short: "Load a dataset into the Kuzu graph database",
	Long: `Stores the dataset's subscribers with their attributes, the aggregated
CALLS edges and the weakly connected components in <name>-graph.kuzu (or the
configured graphDB path).`,
	Args: cobra.NoArgs,
	RunE: runPersist,
}

func init() {
	rootCmd.AddCommand(persistCmd)
}

func runPersist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	calls, err := loadCalls()
	if err != nil {
		return err
	}
	attrs, err := loadAttributes(orchestrator.ArtifactAttributes)
	if err != nil {
		return err
	}

	store, err := openGraphStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.SubscriberCount > 0 {
		return fmt.Errorf("graph %s already holds %d subscribers", cfg.GraphPath(), stats.SubscriberCount)
	}

	if err := graph.Persist(ctx, store, graph.FromCalls(calls, true), attrs); err != nil {
		return err
	}
	components, err := graph.ComputeComponents(ctx, store)
	if err != nil {
		return fmt.Errorf("compute components: %w", err)
	}
	stats, err = store.Stats(ctx)
	if err != nil {
		return err
	}
	logger.Info("Persisted graph",
		zap.String("path", cfg.GraphPath()),
		zap.Int("subscribers", stats.SubscriberCount),
		zap.Int("edges", stats.CallEdgeCount),
		zap.Int("components", len(components)))

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d subscribers, %d call edges, %d components\n",
		cfg.GraphPath(), stats.SubscriberCount, stats.CallEdgeCount, len(components))
	return nil
}
