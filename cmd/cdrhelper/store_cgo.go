//go:build cgo

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// openGraphStore opens the dataset's Kuzu database, creating it if needed.
func openGraphStore() (graph.Store, error) {
	path := cfg.GraphPath()
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	logger.Debug("Opened graph store", zap.String("path", path))
	return store, nil
}
