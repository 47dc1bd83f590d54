//go:build !cgo

package main

import (
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// openGraphStore returns an in-memory store; Kuzu needs cgo.
func openGraphStore() (graph.Store, error) {
	logger.Warn("built without cgo; the call graph is kept in memory")
	return graph.NewMemStore(), nil
}
