package main

import (
	"fmt"
	"os"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

func loadCalls() ([]cdr.CallRecord, error) {
	path := orchestrator.ArtifactCalls.Path(cfg.OutputDir, cfg.Name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no call table for dataset %q: %w\nRun 'cdrhelper generate' first", cfg.Name, err)
	}
	defer f.Close()
	return cdr.ReadCalls(f)
}

func loadAttributes(artifact orchestrator.Artifact) ([]cdr.Attribute, error) {
	path := artifact.Path(cfg.OutputDir, cfg.Name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no attribute table for dataset %q: %w", cfg.Name, err)
	}
	defer f.Close()
	return cdr.ReadAttributes(f)
}
