package orchestrator

import (
	"context"
	"fmt"
)

// Stage identifies a generation pipeline stage (0–6).
type Stage int

const (
	StageGraph       Stage = 0
	StageCallers     Stage = 1
	StageCallData    Stage = 2
	StageReciprocate Stage = 3
	StageAttributes  Stage = 4
	StageMissingness Stage = 5
	StageExport      Stage = 6
)

// FirstStage and LastStage bound the pipeline.
const (
	FirstStage = StageGraph
	LastStage  = StageExport
)

func (s Stage) String() string {
	names := [...]string{
		"graph",
		"callers",
		"call-data",
		"reciprocate",
		"attributes",
		"missingness",
		"export",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ParseStage returns the stage named s.
func ParseStage(s string) (Stage, error) {
	for st := FirstStage; st <= LastStage; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}

// StageResult holds the output of a completed stage.
type StageResult struct {
	Stage     Stage
	FilePaths []string // output files written
	Rows      int      // rows in the table the stage produced
}

// ProgressEvent is emitted to the user during pipeline execution.
type ProgressEvent struct {
	Stage   Stage
	Section string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a section within a stage.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Orchestrator coordinates the generation pipeline.
type Orchestrator interface {
	// RunStage executes a single pipeline stage.
	RunStage(ctx context.Context, stage Stage) (*StageResult, error)

	// RunPipeline executes stages from..to inclusive.
	RunPipeline(ctx context.Context, from, to Stage) ([]StageResult, error)

	// Progress returns a channel that emits progress events.
	Progress() <-chan ProgressEvent
}
