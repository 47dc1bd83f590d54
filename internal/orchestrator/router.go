package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPrerequisite is returned when a stage runs before a stage it needs.
var ErrPrerequisite = errors.New("prerequisite stage not complete")

// StageExecutor executes a single pipeline stage.
type StageExecutor interface {
	Execute(ctx context.Context, stage Stage) (*StageResult, error)
}

// Router maps pipeline stages to their registered executors, checks
// prerequisites against the stages completed so far, and records results.
type Router struct {
	mu        sync.Mutex
	executors map[Stage]StageExecutor
	completed map[Stage]StageResult
}

// NewRouter creates a Router with an empty executor registry.
func NewRouter() *Router {
	return &Router{
		executors: make(map[Stage]StageExecutor),
		completed: make(map[Stage]StageResult),
	}
}

// RegisterExecutor associates an executor with a pipeline stage.
func (r *Router) RegisterExecutor(stage Stage, exec StageExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[stage] = exec
}

// Route checks the prerequisites of stage and delegates to its executor.
// A successful result is recorded so later stages can depend on it.
func (r *Router) Route(ctx context.Context, stage Stage) (*StageResult, error) {
	r.mu.Lock()
	exec, ok := r.executors[stage]
	var missing []Stage
	for _, rule := range prerequisites(stage) {
		if _, done := r.completed[rule.stage]; rule.required && !done {
			missing = append(missing, rule.stage)
		}
	}
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("router: no executor registered for stage %d (%s)", stage, stage)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("router: stage %s: %w: %v", stage, ErrPrerequisite, missing)
	}

	result, err := exec.Execute(ctx, stage)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.completed[stage] = *result
	r.mu.Unlock()
	return result, nil
}

// RouteRange executes stages sequentially from `from` to `to` (inclusive).
// Results of the stages that completed are returned even on failure.
func (r *Router) RouteRange(ctx context.Context, from, to Stage) ([]StageResult, error) {
	if from > to {
		return nil, fmt.Errorf("router: invalid range: from (%d) > to (%d)", from, to)
	}

	var results []StageResult
	for stage := from; stage <= to; stage++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := r.Route(ctx, stage)
		if err != nil {
			return results, fmt.Errorf("router: stage %d (%s) failed: %w", stage, stage, err)
		}
		results = append(results, *result)
	}
	return results, nil
}

// Completed reports whether stage has finished successfully.
func (r *Router) Completed(stage Stage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.completed[stage]
	return ok
}

// prerequisiteRule names a stage that must (or should) run first.
type prerequisiteRule struct {
	stage    Stage
	required bool // if false, the prerequisite is optional
}

// prerequisites returns the prerequisite rules for the given stage.
func prerequisites(stage Stage) []prerequisiteRule {
	switch stage {
	case StageCallers, StageAttributes:
		return []prerequisiteRule{{stage: StageGraph, required: true}}
	case StageCallData:
		return []prerequisiteRule{{stage: StageCallers, required: true}}
	case StageReciprocate:
		return []prerequisiteRule{{stage: StageCallData, required: true}}
	case StageMissingness:
		return []prerequisiteRule{{stage: StageAttributes, required: true}}
	case StageExport:
		return []prerequisiteRule{
			{stage: StageCallData, required: true},
			{stage: StageAttributes, required: true},
			{stage: StageReciprocate, required: false},
			{stage: StageMissingness, required: false},
		}
	default:
		return nil
	}
}
