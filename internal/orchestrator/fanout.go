package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WriteTask is one independent unit of export work, typically one file.
type WriteTask struct {
	// Section names the task in progress events.
	Section string

	// Run performs the work and returns the paths it wrote.
	Run func(ctx context.Context) ([]string, error)
}

// WriteResult holds the outcome of a single WriteTask after fan-out.
type WriteResult struct {
	Section   string
	FilePaths []string
	Err       error
}

// FanOut runs WriteTasks in parallel and collects their results. If any task
// fails, the derived context is canceled so that remaining tasks can stop
// early.
type FanOut struct {
	onProgress func(ProgressEvent)
	limit      int
}

// NewFanOut creates a FanOut running at most limit tasks at once (no limit
// when limit <= 0). onProgress is called from each goroutine; it may be nil.
func NewFanOut(limit int, onProgress func(ProgressEvent)) *FanOut {
	return &FanOut{
		onProgress: onProgress,
		limit:      limit,
	}
}

// Run executes every task, emitting progress events for each. All results
// are returned in task order regardless of failure. The returned error is
// the first non-nil error from the errgroup.
func (f *FanOut) Run(ctx context.Context, stage Stage, tasks []WriteTask) ([]WriteResult, error) {
	results := make([]WriteResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	for i, task := range tasks {
		f.emit(ProgressEvent{
			Stage:   stage,
			Section: task.Section,
			Status:  ProgressPending,
		})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = WriteResult{Section: task.Section, Err: err}
				return err
			}
			f.emit(ProgressEvent{
				Stage:   stage,
				Section: task.Section,
				Status:  ProgressWorking,
			})

			paths, err := task.Run(gctx)
			results[i] = WriteResult{Section: task.Section, FilePaths: paths, Err: err}
			if err != nil {
				f.emit(ProgressEvent{
					Stage:   stage,
					Section: task.Section,
					Status:  ProgressFailed,
					Message: err.Error(),
				})
				return err
			}
			f.emit(ProgressEvent{
				Stage:   stage,
				Section: task.Section,
				Status:  ProgressComplete,
			})
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
