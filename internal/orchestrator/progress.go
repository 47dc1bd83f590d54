package orchestrator

import (
	"fmt"

	"go.uber.org/zap"
)

// progressBuffer is the capacity of the progress channel.
const progressBuffer = 64

// ProgressReporter emits progress events through a buffered channel and
// mirrors each one to a logger at debug level.
type ProgressReporter struct {
	ch  chan ProgressEvent
	log *zap.Logger
}

// NewProgressReporter creates a ProgressReporter. A nil logger discards
// the debug mirror.
func NewProgressReporter(log *zap.Logger) *ProgressReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressReporter{
		ch:  make(chan ProgressEvent, progressBuffer),
		log: log,
	}
}

// Emit sends a progress event without blocking. When nobody drains the
// channel and it is full, the event is dropped; the log still records it.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	pr.log.Debug("progress",
		zap.Stringer("stage", event.Stage),
		zap.String("section", event.Section),
		zap.String("status", string(event.Status)),
		zap.String("message", event.Message),
	)
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Section)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Section)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s: %s", event.Section, event.Message)
		}
		return fmt.Sprintf("  ✓ %s complete", event.Section)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Section, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Section)
	}
}

// FormatStageHeader formats a stage header for display.
// Returns: "[{dataset}] {N}/{last}: {stage}"
func FormatStageHeader(name string, stage Stage) string {
	return fmt.Sprintf("[%s] %d/%d: %s", name, int(stage)+1, int(LastStage)+1, stage)
}
