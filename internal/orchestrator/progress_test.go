package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestProgressReporter_EmitAndSubscribe(t *testing.T) {
	pr := NewProgressReporter(nil)
	defer pr.Close()

	ch := pr.Subscribe()
	want := ProgressEvent{
		Stage:   StageCallData,
		Section: "calls",
		Status:  ProgressWorking,
		Message: "drawing",
	}

	pr.Emit(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestProgressReporter_EmitWhenFull_DoesNotBlock(t *testing.T) {
	pr := NewProgressReporter(nil)
	defer pr.Close()

	// The buffer holds 64 events; nobody drains it here.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.Emit(ProgressEvent{Stage: StageExport, Section: "calls", Status: ProgressWorking})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked when the channel was full")
	}
}

func TestProgressReporter_Close_ChannelClosed(t *testing.T) {
	pr := NewProgressReporter(nil)
	ch := pr.Subscribe()

	pr.Emit(ProgressEvent{Stage: StageExport, Section: "attributes", Status: ProgressComplete})
	pr.Close()

	var received []ProgressEvent
	for ev := range ch {
		received = append(received, ev)
	}
	require.Len(t, received, 1)
	assert.Equal(t, ProgressComplete, received[0].Status)
}

func TestProgressReporter_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	pr := NewProgressReporter(zap.New(core))
	defer pr.Close()

	pr.Emit(ProgressEvent{Stage: StageReciprocate, Section: "reciprocate", Status: ProgressFailed, Message: "boom"})

	entries := logs.FilterMessage("progress").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "reciprocate", fields["stage"])
	assert.Equal(t, "failed", fields["status"])
	assert.Equal(t, "boom", fields["message"])
}

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "pending",
			event:  ProgressEvent{Section: "calls", Status: ProgressPending},
			expect: "  ○ calls (pending)",
		},
		{
			name:   "working",
			event:  ProgressEvent{Section: "calls", Status: ProgressWorking},
			expect: "  ● calls...",
		},
		{
			name:   "complete",
			event:  ProgressEvent{Section: "calls", Status: ProgressComplete},
			expect: "  ✓ calls complete",
		},
		{
			name:   "complete with message",
			event:  ProgressEvent{Section: "calls", Status: ProgressComplete, Message: "120 rows"},
			expect: "  ✓ calls: 120 rows",
		},
		{
			name:   "failed",
			event:  ProgressEvent{Section: "calls", Status: ProgressFailed, Message: "disk full"},
			expect: "  ✗ calls failed: disk full",
		},
		{
			name:   "unknown",
			event:  ProgressEvent{Section: "calls", Status: "odd"},
			expect: "  ? calls (unknown status)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatProgress(tt.event))
		})
	}
}

func TestFormatStageHeader(t *testing.T) {
	assert.Equal(t, "[test] 4/7: reciprocate", FormatStageHeader("test", StageReciprocate))
	assert.Equal(t, "[test] 1/7: graph", FormatStageHeader("test", StageGraph))
}

func TestParseStage(t *testing.T) {
	for s := FirstStage; s <= LastStage; s++ {
		got, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStage("design-pack")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestArtifactPaths(t *testing.T) {
	assert.Equal(t, "test-calls.txt", ArtifactCalls.Filename("test"))
	assert.Equal(t, "out/test-attr-missing.txt", ArtifactMissing.Path("out", "test"))
	assert.Equal(t, "test-2013Q1-directed.csv", ReportFilename("test", "2013Q1", "directed"))
}
