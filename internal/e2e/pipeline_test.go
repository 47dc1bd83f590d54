//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/export"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
	"github.com/dusk-indust/cdrhelper/internal/status"
)

// drain consumes progress events in the background so the pipeline never
// drops them; the returned channel closes once the pipeline is closed.
func drain(p *orchestrator.Pipeline) <-chan []orchestrator.ProgressEvent {
	done := make(chan []orchestrator.ProgressEvent, 1)
	go func() {
		var events []orchestrator.ProgressEvent
		for ev := range p.Progress() {
			events = append(events, ev)
		}
		done <- events
	}()
	return done
}

// TestPipeline_E2E_Full runs every stage and checks that the written files
// read back as the generated dataset and that a manifest can be exported.
func TestPipeline_E2E_Full(t *testing.T) {
	outputDir := t.TempDir()
	cfg := goldenConfig(t, outputDir)

	pipeline := orchestrator.NewPipeline(cfg)
	drained := drain(pipeline)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := pipeline.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 7, "pipeline should return results for all 7 stages")

	ds := pipeline.Dataset()
	pipeline.Close()
	events := <-drained
	assert.NotEmpty(t, events)

	// --- Files read back as the in-memory dataset ---

	f, err := os.Open(orchestrator.ArtifactCalls.Path(outputDir, cfg.Name))
	require.NoError(t, err)
	calls, err := cdr.ReadCalls(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, ds.Calls, calls)

	f, err = os.Open(orchestrator.ArtifactAttributes.Path(outputDir, cfg.Name))
	require.NoError(t, err)
	attrs, err := cdr.ReadAttributes(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, ds.Attributes, attrs)

	f, err = os.Open(orchestrator.ArtifactMissing.Path(outputDir, cfg.Name))
	require.NoError(t, err)
	missing, err := cdr.ReadAttributes(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, pipeline.MissingAttributes(), missing)

	blankAges := 0
	for _, a := range missing {
		if !a.HasAge() {
			blankAges++
		}
	}
	assert.Equal(t, int(cfg.Missing.Age*float64(len(missing))), blankAges)

	// --- Reports match a fresh analysis of the calls ---

	summaries, err := analyze.SummarizeQuarters(ctx, calls)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	st := status.GetDatasetStatus(outputDir, cfg.Name)
	assert.True(t, st.Complete)
	assert.Len(t, st.Reports, 2)

	// --- Manifest ---

	_, err = export.WriteManifest(outputDir, export.NewManifest(cfg.Name, cfg.Params, cfg.Missing))
	require.NoError(t, err)
	e, err := export.ExportDataset(outputDir, cfg.Name)
	require.NoError(t, err)
	assert.Equal(t, cfg.Params.Seed, e.Params.Seed)
	require.Len(t, e.Reports, 2)
	assert.Equal(t, summaries[0].Directed.Report().Rows, directedRows(e))
}

func directedRows(e *export.DatasetExport) []analyze.Row {
	for _, r := range e.Reports {
		if r.Kind == "directed" {
			return r.Rows
		}
	}
	return nil
}

// TestPipeline_E2E_SingleStage runs only the first stage and verifies that
// no dataset file is written.
func TestPipeline_E2E_SingleStage(t *testing.T) {
	outputDir := t.TempDir()

	pipeline := orchestrator.NewPipeline(goldenConfig(t, outputDir))
	drained := drain(pipeline)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := pipeline.RunStage(ctx, orchestrator.StageGraph)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, orchestrator.StageGraph, result.Stage)

	pipeline.Close()
	<-drained

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written before the export stage")
}
