//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/config"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// goldenFiles lists the dataset files compared against testdata/golden.
var goldenFiles = []string{
	orchestrator.ArtifactCalls.Filename("golden"),
	orchestrator.ArtifactAttributes.Filename("golden"),
	orchestrator.ArtifactMissing.Filename("golden"),
	orchestrator.ArtifactCallStats.Filename("golden"),
	orchestrator.ArtifactAttributeStats.Filename("golden"),
	orchestrator.ReportFilename("golden", "2013Q1", "directed"),
	orchestrator.ReportFilename("golden", "2013Q1", "undirected"),
}

// goldenConfig is a fixed-seed run over the embedded sample data.
func goldenConfig(t *testing.T, outputDir string) orchestrator.Config {
	t.Helper()

	cfg := config.Defaults()
	postcodes, weights, err := cfg.Sources()
	require.NoError(t, err)

	params := generator.DefaultParams()
	params.Seed = 20130101
	return orchestrator.Config{
		Name:       "golden",
		OutputDir:  outputDir,
		Params:     params,
		Missing:    generator.Missingness{Postcode: 0.1, Age: 0.2, Gender: 0.1},
		Postcodes:  postcodes,
		AgeWeights: weights,
		Summaries:  true,
	}
}

// runPipelineForGolden runs the full pipeline and returns the output
// directory.
func runPipelineForGolden(t *testing.T) string {
	t.Helper()

	outputDir := t.TempDir()
	pipeline := orchestrator.NewPipeline(goldenConfig(t, outputDir))
	progressCh := pipeline.Progress()
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for range progressCh {
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err := pipeline.Run(ctx)
	require.NoError(t, err)

	pipeline.Close()
	<-drainDone

	return outputDir
}

// TestGolden compares the pipeline output against golden files. If golden files
// do not exist, the test is skipped with a message to run with -update.
func TestGolden(t *testing.T) {
	outputDir := runPipelineForGolden(t)
	gDir := goldenDir()

	for _, name := range goldenFiles {
		t.Run(name, func(t *testing.T) {
			goldenPath := filepath.Join(gDir, name)
			golden, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", name)
				return
			}
			require.NoError(t, err)

			actual, err := os.ReadFile(filepath.Join(outputDir, name))
			require.NoError(t, err)

			assert.Equal(t, string(golden), string(actual),
				"output %s does not match golden file", name)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current pipeline output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	outputDir := runPipelineForGolden(t)
	gDir := goldenDir()

	err := os.MkdirAll(gDir, 0o755)
	require.NoError(t, err)

	for _, name := range goldenFiles {
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		require.NoError(t, err)

		err = os.WriteFile(filepath.Join(gDir, name), data, 0o644)
		require.NoError(t, err)

		t.Logf("updated %s", name)
	}
}
