package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestGetDatasetStatus(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "test-calls.txt")
	touch(t, dir, "test-attr.txt")
	touch(t, dir, "test-2013Q1-directed.csv")
	touch(t, dir, "test-2013Q2-undirected.csv")
	touch(t, dir, "test-b-2013Q1-directed.csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "test-graph.kuzu"), 0o755))

	st := GetDatasetStatus(dir, "test")
	assert.True(t, st.Complete)
	assert.Len(t, st.Artifacts, 7)

	calls := st.Artifact(orchestrator.ArtifactCalls)
	assert.True(t, calls.Exists)
	assert.Equal(t, filepath.Join(dir, "test-calls.txt"), calls.FilePath)
	assert.Equal(t, int64(1), calls.Size)

	assert.False(t, st.Artifact(orchestrator.ArtifactMissing).Exists)
	assert.Empty(t, st.Artifact(orchestrator.ArtifactMissing).FilePath)

	graphDB := st.Artifact(orchestrator.ArtifactGraph)
	assert.True(t, graphDB.Exists)
	assert.Zero(t, graphDB.Size)

	assert.Equal(t, []ReportInfo{
		{Quarter: "2013Q1", Kind: "directed", FilePath: filepath.Join(dir, "test-2013Q1-directed.csv")},
		{Quarter: "2013Q2", Kind: "undirected", FilePath: filepath.Join(dir, "test-2013Q2-undirected.csv")},
	}, st.Reports)
}

func TestGetDatasetStatus_Incomplete(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "test-calls.txt")

	st := GetDatasetStatus(dir, "test")
	assert.False(t, st.Complete)
	assert.Empty(t, st.Reports)
}

func TestListDatasets(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "zeta-calls.txt")
	touch(t, dir, "alpha-calls.txt")
	touch(t, dir, "alpha-attr.txt")
	touch(t, dir, "orphan-attr.txt")
	touch(t, dir, "-calls.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir-calls.txt"), 0o755))

	list, err := ListDatasets(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.True(t, list[0].Complete)
	assert.Equal(t, "zeta", list[1].Name)
	assert.False(t, list[1].Complete)
}

func TestListDatasets_MissingDir(t *testing.T) {
	_, err := ListDatasets(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
