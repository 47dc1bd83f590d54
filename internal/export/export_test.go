package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/graph"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

func writeDataset(t *testing.T, dir, name string) {
	t.Helper()
	var calls, attrs, report bytes.Buffer
	require.NoError(t, cdr.WriteCalls(&calls, []cdr.CallRecord{
		{Date: "20130101", ANum: 1, BNum: 2, Calls: 3, Minutes: 4.5, SMS: 6, MMS: 7},
		{Date: "20130102", ANum: 2, BNum: 1, Calls: 1, Minutes: 0.5},
	}))
	require.NoError(t, cdr.WriteAttributes(&attrs, []cdr.Attribute{
		{Number: 1, Postcode: "1000", Gender: "F", Age: 30},
		{Number: 2, Postcode: "2000", Gender: "M", Age: 40},
		{Number: 3},
	}))
	require.NoError(t, analyze.Report{Rows: []analyze.Row{
		{Description: "Number of nodes: ", Result: "2"},
	}}.WriteCSV(&report))

	require.NoError(t, os.WriteFile(orchestrator.ArtifactCalls.Path(dir, name), calls.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(orchestrator.ArtifactAttributes.Path(dir, name), attrs.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, orchestrator.ReportFilename(name, "2013Q1", "directed")), report.Bytes(), 0o644))
}

func TestExportDataset(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "test")

	e, err := ExportDataset(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "test", e.Name)
	assert.Len(t, e.ID, 36)
	assert.NotEmpty(t, e.ExportedAt)
	assert.Nil(t, e.Params)

	require.Len(t, e.Files, 2)
	assert.Equal(t, string(orchestrator.ArtifactCalls), e.Files[0].Artifact)
	assert.Equal(t, 2, e.Files[0].Rows)
	assert.Equal(t, string(orchestrator.ArtifactAttributes), e.Files[1].Artifact)
	assert.Equal(t, 3, e.Files[1].Rows)

	require.Len(t, e.Reports, 1)
	assert.Equal(t, "2013Q1", e.Reports[0].Quarter)
	assert.Equal(t, "directed", e.Reports[0].Kind)
	assert.Equal(t, []analyze.Row{{Description: "Number of nodes: ", Result: "2"}}, e.Reports[0].Rows)
}

func TestExportDataset_KeepsManifest(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "test")

	p := generator.DefaultParams()
	p.Seed = 99
	m := NewManifest("test", p, generator.Missingness{Age: 0.1})
	path, err := WriteManifest(dir, m)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ArtifactManifest.Path(dir, "test"), path)

	e, err := ExportDataset(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, m.ID, e.ID)
	require.NotNil(t, e.Params)
	assert.Equal(t, uint64(99), e.Params.Seed)
	require.NotNil(t, e.Missing)
	assert.Equal(t, 0.1, e.Missing.Age)
	for _, f := range e.Files {
		assert.NotEqual(t, string(orchestrator.ArtifactManifest), f.Artifact)
	}
}

func TestExportDataset_Incomplete(t *testing.T) {
	_, err := ExportDataset(t.TempDir(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestExportDataset_BadManifest(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "test")
	require.NoError(t, os.WriteFile(orchestrator.ArtifactManifest.Path(dir, "test"), []byte("{"), 0o644))

	_, err := ExportDataset(dir, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse manifest")
}

func TestNewManifest_NoMissingness(t *testing.T) {
	m := NewManifest("x", generator.DefaultParams(), generator.Missingness{})
	assert.Nil(t, m.Missing)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	assert.Contains(t, buf.String(), `"name": "x"`)
	assert.NotContains(t, buf.String(), `"missing"`)
}

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	for _, e := range []graph.CallEdge{
		{From: 1, To: 2, Attrs: graph.EdgeAttrs{Calls: 3}},
		{From: 2, To: 3, Attrs: graph.EdgeAttrs{Calls: 1.5}},
		{From: 4, To: 5},
	} {
		require.NoError(t, store.AddCall(ctx, e))
	}
	_, err := graph.ComputeComponents(ctx, store)
	require.NoError(t, err)

	out, err := GenerateMermaid(ctx, store)
	require.NoError(t, err)

	want := `graph LR
  subgraph C0["component-1 (60.0%)"]
    N1["1"]
    N2["2"]
    N3["3"]
  end
  subgraph C1["component-4 (40.0%)"]
    N4["4"]
    N5["5"]
  end
  N1 -->|3| N2
  N2 -->|1.5| N3
  N4 --> N5
`
	assert.Equal(t, want, out)
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "N12", nodeID(12))
	assert.Equal(t, "Nm3", nodeID(-3))
}
