package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/generator"
)

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := `outputDir: out
name: city
summaries: true
generator:
  nodes: 100
  edges: 4
  seed: 12
  call:
    meanCalls: 2
missing:
  age: 0.25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cdrhelper.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "city", cfg.Name)
	assert.True(t, cfg.Summaries)
	assert.Equal(t, 100, cfg.Generator.Nodes)
	assert.Equal(t, 4, cfg.Generator.Edges)
	assert.Equal(t, uint64(12), cfg.Generator.Seed)
	assert.Equal(t, 2.0, cfg.Generator.Call.MeanCalls)
	// Untouched fields keep their defaults.
	assert.Equal(t, generator.DefaultParams().Days, cfg.Generator.Days)
	assert.Equal(t, generator.DefaultCallParams().MeanSMS, cfg.Generator.Call.MeanSMS)
	assert.Equal(t, 0.25, cfg.Missing.Age)
	assert.Equal(t, filepath.Join("out", "city-graph.kuzu"), cfg.GraphPath())
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cdrhelper.yaml"), []byte("name: alt\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "alt", cfg.Name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"bad yaml", "name: [", "parse"},
		{"edges too large", "generator:\n  nodes: 5\n  edges: 5\n", "edges < nodes"},
		{"reciprocity", "generator:\n  reciprocity: 2\n", "reciprocity"},
		{"missingness", "missing:\n  gender: -0.1\n", "gender"},
		{"empty name", "name: \"\"\n", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "cdrhelper.yml"), []byte(tt.yml), 0o644))
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGraphPath_Explicit(t *testing.T) {
	cfg := Defaults()
	cfg.GraphDB = "/tmp/g.kuzu"
	assert.Equal(t, "/tmp/g.kuzu", cfg.GraphPath())
}

func TestSources_Embedded(t *testing.T) {
	cfg := Defaults()
	postcodes, weights, err := cfg.Sources()
	require.NoError(t, err)
	assert.Len(t, postcodes, 60)
	assert.Len(t, weights, 106-generator.MinAge)
}

func TestSources_RangeAndUniform(t *testing.T) {
	cfg := Defaults()
	cfg.UsePostcodeRange = true
	cfg.PostcodeBegin, cfg.PostcodeEnd = 10, 15
	cfg.UniformAges = true
	cfg.AgeMax = 28

	postcodes, weights, err := cfg.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11", "12", "13", "14"}, postcodes)
	require.Len(t, weights, 10)
	assert.InDelta(t, 0.1, weights[0], 1e-12)
}

func TestSources_Files(t *testing.T) {
	dir := t.TempDir()
	pc := filepath.Join(dir, "pc.csv")
	require.NoError(t, os.WriteFile(pc, []byte("Zip;x\n"), 0o644))

	cfg := Defaults()
	cfg.PostcodeFile = pc
	_, _, err := cfg.Sources()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postcodes")

	require.NoError(t, os.WriteFile(pc, []byte("Zip\n9000\n9100\n"), 0o644))
	cfg.PostcodeHeader = "Zip"
	cfg.PopulationFile = filepath.Join(dir, "missing.csv")
	_, _, err = cfg.Sources()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "population")
}
