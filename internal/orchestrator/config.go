package orchestrator

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/generator"
)

// Config holds runtime configuration for a generation run.
type Config struct {
	// Name is the dataset name; it prefixes every output file.
	Name string

	// OutputDir is the directory the dataset files are written to.
	OutputDir string

	// Params are the generator parameters. Params.Seed seeds the whole run.
	Params generator.Params

	// Missing holds the per-column missingness probabilities. When all are
	// zero no missing-attribute file is written.
	Missing generator.Missingness

	// Postcodes and AgeWeights are the attribute sources, as returned by
	// generator.Postcodes and generator.PopulationWeights.
	Postcodes  []string
	AgeWeights []float64

	// Summaries enables the statistics and per-quarter network reports in
	// the export stage.
	Summaries bool

	// Logger receives stage and file logs. Nil disables logging.
	Logger *zap.Logger
}

// Artifact names one kind of file a dataset consists of.
type Artifact string

const (
	ArtifactCalls          Artifact = "calls.txt"
	ArtifactAttributes     Artifact = "attr.txt"
	ArtifactMissing        Artifact = "attr-missing.txt"
	ArtifactCallStats      Artifact = "calls-stats.csv"
	ArtifactAttributeStats Artifact = "attr-stats.csv"
	ArtifactManifest       Artifact = "manifest.json"
	ArtifactGraph          Artifact = "graph.kuzu"
)

// Filename returns the file name of artifact a for dataset name.
func (a Artifact) Filename(name string) string {
	return name + "-" + string(a)
}

// Path returns the path of artifact a for dataset name inside dir.
func (a Artifact) Path(dir, name string) string {
	return filepath.Join(dir, a.Filename(name))
}

// ReportFilename returns the file name of one quarter's network report.
// kind is "directed" or "undirected".
func ReportFilename(name, quarter, kind string) string {
	return name + "-" + quarter + "-" + kind + ".csv"
}
