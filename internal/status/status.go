package status

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

// ArtifactInfo describes whether one dataset file exists.
type ArtifactInfo struct {
	Artifact orchestrator.Artifact `json:"artifact"`
	Label    string                `json:"label"` // human-readable name (e.g. "Call records")
	Exists   bool                  `json:"exists"`
	FilePath string                `json:"filePath,omitempty"` // set when the file exists
	Size     int64                 `json:"size,omitempty"`
}

// ReportInfo is one per-quarter network report found next to a dataset.
type ReportInfo struct {
	Quarter  string `json:"quarter"`
	Kind     string `json:"kind"` // "directed" or "undirected"
	FilePath string `json:"filePath"`
}

// DatasetStatus holds the status of one named dataset.
type DatasetStatus struct {
	Name      string         `json:"name"`
	Dir       string         `json:"dir"`
	Artifacts []ArtifactInfo `json:"artifacts"`
	Reports   []ReportInfo   `json:"reports,omitempty"`
	Complete  bool           `json:"complete"` // calls and attributes both exist
}

// Artifact returns the info of artifact a.
func (s DatasetStatus) Artifact(a orchestrator.Artifact) ArtifactInfo {
	for _, info := range s.Artifacts {
		if info.Artifact == a {
			return info
		}
	}
	return ArtifactInfo{Artifact: a}
}

var artifacts = []struct {
	artifact orchestrator.Artifact
	label    string
}{
	{orchestrator.ArtifactCalls, "Call records"},
	{orchestrator.ArtifactAttributes, "Attributes"},
	{orchestrator.ArtifactMissing, "Attributes with missing values"},
	{orchestrator.ArtifactCallStats, "Call statistics"},
	{orchestrator.ArtifactAttributeStats, "Attribute statistics"},
	{orchestrator.ArtifactManifest, "Manifest"},
	{orchestrator.ArtifactGraph, "Graph database"},
}

// reportRe matches "<quarter>-<kind>.csv" after the dataset prefix.
var reportRe = regexp.MustCompile(`^(\d{4}Q[1-4])-(directed|undirected)\.csv$`)

// GetDatasetStatus returns the artifacts and reports of dataset name in dir.
func GetDatasetStatus(dir, name string) DatasetStatus {
	st := DatasetStatus{Name: name, Dir: dir}
	for _, a := range artifacts {
		info := ArtifactInfo{Artifact: a.artifact, Label: a.label}
		path := a.artifact.Path(dir, name)
		if fi, err := os.Stat(path); err == nil {
			info.Exists = true
			info.FilePath = path
			if !fi.IsDir() {
				info.Size = fi.Size()
			}
		}
		st.Artifacts = append(st.Artifacts, info)
	}
	st.Complete = st.Artifact(orchestrator.ArtifactCalls).Exists &&
		st.Artifact(orchestrator.ArtifactAttributes).Exists

	entries, err := os.ReadDir(dir)
	if err != nil {
		return st
	}
	prefix := name + "-"
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		m := reportRe.FindStringSubmatch(strings.TrimPrefix(e.Name(), prefix))
		if m == nil {
			continue
		}
		st.Reports = append(st.Reports, ReportInfo{
			Quarter:  m[1],
			Kind:     m[2],
			FilePath: filepath.Join(dir, e.Name()),
		})
	}
	return st
}

// ListDatasets scans dir for datasets. A dataset is recognized by its call
// file; results are sorted by name.
func ListDatasets(dir string) ([]DatasetStatus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	suffix := "-" + string(orchestrator.ArtifactCalls)

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if name := strings.TrimSuffix(e.Name(), suffix); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	results := make([]DatasetStatus, 0, len(names))
	for _, name := range names {
		results = append(results, GetDatasetStatus(dir, name))
	}
	return results, nil
}
