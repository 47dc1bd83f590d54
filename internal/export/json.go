package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
	"github.com/dusk-indust/cdrhelper/internal/status"
)

// DatasetExport is the top-level JSON manifest of a dataset.
type DatasetExport struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	ExportedAt string                 `json:"exportedAt"`
	Params     *generator.Params      `json:"params,omitempty"`
	Missing    *generator.Missingness `json:"missing,omitempty"`
	Files      []FileExport           `json:"files"`
	Reports    []ReportExport         `json:"reports,omitempty"`
}

// FileExport describes one dataset file.
type FileExport struct {
	Artifact string `json:"artifact"`
	Label    string `json:"label"`
	FilePath string `json:"filePath"`
	Size     int64  `json:"size,omitempty"`
	Rows     int    `json:"rows,omitempty"` // set for call and attribute tables
}

// ReportExport is one quarter's network report.
type ReportExport struct {
	Quarter  string        `json:"quarter"`
	Kind     string        `json:"kind"`
	FilePath string        `json:"filePath"`
	Rows     []analyze.Row `json:"rows"`
}

// ExportDataset builds a DatasetExport from the files of dataset name in
// dir. The ID, params and missingness of an existing manifest are kept so
// that re-exporting is stable; otherwise a new ID is assigned.
func ExportDataset(dir, name string) (*DatasetExport, error) {
	st := status.GetDatasetStatus(dir, name)
	if !st.Complete {
		return nil, fmt.Errorf("export: dataset %q in %s is incomplete", name, dir)
	}

	out := &DatasetExport{
		ID:         uuid.NewString(),
		Name:       name,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	prev, err := ReadManifest(orchestrator.ArtifactManifest.Path(dir, name))
	switch {
	case err == nil:
		out.ID = prev.ID
		out.Params = prev.Params
		out.Missing = prev.Missing
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	for _, a := range st.Artifacts {
		if !a.Exists || a.Artifact == orchestrator.ArtifactManifest {
			continue
		}
		f := FileExport{
			Artifact: string(a.Artifact),
			Label:    a.Label,
			FilePath: a.FilePath,
			Size:     a.Size,
		}
		if f.Rows, err = countRows(a); err != nil {
			return nil, fmt.Errorf("export: %s: %w", a.FilePath, err)
		}
		out.Files = append(out.Files, f)
	}

	for _, r := range st.Reports {
		rows, err := readReport(r.FilePath)
		if err != nil {
			return nil, fmt.Errorf("export: %s: %w", r.FilePath, err)
		}
		out.Reports = append(out.Reports, ReportExport{
			Quarter:  r.Quarter,
			Kind:     r.Kind,
			FilePath: r.FilePath,
			Rows:     rows,
		})
	}
	return out, nil
}

// NewManifest returns a manifest recording the parameters a dataset was
// generated with. Files are filled in by ExportDataset.
func NewManifest(name string, p generator.Params, m generator.Missingness) *DatasetExport {
	out := &DatasetExport{
		ID:         uuid.NewString(),
		Name:       name,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Params:     &p,
	}
	if m.Any() {
		out.Missing = &m
	}
	return out
}

// Write encodes e as indented JSON.
func (e *DatasetExport) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteManifest writes e to the manifest file of its dataset in dir.
func WriteManifest(dir string, e *DatasetExport) (string, error) {
	path := orchestrator.ArtifactManifest.Path(dir, e.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := e.Write(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*DatasetExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e DatasetExport
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &e, nil
}

// countRows parses the call and attribute tables and returns their length.
// Other artifacts report zero.
func countRows(a status.ArtifactInfo) (int, error) {
	switch a.Artifact {
	case orchestrator.ArtifactCalls:
		f, err := os.Open(a.FilePath)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		calls, err := cdr.ReadCalls(f)
		return len(calls), err
	case orchestrator.ArtifactAttributes, orchestrator.ArtifactMissing:
		f, err := os.Open(a.FilePath)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		attrs, err := cdr.ReadAttributes(f)
		return len(attrs), err
	default:
		return 0, nil
	}
}

// readReport reads a Description,Result report written by analyze.Report.
func readReport(path string) ([]analyze.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]analyze.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, analyze.Row{Description: rec[0], Result: rec[1]})
	}
	return rows, nil
}
