package mcptools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/config"
	"github.com/dusk-indust/cdrhelper/internal/export"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
	"github.com/dusk-indust/cdrhelper/internal/status"
)

// DatasetService handles the dataset MCP tools. Tool inputs override the
// configuration it was created with.
type DatasetService struct {
	cfg config.Config
	log *zap.Logger
}

// NewDatasetService creates a DatasetService. A nil logger discards logs.
func NewDatasetService(cfg config.Config, log *zap.Logger) *DatasetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DatasetService{cfg: cfg, log: log}
}

func (s *DatasetService) ref(name, dir string) (string, string) {
	if name == "" {
		name = s.cfg.Name
	}
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	return name, dir
}

// GenerateDataset runs the generation pipeline and writes the dataset with
// its manifest.
func (s *DatasetService) GenerateDataset(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateDatasetInput,
) (*mcp.CallToolResult, GenerateDatasetOutput, error) {
	cfg := s.cfg
	cfg.Name, cfg.OutputDir = s.ref(input.Name, input.OutputDir)
	p := &cfg.Generator
	setIf(&p.Nodes, input.Nodes)
	setIf(&p.Edges, input.Edges)
	setIf(&p.Days, input.Days)
	setIf(&p.CallsPerDay, input.CallsPerDay)
	setIf(&p.StartDate, input.StartDate)
	setIf(&p.Reciprocity, input.Reciprocity)
	setIf(&p.Seed, input.Seed)
	setIf(&cfg.Missing.Postcode, input.MissingPostcode)
	setIf(&cfg.Missing.Age, input.MissingAge)
	setIf(&cfg.Missing.Gender, input.MissingGender)
	cfg.Summaries = cfg.Summaries || input.Summaries
	p.Seed = generator.ResolveSeed(p.Seed)

	if err := cfg.Validate(); err != nil {
		return nil, GenerateDatasetOutput{}, err
	}
	postcodes, weights, err := cfg.Sources()
	if err != nil {
		return nil, GenerateDatasetOutput{}, err
	}

	pipeline := orchestrator.NewPipeline(orchestrator.Config{
		Name:       cfg.Name,
		OutputDir:  cfg.OutputDir,
		Params:     cfg.Generator,
		Missing:    cfg.Missing,
		Postcodes:  postcodes,
		AgeWeights: weights,
		Summaries:  cfg.Summaries,
		Logger:     s.log,
	})
	defer pipeline.Close()

	results, err := pipeline.Run(ctx)
	if err != nil {
		return nil, GenerateDatasetOutput{}, err
	}
	files := results[len(results)-1].FilePaths

	manifest, err := export.WriteManifest(cfg.OutputDir, export.NewManifest(cfg.Name, cfg.Generator, cfg.Missing))
	if err != nil {
		return nil, GenerateDatasetOutput{}, fmt.Errorf("write manifest: %w", err)
	}
	files = append(files, manifest)

	ds := pipeline.Dataset()
	return nil, GenerateDatasetOutput{
		Name:         cfg.Name,
		Seed:         cfg.Generator.Seed,
		FilesWritten: files,
		Calls:        len(ds.Calls),
		Subscribers:  len(ds.Attributes),
	}, nil
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// SummaryStats describes the numeric columns of a dataset table.
func (s *DatasetService) SummaryStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SummaryStatsInput,
) (*mcp.CallToolResult, SummaryStatsOutput, error) {
	name, dir := s.ref(input.Name, input.OutputDir)
	table := input.Table
	if table == "" {
		table = "calls"
	}

	var columns []analyze.Column
	switch table {
	case "calls":
		calls, err := readCalls(orchestrator.ArtifactCalls.Path(dir, name))
		if err != nil {
			return nil, SummaryStatsOutput{}, err
		}
		columns = analyze.CallColumns(calls)
	case "attributes", "missing":
		artifact := orchestrator.ArtifactAttributes
		if table == "missing" {
			artifact = orchestrator.ArtifactMissing
		}
		attrs, err := readAttributes(artifact.Path(dir, name))
		if err != nil {
			return nil, SummaryStatsOutput{}, err
		}
		columns = analyze.AttributeColumns(attrs)
	default:
		return nil, SummaryStatsOutput{}, fmt.Errorf("unknown table %q: want calls, attributes or missing", table)
	}

	summary := analyze.SummaryStats(columns)
	out := SummaryStatsOutput{Table: table, Stats: analyze.StatNames}
	for _, c := range summary.Columns {
		out.Columns = append(out.Columns, ColumnStats{Name: c.Name, Values: c.Strings()})
	}
	return nil, out, nil
}

// NetworkSummary reports the directed and undirected network statistics of
// each quarter of a dataset's calls, and optionally their structure.
func (s *DatasetService) NetworkSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NetworkSummaryInput,
) (*mcp.CallToolResult, NetworkSummaryOutput, error) {
	name, dir := s.ref(input.Name, input.OutputDir)
	calls, err := readCalls(orchestrator.ArtifactCalls.Path(dir, name))
	if err != nil {
		return nil, NetworkSummaryOutput{}, err
	}

	if input.Quarter != "" {
		kept := calls[:0:0]
		for _, c := range calls {
			q, err := cdr.Quarter(c.Date)
			if err != nil {
				return nil, NetworkSummaryOutput{}, err
			}
			if q == input.Quarter {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			return nil, NetworkSummaryOutput{}, fmt.Errorf("no calls in quarter %s", input.Quarter)
		}
		calls = kept
	}

	summaries, err := analyze.SummarizeQuarters(ctx, calls)
	if err != nil {
		return nil, NetworkSummaryOutput{}, err
	}
	var structures []*analyze.StructureStats
	if input.Structure {
		if structures, err = analyze.StructureQuarters(ctx, calls); err != nil {
			return nil, NetworkSummaryOutput{}, err
		}
	}
	out := NetworkSummaryOutput{Quarters: make([]QuarterReport, 0, len(summaries))}
	for i, q := range summaries {
		report := QuarterReport{
			Quarter:    q.Quarter,
			Directed:   q.Directed.Report().Rows,
			Undirected: q.Undirected.Report().Rows,
		}
		if structures != nil {
			report.Structure = structures[i].Report().Rows
		}
		out.Quarters = append(out.Quarters, report)
	}
	return nil, out, nil
}

// ListDatasets lists the datasets in an output directory. A missing
// directory holds no datasets.
func (s *DatasetService) ListDatasets(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListDatasetsInput,
) (*mcp.CallToolResult, ListDatasetsOutput, error) {
	_, dir := s.ref("", input.OutputDir)
	datasets, err := status.ListDatasets(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ListDatasetsOutput{Datasets: []status.DatasetStatus{}}, nil
		}
		return nil, ListDatasetsOutput{}, fmt.Errorf("list datasets: %w", err)
	}
	return nil, ListDatasetsOutput{Datasets: datasets}, nil
}

// ExportDataset returns the JSON manifest of a dataset.
func (s *DatasetService) ExportDataset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExportDatasetInput,
) (*mcp.CallToolResult, ExportDatasetOutput, error) {
	name, dir := s.ref(input.Name, input.OutputDir)
	e, err := export.ExportDataset(dir, name)
	if err != nil {
		return nil, ExportDatasetOutput{}, err
	}
	return nil, ExportDatasetOutput{Export: *e}, nil
}

func readCalls(path string) ([]cdr.CallRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cdr.ReadCalls(f)
}

func readAttributes(path string) ([]cdr.Attribute, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cdr.ReadAttributes(f)
}
