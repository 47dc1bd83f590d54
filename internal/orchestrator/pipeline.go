package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// Compile-time interface checks.
var (
	_ Orchestrator  = (*Pipeline)(nil)
	_ StageExecutor = (*Pipeline)(nil)
)

// exportParallelism bounds the number of files written at once.
const exportParallelism = 4

// Pipeline implements both Orchestrator and StageExecutor. It generates one
// dataset stage by stage, delegating prerequisite checks to a Router, file
// writing to a FanOut and progress reporting to a ProgressReporter.
//
// All stages draw from one random source seeded from cfg.Params.Seed, so
// running the full pipeline reproduces generator.MakeData for the same
// parameters.
type Pipeline struct {
	cfg      Config
	log      *zap.Logger
	router   *Router
	progress *ProgressReporter
	fanout   *FanOut

	mu      sync.Mutex
	rng     *rand.Rand
	net     *graph.Network
	calls   []cdr.CallRecord
	attrs   []cdr.Attribute
	missing []cdr.Attribute
}

// NewPipeline creates a Pipeline and registers it as the executor of every
// stage.
func NewPipeline(cfg Config) *Pipeline {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("dataset", cfg.Name))

	progress := NewProgressReporter(log)
	p := &Pipeline{
		cfg:      cfg,
		log:      log,
		router:   NewRouter(),
		progress: progress,
		fanout:   NewFanOut(exportParallelism, progress.Emit),
		rng:      generator.NewRand(cfg.Params.Seed),
	}
	for stage := FirstStage; stage <= LastStage; stage++ {
		p.router.RegisterExecutor(stage, p)
	}
	return p
}

// RunStage executes a single pipeline stage, emitting a header event before
// and a completion or failure event after.
func (p *Pipeline) RunStage(ctx context.Context, stage Stage) (*StageResult, error) {
	p.progress.Emit(ProgressEvent{
		Stage:   stage,
		Section: FormatStageHeader(p.cfg.Name, stage),
		Status:  ProgressWorking,
	})

	result, err := p.router.Route(ctx, stage)
	if err != nil {
		p.progress.Emit(ProgressEvent{
			Stage:   stage,
			Section: stage.String(),
			Status:  ProgressFailed,
			Message: err.Error(),
		})
		return nil, err
	}

	p.progress.Emit(ProgressEvent{
		Stage:   stage,
		Section: stage.String(),
		Status:  ProgressComplete,
		Message: fmt.Sprintf("%d rows", result.Rows),
	})
	return result, nil
}

// RunPipeline executes stages from..to inclusive.
func (p *Pipeline) RunPipeline(ctx context.Context, from, to Stage) ([]StageResult, error) {
	if from > to {
		return nil, fmt.Errorf("pipeline: invalid range: from (%d) > to (%d)", from, to)
	}
	var results []StageResult
	for stage := from; stage <= to; stage++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := p.RunStage(ctx, stage)
		if err != nil {
			return results, fmt.Errorf("pipeline: stage %d (%s) failed: %w", stage, stage, err)
		}
		results = append(results, *result)
	}
	return results, nil
}

// Run executes the whole pipeline.
func (p *Pipeline) Run(ctx context.Context) ([]StageResult, error) {
	return p.RunPipeline(ctx, FirstStage, LastStage)
}

// Progress returns a channel that emits progress events.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when the
// pipeline is no longer needed.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// Dataset returns the dataset generated so far. Fields of stages that have
// not run are nil.
func (p *Pipeline) Dataset() *generator.Dataset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &generator.Dataset{Graph: p.net, Calls: p.calls, Attributes: p.attrs}
}

// MissingAttributes returns the attribute table with values removed, or nil
// if the missingness stage has not run or had nothing to remove.
func (p *Pipeline) MissingAttributes() []cdr.Attribute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.missing
}

// Execute is the StageExecutor callback invoked by the Router.
func (p *Pipeline) Execute(ctx context.Context, stage Stage) (*StageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.log.With(zap.Stringer("stage", stage))
	prm := p.cfg.Params
	result := &StageResult{Stage: stage}

	switch stage {
	case StageGraph:
		g, err := generator.CallerNetwork(prm.Nodes, prm.Edges, p.rng)
		if err != nil {
			return nil, err
		}
		p.net = g
		result.Rows = g.NumberOfEdges()
		log.Info("caller network built",
			zap.Int("nodes", g.NumberOfNodes()),
			zap.Int("edges", g.NumberOfEdges()))

	case StageCallers:
		calls, err := generator.DateCallers(p.net, prm.Days, prm.CallsPerDay, prm.StartDate, p.rng)
		if err != nil {
			return nil, err
		}
		p.calls = calls
		result.Rows = len(calls)
		log.Info("callers dated", zap.Int("days", prm.Days), zap.Int("calls", len(calls)))

	case StageCallData:
		p.calls = generator.CallData(p.calls, prm.Call, p.rng)
		result.Rows = len(p.calls)
		log.Debug("traffic drawn", zap.Int("calls", len(p.calls)))

	case StageReciprocate:
		before := len(p.calls)
		calls, err := generator.Reciprocate(p.calls, prm.Reciprocity, prm.Call, p.rng)
		if err != nil {
			return nil, err
		}
		p.calls = calls
		result.Rows = len(calls)
		log.Info("calls reciprocated", zap.Int("added", len(calls)-before))

	case StageAttributes:
		attrs, err := generator.Attributes(p.net, p.cfg.Postcodes, p.cfg.AgeWeights, prm.MaleID, prm.FemaleID, p.rng)
		if err != nil {
			return nil, err
		}
		p.attrs = attrs
		result.Rows = len(attrs)
		log.Info("attributes drawn", zap.Int("subscribers", len(attrs)))

	case StageMissingness:
		if !p.cfg.Missing.Any() {
			log.Debug("no missingness requested")
			break
		}
		missing, err := generator.InsertMissing(p.attrs, p.cfg.Missing, p.rng)
		if err != nil {
			return nil, err
		}
		p.missing = missing
		result.Rows = len(missing)
		log.Info("missing values inserted",
			zap.Float64("postcode", p.cfg.Missing.Postcode),
			zap.Float64("age", p.cfg.Missing.Age),
			zap.Float64("gender", p.cfg.Missing.Gender))

	case StageExport:
		paths, err := p.export(ctx, log)
		if err != nil {
			return nil, err
		}
		result.FilePaths = paths
		result.Rows = len(p.calls)

	default:
		return nil, fmt.Errorf("pipeline: unknown stage %d", stage)
	}
	return result, nil
}

// export writes the dataset files in parallel. Coherence issues are logged
// and do not block the export.
func (p *Pipeline) export(ctx context.Context, log *zap.Logger) ([]string, error) {
	ds := &generator.Dataset{Graph: p.net, Calls: p.calls, Attributes: p.attrs}
	for _, issue := range CheckCoherence(ds) {
		log.Warn("coherence issue", zap.String("kind", string(issue.Kind)), zap.String("detail", issue.Description))
	}

	if err := cdr.EnsureDir(p.cfg.OutputDir); err != nil {
		return nil, err
	}

	tasks := p.exportTasks()
	results, err := p.fanout.Run(ctx, StageExport, tasks)
	if err != nil {
		return nil, fmt.Errorf("pipeline: export: %w", err)
	}

	var paths []string
	for _, r := range results {
		paths = append(paths, r.FilePaths...)
	}
	for _, path := range paths {
		log.Info("file written", zap.String("path", path))
	}
	return paths, nil
}

func (p *Pipeline) exportTasks() []WriteTask {
	dir, name := p.cfg.OutputDir, p.cfg.Name
	calls, attrs, missing := p.calls, p.attrs, p.missing

	tasks := []WriteTask{
		fileTask("calls", ArtifactCalls.Path(dir, name), func(w io.Writer) error {
			return cdr.WriteCalls(w, calls)
		}),
		fileTask("attributes", ArtifactAttributes.Path(dir, name), func(w io.Writer) error {
			return cdr.WriteAttributes(w, attrs)
		}),
	}
	if missing != nil {
		tasks = append(tasks, fileTask("missing", ArtifactMissing.Path(dir, name), func(w io.Writer) error {
			return cdr.WriteAttributes(w, missing)
		}))
	}
	if !p.cfg.Summaries {
		return tasks
	}

	statsAttrs := attrs
	if missing != nil {
		statsAttrs = missing
	}
	tasks = append(tasks,
		fileTask("call-stats", ArtifactCallStats.Path(dir, name), func(w io.Writer) error {
			return analyze.SummaryStats(analyze.CallColumns(calls)).WriteCSV(w)
		}),
		fileTask("attribute-stats", ArtifactAttributeStats.Path(dir, name), func(w io.Writer) error {
			return analyze.SummaryStats(analyze.AttributeColumns(statsAttrs)).WriteCSV(w)
		}),
		WriteTask{
			Section: "network-reports",
			Run: func(ctx context.Context) ([]string, error) {
				return writeQuarterReports(ctx, dir, name, calls)
			},
		},
	)
	return tasks
}

// writeQuarterReports writes the directed and undirected network report of
// every quarter in calls.
func writeQuarterReports(ctx context.Context, dir, name string, calls []cdr.CallRecord) ([]string, error) {
	summaries, err := analyze.SummarizeQuarters(ctx, calls)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, s := range summaries {
		reports := []struct {
			kind   string
			report analyze.Report
		}{
			{"directed", s.Directed.Report()},
			{"undirected", s.Undirected.Report()},
		}
		for _, r := range reports {
			path := filepath.Join(dir, ReportFilename(name, s.Quarter, r.kind))
			if err := writeFile(path, r.report.WriteCSV); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// fileTask wraps a writer function as a WriteTask producing a single file.
func fileTask(section, path string, write func(io.Writer) error) WriteTask {
	return WriteTask{
		Section: section,
		Run: func(ctx context.Context) ([]string, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := writeFile(path, write); err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
	}
}

// writeFile renders into memory and writes path in one call, creating
// directories as needed.
func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
