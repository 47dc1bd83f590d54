package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/config"
	"github.com/dusk-indust/cdrhelper/internal/export"
	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

var genFlags struct {
	nodes, edges, days int
	callsPerDay        float64
	startDate          string
	reciprocity        float64
	seed               uint64
	meanCalls          float64
	callDuration       float64
	meanSMS, meanMMS   float64
	missingPostcode    float64
	missingAge         float64
	missingGender      float64
	summaries          bool
	postcodes          string
	postcodeRange      bool
	population         string
	uniformAges        bool
	until              string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset",
	Long: `Runs the generation pipeline and writes <name>-calls.txt, <name>-attr.txt,
<name>-attr-missing.txt (when any missingness is set) and <name>-manifest.json.
With --summaries the column statistics and per-quarter network reports are
written too.

Example:
  cdrhelper generate --nodes 1000 --edges 5 --days 90 --seed 42 --summaries`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&genFlags.nodes, "nodes", 0, "subscribers before node 0 is removed")
	f.IntVar(&genFlags.edges, "edges", 0, "links each new subscriber attaches with")
	f.IntVar(&genFlags.days, "days", 0, "consecutive days of calls")
	f.Float64Var(&genFlags.callsPerDay, "calls-per-day", 0, "mean caller pairs per day")
	f.StringVar(&genFlags.startDate, "start-date", "", "first date, YYYYMMDD")
	f.Float64Var(&genFlags.reciprocity, "reciprocity", 0, "share of each day's calls that are answered")
	f.Uint64Var(&genFlags.seed, "seed", 0, "random seed (0 picks one)")
	f.Float64Var(&genFlags.meanCalls, "mean-calls", 0, "Poisson mean of calls per record")
	f.Float64Var(&genFlags.callDuration, "call-duration", 0, "log-logistic shape of call minutes")
	f.Float64Var(&genFlags.meanSMS, "mean-sms", 0, "Poisson mean of SMS per record")
	f.Float64Var(&genFlags.meanMMS, "mean-mms", 0, "Poisson mean of MMS per record")
	f.Float64Var(&genFlags.missingPostcode, "missing-postcode", 0, "share of postcodes to blank")
	f.Float64Var(&genFlags.missingAge, "missing-age", 0, "share of ages to blank")
	f.Float64Var(&genFlags.missingGender, "missing-gender", 0, "share of genders to blank")
	f.BoolVar(&genFlags.summaries, "summaries", false, "write statistics and network reports")
	f.StringVar(&genFlags.postcodes, "postcodes", "", "postcode CSV (default: embedded sample)")
	f.BoolVar(&genFlags.postcodeRange, "postcode-range", false, "draw postcodes from the configured numeric range")
	f.StringVar(&genFlags.population, "population", "", "population CSV (default: embedded sample)")
	f.BoolVar(&genFlags.uniformAges, "uniform-ages", false, "draw ages uniformly")
	f.StringVar(&genFlags.until, "until", orchestrator.LastStage.String(), "last stage to run")
}

// applyGenerateFlags copies every flag the user set onto c.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	g := &c.Generator
	set := func(flag string, apply func()) {
		if f.Changed(flag) {
			apply()
		}
	}
	set("nodes", func() { g.Nodes = genFlags.nodes })
	set("edges", func() { g.Edges = genFlags.edges })
	set("days", func() { g.Days = genFlags.days })
	set("calls-per-day", func() { g.CallsPerDay = genFlags.callsPerDay })
	set("start-date", func() { g.StartDate = genFlags.startDate })
	set("reciprocity", func() { g.Reciprocity = genFlags.reciprocity })
	set("seed", func() { g.Seed = genFlags.seed })
	set("mean-calls", func() { g.Call.MeanCalls = genFlags.meanCalls })
	set("call-duration", func() { g.Call.CallDuration = genFlags.callDuration })
	set("mean-sms", func() { g.Call.MeanSMS = genFlags.meanSMS })
	set("mean-mms", func() { g.Call.MeanMMS = genFlags.meanMMS })
	set("missing-postcode", func() { c.Missing.Postcode = genFlags.missingPostcode })
	set("missing-age", func() { c.Missing.Age = genFlags.missingAge })
	set("missing-gender", func() { c.Missing.Gender = genFlags.missingGender })
	set("summaries", func() { c.Summaries = genFlags.summaries })
	set("postcodes", func() { c.PostcodeFile = genFlags.postcodes })
	set("postcode-range", func() { c.UsePostcodeRange = genFlags.postcodeRange })
	set("population", func() { c.PopulationFile = genFlags.population })
	set("uniform-ages", func() { c.UniformAges = genFlags.uniformAges })
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd, cfg)
	cfg.Generator.Seed = generator.ResolveSeed(cfg.Generator.Seed)
	if err := cfg.Validate(); err != nil {
		return err
	}
	until, err := orchestrator.ParseStage(genFlags.until)
	if err != nil {
		return err
	}
	postcodes, weights, err := cfg.Sources()
	if err != nil {
		return err
	}

	logger.Info("Generating dataset",
		zap.String("name", cfg.Name),
		zap.String("dir", cfg.OutputDir),
		zap.Uint64("seed", cfg.Generator.Seed))

	pipeline := orchestrator.NewPipeline(orchestrator.Config{
		Name:       cfg.Name,
		OutputDir:  cfg.OutputDir,
		Params:     cfg.Generator,
		Missing:    cfg.Missing,
		Postcodes:  postcodes,
		AgeWeights: weights,
		Summaries:  cfg.Summaries,
		Logger:     logger,
	})
	done := printProgress(cmd.ErrOrStderr(), cfg.Name, pipeline.Progress())

	results, err := pipeline.RunPipeline(cmd.Context(), orchestrator.FirstStage, until)
	pipeline.Close()
	<-done
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed: %d\n", cfg.Generator.Seed)
	if until != orchestrator.StageExport {
		fmt.Fprintf(out, "stopped after %s; nothing written\n", until)
		return nil
	}

	manifest, err := export.WriteManifest(cfg.OutputDir, export.NewManifest(cfg.Name, cfg.Generator, cfg.Missing))
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	for _, path := range results[len(results)-1].FilePaths {
		fmt.Fprintln(out, path)
	}
	fmt.Fprintln(out, manifest)
	return nil
}

// printProgress writes each event to w until events is closed. Stage
// headers are printed bare.
func printProgress(w io.Writer, name string, events <-chan orchestrator.ProgressEvent) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Section == orchestrator.FormatStageHeader(name, ev.Stage) {
				fmt.Fprintln(w, ev.Section)
				continue
			}
			fmt.Fprintln(w, orchestrator.FormatProgress(ev))
		}
	}()
	return done
}
