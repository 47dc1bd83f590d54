package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/cdrhelper/internal/generator"
	"github.com/dusk-indust/cdrhelper/internal/sampledata"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"cdrhelper.yml", "cdrhelper.yaml"}

// Config holds project-level settings loaded from cdrhelper.yml.
type Config struct {
	OutputDir string                `yaml:"outputDir,omitempty"`
	Name      string                `yaml:"name,omitempty"`
	Generator generator.Params      `yaml:"generator,omitempty"`
	Missing   generator.Missingness `yaml:"missing,omitempty"`
	Summaries bool                  `yaml:"summaries,omitempty"`
	Verbose   bool                  `yaml:"verbose,omitempty"`

	// PostcodeFile and PopulationFile override the embedded sources.
	// UsePostcodeRange ignores any postcode file and draws postcodes from
	// [PostcodeBegin, PostcodeEnd).
	PostcodeFile     string `yaml:"postcodeFile,omitempty"`
	PostcodeHeader   string `yaml:"postcodeHeader,omitempty"`
	UsePostcodeRange bool   `yaml:"usePostcodeRange,omitempty"`
	PostcodeBegin    int    `yaml:"postcodeBegin,omitempty"`
	PostcodeEnd      int    `yaml:"postcodeEnd,omitempty"`
	PopulationFile   string `yaml:"populationFile,omitempty"`
	UniformAges      bool   `yaml:"uniformAges,omitempty"`
	AgeMax           int    `yaml:"ageMax,omitempty"`

	// GraphDB is the Kuzu database path; empty means <outputDir>/<name>-graph.kuzu.
	GraphDB string `yaml:"graphDB,omitempty"`
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() Config {
	return Config{
		OutputDir:      "data",
		Name:           "test",
		Generator:      generator.DefaultParams(),
		PostcodeHeader: generator.DefaultPostcodeHeader,
		PostcodeBegin:  generator.DefaultPostcodeBegin,
		PostcodeEnd:    generator.DefaultPostcodeEnd,
		AgeMax:         generator.DefaultAgeMax,
	}
}

// Load reads cdrhelper.yml or cdrhelper.yaml from the given directory on top
// of Defaults. Returns the defaults (not an error) if no config file exists.
func Load(dir string) (*Config, error) {
	cfg := Defaults()
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no run could succeed with.
func (c *Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	g := c.Generator
	if g.Edges < 1 || g.Edges >= g.Nodes {
		errs = append(errs, fmt.Errorf("generator: need 1 <= edges < nodes, got nodes=%d edges=%d", g.Nodes, g.Edges))
	}
	if g.Days < 0 {
		errs = append(errs, fmt.Errorf("generator: days must not be negative, got %d", g.Days))
	}
	if g.Reciprocity < 0 || g.Reciprocity > 1 {
		errs = append(errs, fmt.Errorf("generator: reciprocity must be within [0, 1], got %v", g.Reciprocity))
	}
	if err := c.Missing.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GraphPath returns the Kuzu database path of the configured dataset.
func (c *Config) GraphPath() string {
	if c.GraphDB != "" {
		return c.GraphDB
	}
	return filepath.Join(c.OutputDir, c.Name+"-graph.kuzu")
}

// Sources loads the postcode list and age weights the generator draws
// attributes from, falling back to the embedded sample data.
func (c *Config) Sources() ([]string, []float64, error) {
	var postcodes []string
	var err error
	switch {
	case c.UsePostcodeRange:
		postcodes, err = generator.Postcodes(nil, "", c.PostcodeBegin, c.PostcodeEnd)
	default:
		postcodes, err = withSource(c.PostcodeFile, sampledata.Postcodes, func(r io.Reader) ([]string, error) {
			return generator.Postcodes(r, c.PostcodeHeader, c.PostcodeBegin, c.PostcodeEnd)
		})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("postcodes: %w", err)
	}

	var weights []float64
	if c.UniformAges {
		weights, err = generator.PopulationWeights(nil, c.AgeMax)
	} else {
		weights, err = withSource(c.PopulationFile, sampledata.Population, func(r io.Reader) ([]float64, error) {
			return generator.PopulationWeights(r, c.AgeMax)
		})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("population: %w", err)
	}
	return postcodes, weights, nil
}

// withSource runs parse over path, or over the embedded fallback when path
// is empty.
func withSource[T any](path string, fallback func() io.Reader, parse func(io.Reader) (T, error)) (T, error) {
	if path == "" {
		return parse(fallback())
	}
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return parse(f)
}
