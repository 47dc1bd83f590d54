package mcptools

import (
	"github.com/dusk-indust/cdrhelper/internal/analyze"
	"github.com/dusk-indust/cdrhelper/internal/export"
	"github.com/dusk-indust/cdrhelper/internal/graph"
	"github.com/dusk-indust/cdrhelper/internal/status"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.
// Zero values fall back to the server's configuration.

// GenerateDatasetInput is the input for the generate_dataset MCP tool.
type GenerateDatasetInput struct {
	Name            string  `json:"name,omitempty" jsonschema:"dataset name, the prefix of every file (default: configured name)"`
	OutputDir       string  `json:"outputDir,omitempty" jsonschema:"directory to write the dataset to (default: configured output directory)"`
	Nodes           int     `json:"nodes,omitempty" jsonschema:"number of subscribers before node 0 is removed"`
	Edges           int     `json:"edges,omitempty" jsonschema:"links each new subscriber attaches with"`
	Days            int     `json:"days,omitempty" jsonschema:"number of consecutive days of calls"`
	CallsPerDay     float64 `json:"callsPerDay,omitempty" jsonschema:"mean number of caller pairs per day"`
	StartDate       string  `json:"startDate,omitempty" jsonschema:"first date, YYYYMMDD"`
	Reciprocity     float64 `json:"reciprocity,omitempty" jsonschema:"share of each day's calls that are answered, in [0, 1]"`
	Seed            uint64  `json:"seed,omitempty" jsonschema:"random seed; 0 picks one and reports it"`
	MissingPostcode float64 `json:"missingPostcode,omitempty" jsonschema:"share of postcodes to blank"`
	MissingAge      float64 `json:"missingAge,omitempty" jsonschema:"share of ages to blank"`
	MissingGender   float64 `json:"missingGender,omitempty" jsonschema:"share of genders to blank"`
	Summaries       bool    `json:"summaries,omitempty" jsonschema:"also write statistics and per-quarter network reports"`
}

// GenerateDatasetOutput is the result of the generate_dataset MCP tool.
type GenerateDatasetOutput struct {
	Name         string   `json:"name"`
	Seed         uint64   `json:"seed"`
	FilesWritten []string `json:"filesWritten"`
	Calls        int      `json:"calls"`
	Subscribers  int      `json:"subscribers"`
}

// SummaryStatsInput is the input for the summary_stats MCP tool.
type SummaryStatsInput struct {
	Name      string `json:"name,omitempty" jsonschema:"dataset name, the prefix of every file (default: configured name)"`
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory holding the dataset (default: configured output directory)"`
	Table     string `json:"table,omitempty" jsonschema:"calls, attributes or missing (default: calls)"`
}

// ColumnStats is one summarized column. Values follow Stats order.
type ColumnStats struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SummaryStatsOutput is the result of the summary_stats MCP tool.
type SummaryStatsOutput struct {
	Table   string        `json:"table"`
	Stats   []string      `json:"stats"`
	Columns []ColumnStats `json:"columns"`
}

// NetworkSummaryInput is the input for the network_summary MCP tool.
type NetworkSummaryInput struct {
	Name      string `json:"name,omitempty" jsonschema:"dataset name, the prefix of every file (default: configured name)"`
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory holding the dataset (default: configured output directory)"`
	Quarter   string `json:"quarter,omitempty" jsonschema:"only this quarter, e.g. 2013Q1 (default: all)"`
	Structure bool   `json:"structure,omitempty" jsonschema:"also report weak component sizes and the edge overlap distribution"`
}

// QuarterReport holds both network reports of one quarter.
type QuarterReport struct {
	Quarter    string        `json:"quarter"`
	Directed   []analyze.Row `json:"directed"`
	Undirected []analyze.Row `json:"undirected"`
	Structure  []analyze.Row `json:"structure,omitempty"`
}

// NetworkSummaryOutput is the result of the network_summary MCP tool.
type NetworkSummaryOutput struct {
	Quarters []QuarterReport `json:"quarters"`
}

// ListDatasetsInput is the input for the list_datasets MCP tool.
type ListDatasetsInput struct {
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory to scan (default: configured output directory)"`
}

// ListDatasetsOutput is the result of the list_datasets MCP tool.
type ListDatasetsOutput struct {
	Datasets []status.DatasetStatus `json:"datasets"`
}

// ExportDatasetInput is the input for the export_dataset MCP tool.
type ExportDatasetInput struct {
	Name      string `json:"name,omitempty" jsonschema:"dataset name, the prefix of every file (default: configured name)"`
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory holding the dataset (default: configured output directory)"`
}

// ExportDatasetOutput is the result of the export_dataset MCP tool.
type ExportDatasetOutput struct {
	Export export.DatasetExport `json:"export"`
}

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	Name      string `json:"name,omitempty" jsonschema:"dataset name, the prefix of every file (default: configured name)"`
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory holding the dataset (default: configured output directory)"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Stats      graph.StoreStats `json:"stats"`
	Components int              `json:"components"`
}

// QuerySubscribersInput is the input for the query_subscribers MCP tool.
type QuerySubscribersInput struct {
	Gender         string `json:"gender,omitempty" jsonschema:"exact gender identifier"`
	MinAge         int    `json:"minAge,omitempty" jsonschema:"minimum age, inclusive"`
	MaxAge         int    `json:"maxAge,omitempty" jsonschema:"maximum age, inclusive"`
	PostcodePrefix string `json:"postcodePrefix,omitempty" jsonschema:"postcode prefix"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySubscribersOutput is the result of the query_subscribers MCP tool.
type QuerySubscribersOutput struct {
	Subscribers []graph.SubscriberNode `json:"subscribers"`
	Total       int                    `json:"total"`
}

// GetContactsInput is the input for the get_contacts MCP tool.
type GetContactsInput struct {
	Number    int64  `json:"number" jsonschema:"subscriber number to start from"`
	Direction string `json:"direction,omitempty" jsonschema:"outgoing (whom it called) or incoming (who called it). Default: outgoing"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum number of hops (default: 2)"`
}

// GetContactsOutput is the result of the get_contacts MCP tool.
type GetContactsOutput struct {
	Chains []graph.ContactChain `json:"chains"`
}

// GetComponentsInput is the input for the get_components MCP tool.
type GetComponentsInput struct{}

// GetComponentsOutput is the result of the get_components MCP tool.
type GetComponentsOutput struct {
	Components []graph.ComponentNode `json:"components"`
}
