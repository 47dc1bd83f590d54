package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/cdrhelper/internal/mcptools"
)

var serveFlags struct {
	http    string
	noGraph bool
}

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Run as an MCP server",
	Long: `Serves the dataset tools (generate_dataset, summary_stats, network_summary,
list_datasets, export_dataset) and the call graph tools (build_graph,
query_subscribers, get_contacts, get_components) over MCP.

Stdio is used unless --http gives a listen address for streamable HTTP.`,
	Args: cobra.NoArgs,
	RunE: runServeMCP,
}

func init() {
	serveMCPCmd.Flags().StringVar(&serveFlags.http, "http", "", "listen address for streamable HTTP, e.g. :8080")
	serveMCPCmd.Flags().BoolVar(&serveFlags.noGraph, "no-graph", false, "do not register the call graph tools")
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	datasets := mcptools.NewDatasetService(*cfg, logger)

	var graphs *mcptools.GraphService
	if !serveFlags.noGraph {
		store, err := openGraphStore()
		if err != nil {
			return err
		}
		defer store.Close()
		graphs = mcptools.NewGraphService(store, datasets)
	}

	server := mcptools.NewMCPServer(datasets, graphs)
	if serveFlags.http != "" {
		logger.Info("Serving MCP over HTTP", zap.String("addr", serveFlags.http))
		return mcptools.RunHTTP(cmd.Context(), server, serveFlags.http)
	}
	logger.Debug("Serving MCP over stdio")
	return mcptools.RunStdio(cmd.Context(), server)
}
