package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the dataset tools registered, plus
// the call graph tools when graphs is non-nil.
func NewMCPServer(datasets *DatasetService, graphs *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cdrhelper",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_dataset",
		Description: "Generate a fake call-detail-record dataset: a preferential-attachment caller network, daily calls with reciprocation, and subscriber attributes. Writes the call, attribute and manifest files and returns their paths.",
	}, datasets.GenerateDataset)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_stats",
		Description: "Describe the numeric columns of a dataset table (calls, attributes or missing): min, max, mean, median, variance, standard deviation, unique count, count and quartiles.",
	}, datasets.SummaryStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "network_summary",
		Description: "Split a dataset's calls by quarter and report directed (sizes, strongly and weakly connected components) and undirected (sizes, weighted clustering) network statistics. With structure set, also weak component sizes and the edge overlap distribution.",
	}, datasets.NetworkSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_datasets",
		Description: "List the datasets in an output directory and which of their files exist.",
	}, datasets.ListDatasets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_dataset",
		Description: "Return the JSON manifest of a dataset: generation parameters, files with row counts, and network reports.",
	}, datasets.ExportDataset)

	if graphs == nil {
		return server
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Load a dataset into the graph store: subscribers with attributes, aggregated CALLS edges, and weakly connected components.",
	}, graphs.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_subscribers",
		Description: "Find subscribers by gender, age range and postcode prefix.",
	}, graphs.QuerySubscribers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contacts",
		Description: "Follow calls outgoing from or incoming to a subscriber up to a depth. Returns one chain per reached subscriber.",
	}, graphs.GetContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_components",
		Description: "Return the weakly connected components found by build_graph, largest first.",
	}, graphs.GetComponents)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
