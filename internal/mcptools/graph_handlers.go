package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/cdrhelper/internal/graph"
	"github.com/dusk-indust/cdrhelper/internal/orchestrator"
)

// ErrGraphBuilt is returned by build_graph when the store already holds a
// call graph.
var ErrGraphBuilt = errors.New("graph already built")

// GraphService holds the graph store used by the call graph MCP tools.
type GraphService struct {
	store    graph.Store
	datasets *DatasetService
}

// NewGraphService creates a GraphService over store. Dataset names passed to
// build_graph resolve against datasets' configuration.
func NewGraphService(store graph.Store, datasets *DatasetService) *GraphService {
	return &GraphService{store: store, datasets: datasets}
}

// BuildGraph loads a dataset's calls and attributes into the store and
// computes its components.
func (s *GraphService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if err := s.store.InitSchema(ctx); err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("init schema: %w", err)
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
	}
	if stats.SubscriberCount > 0 {
		return nil, BuildGraphOutput{}, fmt.Errorf("%w: %d subscribers stored", ErrGraphBuilt, stats.SubscriberCount)
	}

	name, dir := s.datasets.ref(input.Name, input.OutputDir)
	calls, err := readCalls(orchestrator.ArtifactCalls.Path(dir, name))
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}
	attrs, err := readAttributes(orchestrator.ArtifactAttributes.Path(dir, name))
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	if err := graph.Persist(ctx, s.store, graph.FromCalls(calls, true), attrs); err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("persist: %w", err)
	}
	components, err := graph.ComputeComponents(ctx, s.store)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("compute components: %w", err)
	}

	stats, err = s.store.Stats(ctx)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, BuildGraphOutput{Stats: *stats, Components: len(components)}, nil
}

// QuerySubscribers filters subscribers by their attributes.
func (s *GraphService) QuerySubscribers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySubscribersInput,
) (*mcp.CallToolResult, QuerySubscribersOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	subs, err := s.store.QuerySubscribers(ctx, graph.SubscriberQuery{
		Gender:         input.Gender,
		MinAge:         input.MinAge,
		MaxAge:         input.MaxAge,
		PostcodePrefix: input.PostcodePrefix,
		Limit:          limit,
	})
	if err != nil {
		return nil, QuerySubscribersOutput{}, fmt.Errorf("query subscribers: %w", err)
	}
	if subs == nil {
		subs = []graph.SubscriberNode{}
	}
	return nil, QuerySubscribersOutput{Subscribers: subs, Total: len(subs)}, nil
}

// GetContacts follows calls from a subscriber.
func (s *GraphService) GetContacts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetContactsInput,
) (*mcp.CallToolResult, GetContactsOutput, error) {
	if input.Number == 0 {
		return nil, GetContactsOutput{}, fmt.Errorf("number is required")
	}

	direction := graph.DirectionOutgoing
	if strings.EqualFold(input.Direction, "incoming") {
		direction = graph.DirectionIncoming
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 2
	}

	chains, err := s.store.GetContacts(ctx, input.Number, direction, maxDepth)
	if err != nil {
		return nil, GetContactsOutput{}, fmt.Errorf("get contacts: %w", err)
	}
	if chains == nil {
		chains = []graph.ContactChain{}
	}
	return nil, GetContactsOutput{Chains: chains}, nil
}

// GetComponents returns the weakly connected components of the call graph.
func (s *GraphService) GetComponents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetComponentsInput,
) (*mcp.CallToolResult, GetComponentsOutput, error) {
	components, err := s.store.GetComponents(ctx)
	if err != nil {
		return nil, GetComponentsOutput{}, fmt.Errorf("get components: %w", err)
	}
	if components == nil {
		components = []graph.ComponentNode{}
	}
	return nil, GetComponentsOutput{Components: components}, nil
}
