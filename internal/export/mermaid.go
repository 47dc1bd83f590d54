package export

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// GenerateMermaid produces a Mermaid graph LR diagram from a graph store.
// Subscribers are grouped by component; CALLS edges become arrows labelled
// with their call count.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	components, err := store.GetComponents(ctx)
	if err != nil {
		return "", fmt.Errorf("get components: %w", err)
	}

	calls, err := store.GetAllCalls(ctx)
	if err != nil {
		return "", fmt.Errorf("get calls: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, c := range components {
		if len(c.Members) == 0 {
			continue
		}
		members := slices.Clone(c.Members)
		slices.Sort(members)

		fmt.Fprintf(&sb, "  subgraph C%d[\"%s (%.1f%%)\"]\n", i, c.Name, 100*c.RelativeSize)
		for _, n := range members {
			fmt.Fprintf(&sb, "    %s[\"%d\"]\n", nodeID(n), n)
		}
		sb.WriteString("  end\n")
	}

	for _, e := range calls {
		calls := e.Attrs.Get(graph.WeightCalls)
		if calls > 0 {
			fmt.Fprintf(&sb, "  %s -->|%g| %s\n", nodeID(e.From), calls, nodeID(e.To))
			continue
		}
		fmt.Fprintf(&sb, "  %s --> %s\n", nodeID(e.From), nodeID(e.To))
	}

	return sb.String(), nil
}

// nodeID returns an alphanumeric Mermaid identifier for a number.
func nodeID(n int64) string {
	if n < 0 {
		return fmt.Sprintf("Nm%d", -n)
	}
	return fmt.Sprintf("N%d", n)
}
