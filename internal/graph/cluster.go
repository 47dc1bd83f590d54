package graph

import (
	"context"
	"fmt"
	"sort"
)

// ComputeComponents finds the weakly connected components of a persisted
// call graph and stores them as ComponentNodes.
//
// Algorithm:
//  1. Build an undirected adjacency list from every CALLS edge.
//  2. Find connected components via BFS, visiting subscribers by number.
//  3. Store every component, isolated subscribers included, largest first,
//     named after its lowest number, with its size relative to all
//     subscribers.
func ComputeComponents(ctx context.Context, store Store) ([]ComponentNode, error) {
	subs, err := store.QuerySubscribers(ctx, SubscriberQuery{})
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	adj, err := buildAdjacency(ctx, store, subs)
	if err != nil {
		return nil, err
	}

	// subs is ordered by number, so each component starts at its minimum.
	visited := make(map[int64]bool, len(subs))
	var components []ComponentNode
	for _, s := range subs {
		if visited[s.Number] {
			continue
		}
		members := bfsComponent(s.Number, adj, visited)
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		components = append(components, ComponentNode{
			Name:         fmt.Sprintf("component-%d", members[0]),
			RelativeSize: float64(len(members)) / float64(len(subs)),
			Members:      members,
		})
	}

	sort.SliceStable(components, func(i, j int) bool {
		return len(components[i].Members) > len(components[j].Members)
	})
	for _, c := range components {
		if err := store.AddComponent(ctx, c); err != nil {
			return nil, err
		}
	}
	return components, nil
}

// buildAdjacency constructs a bidirectional adjacency list from CALLS edges
// in a single pass. Neighbours are kept in edge order.
func buildAdjacency(ctx context.Context, store Store, subs []SubscriberNode) (map[int64][]int64, error) {
	adj := make(map[int64][]int64, len(subs))
	calls, err := store.GetAllCalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	for _, e := range calls {
		if e.From == e.To {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj, nil
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start int64, adj map[int64][]int64, visited map[int64]bool) []int64 {
	var component []int64
	queue := []int64{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for _, neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}
