package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bareSubscribers(numbers ...int64) []SubscriberNode {
	out := make([]SubscriberNode, len(numbers))
	for i, n := range numbers {
		out[i] = SubscriberNode{Number: n}
	}
	return out
}

func TestComputeComponents_NoCalls(t *testing.T) {
	// Three subscribers with no calls between them: three singletons.
	store := setupStore(t, bareSubscribers(1, 2, 3), nil)
	ctx := context.Background()

	comps, err := ComputeComponents(ctx, store)
	require.NoError(t, err)
	require.Len(t, comps, 3)
	for i, c := range comps {
		assert.Equal(t, []int64{int64(i + 1)}, c.Members)
		assert.InDelta(t, 1.0/3.0, c.RelativeSize, 1e-12)
	}

	stored, err := store.GetComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, comps, stored)
}

func TestComputeComponents_EmptyStore(t *testing.T) {
	store := setupStore(t, nil, nil)
	comps, err := ComputeComponents(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestComputeComponents_OnePair(t *testing.T) {
	// Only 2->1 has a call. The pair is one component, 3 is a singleton.
	calls := []CallEdge{{From: 2, To: 1, Attrs: EdgeAttrs{Calls: 1}}}
	store := setupStore(t, bareSubscribers(1, 2, 3), calls)
	ctx := context.Background()

	comps, err := ComputeComponents(ctx, store)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	assert.Equal(t, "component-1", comps[0].Name)
	assert.Equal(t, []int64{1, 2}, comps[0].Members)
	assert.InDelta(t, 2.0/3.0, comps[0].RelativeSize, 1e-12)
	assert.Equal(t, "component-3", comps[1].Name)
	assert.Equal(t, []int64{3}, comps[1].Members)
}

func TestComputeComponents_LargestFirst(t *testing.T) {
	calls := []CallEdge{
		{From: 1, To: 2},
		{From: 5, To: 6},
		{From: 6, To: 7},
		{From: 8, To: 7},
	}
	store := setupStore(t, bareSubscribers(1, 2, 3, 4, 5, 6, 7, 8), calls)
	ctx := context.Background()

	comps, err := ComputeComponents(ctx, store)
	require.NoError(t, err)
	require.Len(t, comps, 4)

	assert.Equal(t, "component-5", comps[0].Name)
	assert.Equal(t, []int64{5, 6, 7, 8}, comps[0].Members)
	assert.InDelta(t, 0.5, comps[0].RelativeSize, 1e-12)
	assert.Equal(t, "component-1", comps[1].Name)
	assert.Equal(t, "component-3", comps[2].Name)
	assert.Equal(t, "component-4", comps[3].Name)

	stored, err := store.GetComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, comps, stored, "components must be persisted in order")
}

func TestComputeComponents_IgnoresSelfCalls(t *testing.T) {
	calls := []CallEdge{{From: 1, To: 1, Attrs: EdgeAttrs{Calls: 4}}}
	store := setupStore(t, bareSubscribers(1, 2), calls)

	comps, err := ComputeComponents(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, comps, 2, "a self-call does not join subscribers")
	assert.Equal(t, []int64{1}, comps[0].Members)
	assert.Equal(t, []int64{2}, comps[1].Members)
}

func TestComputeComponents_MatchesLegacyWCC(t *testing.T) {
	// 1->2 plus an isolated 3: two weak components either way.
	g := NewDirected()
	require.NoError(t, g.AddEdge(1, 2, EdgeAttrs{Calls: 1}))
	g.AddNode(3)

	store := NewMemStore()
	ctx := context.Background()
	require.NoError(t, Persist(ctx, store, g, nil))

	comps, err := ComputeComponents(ctx, store)
	require.NoError(t, err)

	count, err := NumberWeaklyConnected(g)
	require.NoError(t, err)
	assert.Len(t, comps, count)
	legacy, err := LegacyWeaklyConnectedComponents(g)
	require.NoError(t, err)
	assert.Len(t, comps, len(legacy))

	total := 0
	for _, c := range comps {
		total += len(c.Members)
	}
	assert.Equal(t, g.NumberOfNodes(), total, "every subscriber belongs to a component")
}
