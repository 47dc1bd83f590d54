package graph

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedCopy(ns []int64) []int64 {
	out := make([]int64, len(ns))
	copy(out, ns)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLegacyStronglyConnectedComponents(t *testing.T) {
	// 1->2->3->1 is a cycle; 3->4, 4->5->4 is a second cycle; 6 is isolated.
	g := directedFrom(t,
		[2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 1},
		[2]int64{3, 4}, [2]int64{4, 5}, [2]int64{5, 4},
	)
	g.AddNode(6)

	sccs := LegacyStronglyConnectedComponents(g)
	require.Len(t, sccs, 3)
	assert.Equal(t, []int64{1, 2, 3}, sortedCopy(sccs[0]), "largest component comes first")
	assert.Equal(t, []int64{4, 5}, sortedCopy(sccs[1]))
	assert.Equal(t, []int64{6}, sccs[2])
}

func TestLegacyStronglyConnectedComponents_Chain(t *testing.T) {
	g := directedFrom(t, [2]int64{1, 2}, [2]int64{2, 3})
	sccs := LegacyStronglyConnectedComponents(g)
	require.Len(t, sccs, 3)
	for _, c := range sccs {
		assert.Len(t, c, 1)
	}
}

func TestLegacyWeaklyConnectedComponents(t *testing.T) {
	g := directedFrom(t, [2]int64{1, 2}, [2]int64{3, 2}, [2]int64{4, 5})
	g.AddNode(6)

	wccs, err := LegacyWeaklyConnectedComponents(g)
	require.NoError(t, err)
	require.Len(t, wccs, 3)
	assert.Equal(t, []int64{1, 2, 3}, sortedCopy(wccs[0]))
	assert.Equal(t, []int64{4, 5}, sortedCopy(wccs[1]))
	assert.Equal(t, []int64{6}, wccs[2])
}

func TestLegacyWeaklyConnectedComponents_Undirected(t *testing.T) {
	g := undirectedFrom(t, [2]int64{1, 2})
	_, err := LegacyWeaklyConnectedComponents(g)
	assert.ErrorIs(t, err, ErrUndirected)
}

func TestSingleSourceUnipathLength(t *testing.T) {
	// Direction is ignored: 1->2, 3->2, 3->4.
	g := directedFrom(t, [2]int64{1, 2}, [2]int64{3, 2}, [2]int64{3, 4})
	g.AddNode(9)

	got := SingleSourceUnipathLength(g, 1, -1)
	assert.Equal(t, map[int64]int{1: 0, 2: 1, 3: 2, 4: 3}, got)

	cut := SingleSourceUnipathLength(g, 1, 1)
	assert.Equal(t, map[int64]int{1: 0, 2: 1}, cut)

	assert.Empty(t, SingleSourceUnipathLength(g, 42, -1), "unknown source reaches nothing")
}

func TestRelativeLargestComponents(t *testing.T) {
	g := directedFrom(t, [2]int64{1, 2}, [2]int64{2, 1}, [2]int64{2, 3})
	g.AddNode(4)

	scc, err := RelativeLargestSCC(g)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scc, 1e-12)

	wcc, err := RelativeLargestWCC(g)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, wcc, 1e-12)
}

func TestRelativeLargestComponents_Empty(t *testing.T) {
	g := NewDirected()
	_, err := RelativeLargestSCC(g)
	assert.ErrorIs(t, err, ErrEmptyGraph)
	_, err = RelativeLargestWCC(g)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

// The legacy routines and the gonum-backed counters must agree on random
// sparse networks.
func TestLegacyComponents_AgreeWithCounters(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 20; trial++ {
		g := NewDirected()
		n := 5 + r.IntN(40)
		for i := 0; i < n; i++ {
			g.AddNode(int64(i))
		}
		for e := 0; e < n; e++ {
			u, v := int64(r.IntN(n)), int64(r.IntN(n))
			if u == v {
				continue
			}
			require.NoError(t, g.AddEdge(u, v, EdgeAttrs{Calls: 1}))
		}

		nscc, err := NumberStronglyConnected(g)
		require.NoError(t, err)
		assert.Len(t, LegacyStronglyConnectedComponents(g), nscc)

		nwcc, err := NumberWeaklyConnected(g)
		require.NoError(t, err)
		wccs, err := LegacyWeaklyConnectedComponents(g)
		require.NoError(t, err)
		assert.Len(t, wccs, nwcc)

		ncc, err := NumberConnected(g.ToUndirected())
		require.NoError(t, err)
		assert.Equal(t, nwcc, ncc)
		assert.Len(t, ComponentSizes(g), nwcc)
	}
}

func TestComponentCounters_RejectWrongKind(t *testing.T) {
	_, err := NumberStronglyConnected(NewUndirected())
	assert.ErrorIs(t, err, ErrUndirected)
	_, err = NumberWeaklyConnected(NewUndirected())
	assert.ErrorIs(t, err, ErrUndirected)
	_, err = NumberConnected(NewDirected())
	assert.ErrorIs(t, err, ErrDirected)
}
