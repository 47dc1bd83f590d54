package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// ErrGraphParams is returned for an impossible preferential-attachment size.
var ErrGraphParams = errors.New("generator: barabasi-albert network must have m >= 1 and m < n")

// BarabasiAlbert grows an undirected preferential-attachment network of n
// nodes numbered 0..n-1. It starts from m isolated nodes; every new node
// links to m distinct existing nodes chosen with probability proportional to
// their degree.
func BarabasiAlbert(n, m int, r *rand.Rand) (*graph.Network, error) {
	if m < 1 || m >= n {
		return nil, fmt.Errorf("%w: n=%d m=%d", ErrGraphParams, n, m)
	}
	g := graph.NewUndirected()
	for i := 0; i < m; i++ {
		g.AddNode(int64(i))
	}

	targets := make([]int64, m)
	for i := range targets {
		targets[i] = int64(i)
	}
	// Each node appears once per incident edge.
	var repeated []int64
	for source := int64(m); source < int64(n); source++ {
		g.AddNode(source)
		for _, t := range targets {
			if err := g.AddEdge(source, t, graph.EdgeAttrs{}); err != nil {
				return nil, err
			}
		}
		repeated = append(repeated, targets...)
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
		targets = randomSubset(repeated, m, r)
	}
	return g, nil
}

// randomSubset draws m distinct values from seq, picking uniformly from seq
// so that values repeated more often are more likely.
func randomSubset(seq []int64, m int, r *rand.Rand) []int64 {
	seen := make(map[int64]bool, m)
	out := make([]int64, 0, m)
	for len(out) < m {
		x := seq[r.IntN(len(seq))]
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}
