package graph

import (
	"errors"
	"sort"
)

// ErrUndefinedOverlap is returned when neither endpoint has another neighbour.
var ErrUndefinedOverlap = errors.New("graph: overlap undefined for edge")

// Overlap is the neighbourhood overlap of the edge u-v in an undirected
// network: the number of common neighbours divided by the number of nodes
// adjacent to u or v, excluding u and v themselves,
//
//	O(u,v) = n_uv / (k_u + k_v - n_uv - 2).
func Overlap(g *Network, u, v int64) (float64, error) {
	if g.directed {
		return 0, ErrDirected
	}
	ku, kv := g.Degree(u), g.Degree(v)
	if ku <= 1 && kv <= 1 {
		return 0, ErrUndefinedOverlap
	}
	common := commonNeighbors(g, u, v)
	denom := ku + kv - common - 2
	if denom <= 0 {
		return 0, ErrUndefinedOverlap
	}
	return float64(common) / float64(denom), nil
}

func commonNeighbors(g *Network, u, v int64) int {
	nu := make(map[int64]bool, len(g.succ[u]))
	for _, x := range g.succ[u] {
		nu[x] = true
	}
	n := 0
	for _, x := range g.succ[v] {
		if nu[x] {
			n++
		}
	}
	return n
}

// OverlapDistribution computes Overlap for every edge leaving each node in
// nodes (all nodes when nodes is nil). An edge whose endpoints are both in
// nodes is counted from each side. Undefined overlaps are not included in
// the values; their number is returned separately.
func OverlapDistribution(g *Network, nodes []int64, sorted bool) ([]float64, int, error) {
	if g.directed {
		return nil, 0, ErrDirected
	}
	if nodes == nil {
		nodes = g.nodes
	}
	var (
		values    []float64
		undefined int
	)
	for _, u := range nodes {
		for _, v := range g.succ[u] {
			o, err := Overlap(g, u, v)
			if errors.Is(err, ErrUndefinedOverlap) {
				undefined++
				continue
			}
			if err != nil {
				return nil, 0, err
			}
			values = append(values, o)
		}
	}
	if sorted {
		sort.Float64s(values)
	}
	return values, undefined, nil
}
