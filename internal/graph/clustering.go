package graph

import "math"

// Clustering returns the local clustering coefficient of every node of an
// undirected network.
//
// Unweighted, c(u) = 2T(u) / (deg(u)(deg(u)-1)) where T(u) counts triangles
// through u. Weighted, each triangle contributes the geometric mean of its
// three edge weights after normalising every weight by the largest weight in
// the network. Nodes with degree below two have coefficient zero.
func Clustering(g *Network, w Weight) (map[int64]float64, error) {
	if g.directed {
		return nil, ErrDirected
	}

	maxWeight := 1.0
	if w != WeightNone {
		maxWeight = 0
		for _, a := range g.attrs {
			maxWeight = math.Max(maxWeight, a.Get(w))
		}
	}
	norm := func(u, v int64) float64 {
		if maxWeight == 0 {
			return 0
		}
		return g.attrs[g.key(u, v)].Get(w) / maxWeight
	}

	adj := make(map[int64]map[int64]bool, len(g.nodes))
	for _, u := range g.nodes {
		set := make(map[int64]bool, len(g.succ[u]))
		for _, v := range g.succ[u] {
			set[v] = true
		}
		adj[u] = set
	}

	out := make(map[int64]float64, len(g.nodes))
	for _, i := range g.nodes {
		nbrs := g.succ[i]
		d := len(nbrs)
		if d < 2 {
			out[i] = 0
			continue
		}
		var triangles float64
		for _, j := range nbrs {
			for _, k := range nbrs {
				if k == j || !adj[j][k] {
					continue
				}
				if w == WeightNone {
					triangles++
				} else {
					triangles += math.Cbrt(norm(i, j) * norm(j, k) * norm(k, i))
				}
			}
		}
		// Each triangle was visited once per ordering of j and k.
		out[i] = triangles / float64(d*(d-1))
	}
	return out, nil
}

// AverageClustering is the mean local clustering coefficient over all nodes,
// zeros included.
func AverageClustering(g *Network, w Weight) (float64, error) {
	if len(g.nodes) == 0 {
		return 0, ErrEmptyGraph
	}
	c, err := Clustering(g, w)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, u := range g.nodes {
		sum += c[u]
	}
	return sum / float64(len(g.nodes)), nil
}
