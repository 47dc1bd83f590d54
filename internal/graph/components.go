package graph

import (
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// toGonumDirected copies a directed network into a gonum graph.
func toGonumDirected(g *Network) *simple.DirectedGraph {
	d := simple.NewDirectedGraph()
	for _, u := range g.nodes {
		d.AddNode(simple.Node(u))
	}
	for _, l := range g.Edges() {
		d.SetEdge(d.NewEdge(simple.Node(l.From), simple.Node(l.To)))
	}
	return d
}

// toGonumUndirected copies an undirected network into a gonum graph.
func toGonumUndirected(g *Network) *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	for _, n := range g.nodes {
		u.AddNode(simple.Node(n))
	}
	for _, l := range g.Edges() {
		u.SetEdge(u.NewEdge(simple.Node(l.From), simple.Node(l.To)))
	}
	return u
}

// NumberStronglyConnected counts the strongly connected components of a
// directed network.
func NumberStronglyConnected(g *Network) (int, error) {
	if !g.directed {
		return 0, ErrUndirected
	}
	return len(topo.TarjanSCC(toGonumDirected(g))), nil
}

// NumberWeaklyConnected counts the weakly connected components of a directed
// network.
func NumberWeaklyConnected(g *Network) (int, error) {
	if !g.directed {
		return 0, ErrUndirected
	}
	return len(topo.ConnectedComponents(gonum.Undirect{G: toGonumDirected(g)})), nil
}

// NumberConnected counts the connected components of an undirected network.
func NumberConnected(g *Network) (int, error) {
	if g.directed {
		return 0, ErrDirected
	}
	return len(topo.ConnectedComponents(toGonumUndirected(g))), nil
}

// ComponentSizes returns the sizes of the connected components of g, largest
// first, ignoring edge direction.
func ComponentSizes(g *Network) []int {
	var comps [][]int64
	if g.directed {
		comps, _ = LegacyWeaklyConnectedComponents(g)
	} else {
		comps = undirectedComponents(g)
	}
	sizes := make([]int, len(comps))
	for i, c := range comps {
		sizes[i] = len(c)
	}
	return sizes
}

// undirectedComponents is the breadth-first component search for undirected
// networks, largest first.
func undirectedComponents(g *Network) [][]int64 {
	visited := make(map[int64]bool, len(g.nodes))
	var comps [][]int64
	for _, start := range g.nodes {
		if visited[start] {
			continue
		}
		var comp []int64
		queue := []int64{start}
		visited[start] = true
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			comp = append(comp, n)
			for _, nb := range g.succ[n] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		comps = append(comps, comp)
	}
	sortBySizeDesc(comps)
	return comps
}
