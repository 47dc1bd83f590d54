package graph

import "sort"

// Connected-component routines with the older list-of-lists contract:
// components come back as node slices ordered from largest to smallest, so
// element 0 is always the largest component. The counts reported in network
// summaries come from NumberStronglyConnected and NumberWeaklyConnected; the
// relative sizes of the largest components come from these.

// LegacyStronglyConnectedComponents returns the strongly connected components
// of g, largest first. It is the non-recursive formulation of Tarjan's
// algorithm with Nuutila's modification. Ties keep discovery order.
func LegacyStronglyConnectedComponents(g *Network) [][]int64 {
	preorder := make(map[int64]int, len(g.nodes))
	lowlink := make(map[int64]int, len(g.nodes))
	found := make(map[int64]bool, len(g.nodes))
	var (
		pending []int64 // visited nodes whose component root is still open
		sccs    [][]int64
		counter int
	)

	for _, source := range g.nodes {
		if found[source] {
			continue
		}
		stack := []int64{source}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			if _, ok := preorder[v]; !ok {
				counter++
				preorder[v] = counter
			}

			nbrs := g.succ[v]
			descended := false
			for _, w := range nbrs {
				if _, ok := preorder[w]; !ok {
					stack = append(stack, w)
					descended = true
					break
				}
			}
			if descended {
				continue
			}

			lowlink[v] = preorder[v]
			for _, w := range nbrs {
				if found[w] {
					continue
				}
				if preorder[w] > preorder[v] {
					lowlink[v] = min(lowlink[v], lowlink[w])
				} else {
					lowlink[v] = min(lowlink[v], preorder[w])
				}
			}
			stack = stack[:len(stack)-1]

			if lowlink[v] != preorder[v] {
				pending = append(pending, v)
				continue
			}
			found[v] = true
			scc := []int64{v}
			for len(pending) > 0 && preorder[pending[len(pending)-1]] > preorder[v] {
				k := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				found[k] = true
				scc = append(scc, k)
			}
			sccs = append(sccs, scc)
		}
	}

	sortBySizeDesc(sccs)
	return sccs
}

// LegacyWeaklyConnectedComponents returns the weakly connected components of
// a directed network, largest first. Undirected networks are rejected with
// ErrUndirected.
func LegacyWeaklyConnectedComponents(g *Network) ([][]int64, error) {
	if !g.directed {
		return nil, ErrUndirected
	}
	seen := make(map[int64]bool, len(g.nodes))
	var comps [][]int64
	for _, v := range g.nodes {
		if seen[v] {
			continue
		}
		order, _ := unipathBFS(g, v, -1)
		for _, u := range order {
			seen[u] = true
		}
		comps = append(comps, order)
	}
	sortBySizeDesc(comps)
	return comps, nil
}

// SingleSourceUnipathLength returns the hop count from source to every node
// reachable when edge direction is ignored. A negative cutoff means no limit;
// otherwise only nodes at most cutoff hops away are returned.
func SingleSourceUnipathLength(g *Network, source int64, cutoff int) map[int64]int {
	_, levels := unipathBFS(g, source, cutoff)
	return levels
}

// unipathBFS walks successors and predecessors level by level. order lists
// nodes in the order they were reached.
func unipathBFS(g *Network, source int64, cutoff int) ([]int64, map[int64]int) {
	levels := make(map[int64]int)
	var order []int64
	if !g.present[source] {
		return order, levels
	}

	level := 0
	next := []int64{source}
	for len(next) > 0 {
		this := next
		next = nil
		queued := make(map[int64]bool)
		for _, v := range this {
			if _, ok := levels[v]; ok {
				continue
			}
			levels[v] = level
			order = append(order, v)
			for _, w := range g.Successors(v) {
				if !queued[w] {
					queued[w] = true
					next = append(next, w)
				}
			}
			for _, w := range g.Predecessors(v) {
				if !queued[w] {
					queued[w] = true
					next = append(next, w)
				}
			}
		}
		if cutoff >= 0 && cutoff <= level {
			break
		}
		level++
	}
	return order, levels
}

// sortBySizeDesc orders components from largest to smallest, keeping the
// relative order of equal-sized components.
func sortBySizeDesc(comps [][]int64) {
	sort.SliceStable(comps, func(i, j int) bool {
		return len(comps[i]) > len(comps[j])
	})
}

// RelativeLargestSCC is the share of nodes in the largest strongly connected
// component.
func RelativeLargestSCC(g *Network) (float64, error) {
	if len(g.nodes) == 0 {
		return 0, ErrEmptyGraph
	}
	sccs := LegacyStronglyConnectedComponents(g)
	return float64(len(sccs[0])) / float64(len(g.nodes)), nil
}

// RelativeLargestWCC is the share of nodes in the largest weakly connected
// component of a directed network.
func RelativeLargestWCC(g *Network) (float64, error) {
	if len(g.nodes) == 0 {
		return 0, ErrEmptyGraph
	}
	wccs, err := LegacyWeaklyConnectedComponents(g)
	if err != nil {
		return 0, err
	}
	return float64(len(wccs[0])) / float64(len(g.nodes)), nil
}
