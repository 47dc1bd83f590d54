package graph

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
)

var (
	// ErrUndirected is returned by algorithms that need a directed network.
	ErrUndirected = errors.New("graph: not allowed for undirected network")
	// ErrDirected is returned by algorithms that need an undirected network.
	ErrDirected = errors.New("graph: not allowed for directed network")
	// ErrEmptyGraph is returned when a statistic is undefined on zero nodes.
	ErrEmptyGraph = errors.New("graph: network has no nodes")
	// ErrSelfLoop is returned when an edge joins a node to itself.
	ErrSelfLoop = errors.New("graph: self-loops are not supported")
)

// Weight selects which edge attribute a weighted statistic uses.
type Weight string

const (
	WeightNone    Weight = ""
	WeightCalls   Weight = "calls"
	WeightMinutes Weight = "min"
	WeightSMS     Weight = "sms"
	WeightMMS     Weight = "mms"
)

// Weights lists the edge attributes in report order.
var Weights = []Weight{WeightCalls, WeightMinutes, WeightSMS, WeightMMS}

// EdgeAttrs are the traffic totals carried by an edge.
type EdgeAttrs struct {
	Calls   float64 `json:"calls"`
	Minutes float64 `json:"min"`
	SMS     float64 `json:"sms"`
	MMS     float64 `json:"mms"`
}

// Get returns the attribute named by w. WeightNone yields 1.
func (a EdgeAttrs) Get(w Weight) float64 {
	switch w {
	case WeightCalls:
		return a.Calls
	case WeightMinutes:
		return a.Minutes
	case WeightSMS:
		return a.SMS
	case WeightMMS:
		return a.MMS
	default:
		return 1
	}
}

func (a EdgeAttrs) add(b EdgeAttrs) EdgeAttrs {
	return EdgeAttrs{
		Calls:   a.Calls + b.Calls,
		Minutes: a.Minutes + b.Minutes,
		SMS:     a.SMS + b.SMS,
		MMS:     a.MMS + b.MMS,
	}
}

// Link is an edge of a Network together with its attributes.
type Link struct {
	From  int64     `json:"from"`
	To    int64     `json:"to"`
	Attrs EdgeAttrs `json:"attrs"`
}

// Network is a simple graph of subscriber numbers. Nodes and neighbours are
// iterated in insertion order so that every algorithm is deterministic.
// A Network is not safe for concurrent mutation; concurrent reads are fine.
type Network struct {
	directed bool
	nodes    []int64
	present  map[int64]bool
	succ     map[int64][]int64
	pred     map[int64][]int64 // nil for undirected networks
	attrs    map[[2]int64]EdgeAttrs
}

// NewDirected returns an empty directed network.
func NewDirected() *Network {
	n := newNetwork(true)
	n.pred = make(map[int64][]int64)
	return n
}

// NewUndirected returns an empty undirected network.
func NewUndirected() *Network {
	return newNetwork(false)
}

func newNetwork(directed bool) *Network {
	return &Network{
		directed: directed,
		present:  make(map[int64]bool),
		succ:     make(map[int64][]int64),
		attrs:    make(map[[2]int64]EdgeAttrs),
	}
}

// IsDirected reports whether edges have a direction.
func (g *Network) IsDirected() bool {
	return g.directed
}

// AddNode inserts u if it is not already present.
func (g *Network) AddNode(u int64) {
	if g.present[u] {
		return
	}
	g.present[u] = true
	g.nodes = append(g.nodes, u)
}

// HasNode reports whether u is in the network.
func (g *Network) HasNode(u int64) bool {
	return g.present[u]
}

func (g *Network) key(u, v int64) [2]int64 {
	if !g.directed && v < u {
		u, v = v, u
	}
	return [2]int64{u, v}
}

// AddEdge inserts the edge u-v (u->v when directed), adding missing nodes.
// An existing edge has its attributes replaced.
func (g *Network) AddEdge(u, v int64, attrs EdgeAttrs) error {
	if u == v {
		return fmt.Errorf("%w: %d", ErrSelfLoop, u)
	}
	g.AddNode(u)
	g.AddNode(v)
	k := g.key(u, v)
	if _, ok := g.attrs[k]; !ok {
		g.succ[u] = append(g.succ[u], v)
		if g.directed {
			g.pred[v] = append(g.pred[v], u)
		} else {
			g.succ[v] = append(g.succ[v], u)
		}
	}
	g.attrs[k] = attrs
	return nil
}

// AccumulateEdge adds attrs onto the edge u-v, creating it when absent.
func (g *Network) AccumulateEdge(u, v int64, attrs EdgeAttrs) error {
	if cur, ok := g.Edge(u, v); ok {
		attrs = cur.add(attrs)
	}
	return g.AddEdge(u, v, attrs)
}

// HasEdge reports whether u-v (u->v when directed) exists.
func (g *Network) HasEdge(u, v int64) bool {
	_, ok := g.attrs[g.key(u, v)]
	return ok
}

// Edge returns the attributes of u-v.
func (g *Network) Edge(u, v int64) (EdgeAttrs, bool) {
	a, ok := g.attrs[g.key(u, v)]
	return a, ok
}

// RemoveNode deletes u and every edge touching it.
func (g *Network) RemoveNode(u int64) {
	if !g.present[u] {
		return
	}
	for _, v := range g.succ[u] {
		delete(g.attrs, g.key(u, v))
		if g.directed {
			g.pred[v] = without(g.pred[v], u)
		} else {
			g.succ[v] = without(g.succ[v], u)
		}
	}
	if g.directed {
		for _, v := range g.pred[u] {
			delete(g.attrs, g.key(v, u))
			g.succ[v] = without(g.succ[v], u)
		}
		delete(g.pred, u)
	}
	delete(g.succ, u)
	delete(g.present, u)
	g.nodes = without(g.nodes, u)
}

func without(s []int64, x int64) []int64 {
	out := s[:0]
	for _, v := range s {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Network) Nodes() []int64 {
	return g.nodes
}

// NumberOfNodes returns the node count.
func (g *Network) NumberOfNodes() int {
	return len(g.nodes)
}

// NumberOfEdges returns the edge count.
func (g *Network) NumberOfEdges() int {
	return len(g.attrs)
}

// Successors returns the out-neighbours of u (all neighbours when undirected).
func (g *Network) Successors(u int64) []int64 {
	return g.succ[u]
}

// Predecessors returns the in-neighbours of u (all neighbours when undirected).
func (g *Network) Predecessors(u int64) []int64 {
	if !g.directed {
		return g.succ[u]
	}
	return g.pred[u]
}

// Neighbors is Successors, matching adjacency iteration G[u].
func (g *Network) Neighbors(u int64) []int64 {
	return g.succ[u]
}

// Degree is the number of incident edges; in plus out degree when directed.
func (g *Network) Degree(u int64) int {
	if g.directed {
		return len(g.succ[u]) + len(g.pred[u])
	}
	return len(g.succ[u])
}

// Size returns the number of edges, or the sum of the weight attribute.
func (g *Network) Size(w Weight) float64 {
	if w == WeightNone {
		return float64(len(g.attrs))
	}
	var total float64
	for _, l := range g.Edges() {
		total += l.Attrs.Get(w)
	}
	return total
}

// Edges returns every edge once, ordered by source node insertion then
// neighbour insertion. Undirected edges are reported from the endpoint seen
// first.
func (g *Network) Edges() []Link {
	out := make([]Link, 0, len(g.attrs))
	seen := make(map[int64]bool, len(g.nodes))
	for _, u := range g.nodes {
		for _, v := range g.succ[u] {
			if !g.directed && seen[v] {
				continue
			}
			out = append(out, Link{From: u, To: v, Attrs: g.attrs[g.key(u, v)]})
		}
		seen[u] = true
	}
	return out
}

// EdgesOf returns the edges leaving u, each oriented (u, neighbour).
func (g *Network) EdgesOf(u int64) []Link {
	out := make([]Link, 0, len(g.succ[u]))
	for _, v := range g.succ[u] {
		out = append(out, Link{From: u, To: v, Attrs: g.attrs[g.key(u, v)]})
	}
	return out
}

// ToUndirected collapses a directed network. Reciprocal edges u->v and v->u
// become one edge whose attributes are their sum.
func (g *Network) ToUndirected() *Network {
	out := NewUndirected()
	for _, u := range g.nodes {
		out.AddNode(u)
	}
	for _, l := range g.Edges() {
		if g.directed {
			// Endpoints are distinct by construction.
			_ = out.AccumulateEdge(l.From, l.To, l.Attrs)
		} else {
			_ = out.AddEdge(l.From, l.To, l.Attrs)
		}
	}
	return out
}

// FromAggregates builds a network whose edges carry summed call traffic.
// Self-calls are skipped. Undirected networks merge both directions.
func FromAggregates(aggs []cdr.AggregatedCall, directed bool) *Network {
	g := NewUndirected()
	if directed {
		g = NewDirected()
	}
	for _, a := range aggs {
		if a.ANum == a.BNum {
			g.AddNode(a.ANum)
			continue
		}
		attrs := EdgeAttrs{
			Calls:   float64(a.SCalls),
			Minutes: a.SMinutes,
			SMS:     float64(a.SSMS),
			MMS:     float64(a.SMMS),
		}
		_ = g.AccumulateEdge(a.ANum, a.BNum, attrs)
	}
	return g
}

// FromCalls aggregates a call table and builds a network from it.
func FromCalls(calls []cdr.CallRecord, directed bool) *Network {
	return FromAggregates(cdr.AggregateCalls(calls), directed)
}
