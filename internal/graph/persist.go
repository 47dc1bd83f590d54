package graph

import (
	"context"
	"fmt"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
)

// Persist writes g and the subscriber attributes into store. Attributes are
// written first so that call edges attach to fully described subscribers;
// nodes of g without attributes are stored bare. Undirected edges are
// stored once, oriented as returned by Edges.
func Persist(ctx context.Context, store Store, g *Network, attrs []cdr.Attribute) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	described := make(map[int64]bool, len(attrs))
	for _, a := range attrs {
		if err := ctx.Err(); err != nil {
			return err
		}
		node := SubscriberNode{
			Number:   a.Number,
			Postcode: a.Postcode,
			Gender:   a.Gender,
			Age:      a.Age,
		}
		if err := store.AddSubscriber(ctx, node); err != nil {
			return fmt.Errorf("add subscriber %d: %w", a.Number, err)
		}
		described[a.Number] = true
	}
	for _, u := range g.Nodes() {
		if described[u] {
			continue
		}
		if err := store.AddSubscriber(ctx, SubscriberNode{Number: u}); err != nil {
			return fmt.Errorf("add subscriber %d: %w", u, err)
		}
	}

	for _, l := range g.Edges() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.AddCall(ctx, CallEdge(l)); err != nil {
			return fmt.Errorf("add call %d->%d: %w", l.From, l.To, err)
		}
	}
	return nil
}

// LoadNetwork rebuilds a Network from the CALLS edges and subscribers of
// store. Subscribers without calls become isolated nodes.
func LoadNetwork(ctx context.Context, store Store, directed bool) (*Network, error) {
	subs, err := store.QuerySubscribers(ctx, SubscriberQuery{})
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	calls, err := store.GetAllCalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}

	g := NewUndirected()
	if directed {
		g = NewDirected()
	}
	for _, s := range subs {
		g.AddNode(s.Number)
	}
	for _, c := range calls {
		if err := g.AccumulateEdge(c.From, c.To, c.Attrs); err != nil {
			return nil, err
		}
	}
	return g, nil
}
