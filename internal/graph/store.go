package graph

import (
	"context"
	"io"
)

// Store is the interface for persisted call graphs.
// Implementations: KuzuStore (production), MemStore (testing).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. AddCall creates missing subscribers with no attributes.
	AddSubscriber(ctx context.Context, node SubscriberNode) error
	AddCall(ctx context.Context, edge CallEdge) error
	AddComponent(ctx context.Context, node ComponentNode) error

	// Read operations.
	GetSubscriber(ctx context.Context, number int64) (*SubscriberNode, error)
	QuerySubscribers(ctx context.Context, q SubscriberQuery) ([]SubscriberNode, error)
	GetAllCalls(ctx context.Context) ([]CallEdge, error)

	// Graph traversal.
	GetContacts(ctx context.Context, number int64, direction Direction, maxDepth int) ([]ContactChain, error)
	GetComponents(ctx context.Context) ([]ComponentNode, error)

	// Stats.
	Stats(ctx context.Context) (*StoreStats, error)
}

// Direction controls contact traversal direction.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing" // whom did this number call?
	DirectionIncoming Direction = "incoming" // who called this number?
)
