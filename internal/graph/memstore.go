package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu          sync.RWMutex
	subscribers map[int64]SubscriberNode
	order       []int64 // subscriber insertion order
	calls       []CallEdge
	components  []ComponentNode
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		subscribers: make(map[int64]SubscriberNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddSubscriber stores a subscriber keyed by number, replacing earlier
// attributes.
func (m *MemStore) AddSubscriber(_ context.Context, node SubscriberNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putSubscriber(node)
	return nil
}

func (m *MemStore) putSubscriber(node SubscriberNode) {
	if _, ok := m.subscribers[node.Number]; !ok {
		m.order = append(m.order, node.Number)
	}
	m.subscribers[node.Number] = node
}

// AddCall appends a call edge, creating bare subscribers for unknown numbers.
func (m *MemStore) AddCall(_ context.Context, edge CallEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range []int64{edge.From, edge.To} {
		if _, ok := m.subscribers[n]; !ok {
			m.putSubscriber(SubscriberNode{Number: n})
		}
	}
	m.calls = append(m.calls, edge)
	return nil
}

// AddComponent appends a component to the internal slice.
func (m *MemStore) AddComponent(_ context.Context, node ComponentNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := make([]int64, len(node.Members))
	copy(members, node.Members)
	node.Members = members
	m.components = append(m.components, node)
	return nil
}

// GetSubscriber returns the subscriber with the given number, or nil if not found.
func (m *MemStore) GetSubscriber(_ context.Context, number int64) (*SubscriberNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subscribers[number]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// QuerySubscribers returns subscribers matching q ordered by number. A limit
// <= 0 returns all matches.
func (m *MemStore) QuerySubscribers(_ context.Context, q SubscriberQuery) ([]SubscriberNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	numbers := make([]int64, len(m.order))
	copy(numbers, m.order)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	var results []SubscriberNode
	for _, n := range numbers {
		s := m.subscribers[n]
		if !matches(s, q) {
			continue
		}
		results = append(results, s)
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	return results, nil
}

func matches(s SubscriberNode, q SubscriberQuery) bool {
	if q.Gender != "" && s.Gender != q.Gender {
		return false
	}
	if q.MinAge > 0 && s.Age < q.MinAge {
		return false
	}
	if q.MaxAge > 0 && (s.Age == 0 || s.Age > q.MaxAge) {
		return false
	}
	if q.PostcodePrefix != "" && !strings.HasPrefix(s.Postcode, q.PostcodePrefix) {
		return false
	}
	return true
}

// GetAllCalls returns a copy of all call edges in the store.
func (m *MemStore) GetAllCalls(_ context.Context) ([]CallEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CallEdge, len(m.calls))
	copy(out, m.calls)
	return out, nil
}

// GetContacts performs a BFS over calls from number in the given direction,
// up to maxDepth hops. It returns one ContactChain per reachable subscriber.
func (m *MemStore) GetContacts(_ context.Context, number int64, direction Direction, maxDepth int) ([]ContactChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		id   int64
		path []int64
	}

	visited := map[int64]bool{number: true}
	queue := []bfsEntry{{id: number, path: []int64{number}}}
	var chains []ContactChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]int64, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, ContactChain{
					Numbers: newPath,
					Depth:   len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns numbers one call away from id in the given direction.
func (m *MemStore) neighbors(id int64, direction Direction) []int64 {
	var result []int64
	for _, e := range m.calls {
		switch direction {
		case DirectionOutgoing:
			if e.From == id {
				result = append(result, e.To)
			}
		case DirectionIncoming:
			if e.To == id {
				result = append(result, e.From)
			}
		}
	}
	return result
}

// GetComponents returns all stored components.
func (m *MemStore) GetComponents(_ context.Context) ([]ComponentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ComponentNode, len(m.components))
	copy(out, m.components)
	return out, nil
}

// Stats returns node and edge counts and the traffic totals.
func (m *MemStore) Stats(_ context.Context) (*StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &StoreStats{
		SubscriberCount: len(m.subscribers),
		CallEdgeCount:   len(m.calls),
		ComponentCount:  len(m.components),
	}
	for _, c := range m.calls {
		st.TotalCalls += c.Attrs.Calls
		st.TotalMinutes += c.Attrs.Minutes
		st.TotalSMS += c.Attrs.SMS
		st.TotalMMS += c.Attrs.MMS
	}
	return st, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
