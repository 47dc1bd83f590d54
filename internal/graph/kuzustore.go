//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the leaf itself for new databases, so a call
// graph persisted by one command can be reopened by the next.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Subscriber(
		number INT64,
		postcode STRING,
		gender STRING,
		age INT64,
		PRIMARY KEY(number)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Component(
		name STRING,
		relative_size DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CALLS(
		FROM Subscriber TO Subscriber,
		calls DOUBLE,
		minutes DOUBLE,
		sms DOUBLE,
		mms DOUBLE
	)`,
	`CREATE REL TABLE IF NOT EXISTS MEMBER_OF(FROM Subscriber TO Component)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddSubscriber upserts a Subscriber node.
func (s *KuzuStore) AddSubscriber(_ context.Context, node SubscriberNode) error {
	return s.exec(
		`MERGE (s:Subscriber {number: $number})
		 SET s.postcode = $postcode, s.gender = $gender, s.age = $age`,
		map[string]any{
			"number":   node.Number,
			"postcode": node.Postcode,
			"gender":   node.Gender,
			"age":      int64(node.Age),
		},
	)
}

// AddCall inserts a CALLS relationship, merging its endpoints.
func (s *KuzuStore) AddCall(_ context.Context, edge CallEdge) error {
	return s.exec(
		`MERGE (a:Subscriber {number: $src})
		 MERGE (b:Subscriber {number: $dst})
		 CREATE (a)-[:CALLS {calls: $calls, minutes: $minutes, sms: $sms, mms: $mms}]->(b)`,
		map[string]any{
			"src":     edge.From,
			"dst":     edge.To,
			"calls":   edge.Attrs.Calls,
			"minutes": edge.Attrs.Minutes,
			"sms":     edge.Attrs.SMS,
			"mms":     edge.Attrs.MMS,
		},
	)
}

// AddComponent inserts a Component node and a MEMBER_OF edge per member.
func (s *KuzuStore) AddComponent(_ context.Context, node ComponentNode) error {
	if err := s.exec(
		"CREATE (c:Component {name: $name, relative_size: $size})",
		map[string]any{
			"name": node.Name,
			"size": node.RelativeSize,
		},
	); err != nil {
		return err
	}
	for _, member := range node.Members {
		if err := s.exec(
			`MATCH (s:Subscriber {number: $number}), (c:Component {name: $name})
			 CREATE (s)-[:MEMBER_OF]->(c)`,
			map[string]any{"number": member, "name": node.Name},
		); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// GetSubscriber retrieves a single Subscriber node, or nil if not found.
func (s *KuzuStore) GetSubscriber(_ context.Context, number int64) (*SubscriberNode, error) {
	rows, err := s.query(
		"MATCH (s:Subscriber {number: $number}) RETURN s.number, s.postcode, s.gender, s.age",
		map[string]any{"number": number},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToSubscriber(rows[0]), nil
}

// QuerySubscribers returns subscribers matching q ordered by number.
func (s *KuzuStore) QuerySubscribers(_ context.Context, q SubscriberQuery) ([]SubscriberNode, error) {
	cypher := `MATCH (s:Subscriber)
		 WHERE ($gender = '' OR s.gender = $gender)
		   AND ($minAge = 0 OR s.age >= $minAge)
		   AND ($maxAge = 0 OR (s.age > 0 AND s.age <= $maxAge))
		   AND ($prefix = '' OR starts_with(s.postcode, $prefix))
		 RETURN s.number, s.postcode, s.gender, s.age
		 ORDER BY s.number`
	params := map[string]any{
		"gender": q.Gender,
		"minAge": int64(q.MinAge),
		"maxAge": int64(q.MaxAge),
		"prefix": q.PostcodePrefix,
	}
	if q.Limit > 0 {
		cypher += `
		 LIMIT $lim`
		params["lim"] = int64(q.Limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriberNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSubscriber(r))
	}
	return out, nil
}

// GetAllCalls returns every CALLS relationship.
func (s *KuzuStore) GetAllCalls(_ context.Context) ([]CallEdge, error) {
	rows, err := s.query(
		`MATCH (a:Subscriber)-[r:CALLS]->(b:Subscriber)
		 RETURN a.number, b.number, r.calls, r.minutes, r.sms, r.mms
		 ORDER BY a.number, b.number`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]CallEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, CallEdge{
			From: toInt64(r[0]),
			To:   toInt64(r[1]),
			Attrs: EdgeAttrs{
				Calls:   toFloat64(r[2]),
				Minutes: toFloat64(r[3]),
				SMS:     toFloat64(r[4]),
				MMS:     toFloat64(r[5]),
			},
		})
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetContacts performs a BFS over CALLS edges starting from number. It
// returns one ContactChain per reachable subscriber.
func (s *KuzuStore) GetContacts(_ context.Context, number int64, dir Direction, maxDepth int) ([]ContactChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		path  []int64
		depth int
	}
	visited := map[int64]bool{number: true}
	queue := []bfsEntry{{path: []int64{number}, depth: 0}}
	var chains []ContactChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.callNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]int64, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, ContactChain{
				Numbers: newPath,
				Depth:   cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// callNeighbors returns the numbers one CALLS edge away.
func (s *KuzuStore) callNeighbors(number int64, dir Direction) ([]int64, error) {
	var cypher string
	switch dir {
	case DirectionOutgoing:
		cypher = "MATCH (a:Subscriber {number: $n})-[:CALLS]->(b:Subscriber) RETURN b.number ORDER BY b.number"
	case DirectionIncoming:
		cypher = "MATCH (a:Subscriber)-[:CALLS]->(b:Subscriber {number: $n}) RETURN a.number ORDER BY a.number"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"n": number})
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, toInt64(r[0]))
	}
	return out, nil
}

// GetComponents returns all Component nodes with their members.
func (s *KuzuStore) GetComponents(_ context.Context) ([]ComponentNode, error) {
	rows, err := s.query(
		"MATCH (c:Component) RETURN c.name, c.relative_size ORDER BY c.relative_size DESC, c.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ComponentNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])

		memberRows, err := s.query(
			"MATCH (s:Subscriber)-[:MEMBER_OF]->(c:Component {name: $name}) RETURN s.number",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]int64, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toInt64(mr[0]))
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		out = append(out, ComponentNode{
			Name:         name,
			RelativeSize: toFloat64(r[1]),
			Members:      members,
		})
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns node and relationship counts and the traffic totals.
func (s *KuzuStore) Stats(_ context.Context) (*StoreStats, error) {
	subscribers, err := s.countTable("Subscriber")
	if err != nil {
		return nil, err
	}
	components, err := s.countTable("Component")
	if err != nil {
		return nil, err
	}
	rows, err := s.query(
		"MATCH ()-[r:CALLS]->() RETURN count(r), sum(r.calls), sum(r.minutes), sum(r.sms), sum(r.mms)",
		nil,
	)
	if err != nil {
		return nil, err
	}
	st := &StoreStats{
		SubscriberCount: subscribers,
		ComponentCount:  components,
	}
	if len(rows) > 0 && len(rows[0]) == 5 {
		r := rows[0]
		st.CallEdgeCount = toInt(r[0])
		st.TotalCalls = toFloat64(r[1])
		st.TotalMinutes = toFloat64(r[2])
		st.TotalSMS = toFloat64(r[3])
		st.TotalMMS = toFloat64(r[4])
	}
	return st, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToSubscriber converts a 4-column result row into a SubscriberNode.
// Column order: number, postcode, gender, age.
func rowToSubscriber(r []any) *SubscriberNode {
	return &SubscriberNode{
		Number:   toInt64(r[0]),
		Postcode: toString(r[1]),
		Gender:   toString(r[2]),
		Age:      toInt(r[3]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string) and nil for
// NULL. These helpers coerce any -> concrete type.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toInt(v any) int {
	return int(toInt64(v))
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
