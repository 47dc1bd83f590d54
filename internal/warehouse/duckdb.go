//go:build cgo

package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver

	"github.com/dusk-indust/cdrhelper/internal/cdr"
)

// Table names a warehouse table.
type Table string

const (
	TableCalls      Table = "calls"
	TableAttributes Table = "attributes"
)

// ErrUnknownTable is returned by CountRows for a table the warehouse does not
// manage.
var ErrUnknownTable = errors.New("warehouse: unknown table")

var schema = []string{`
CREATE TABLE IF NOT EXISTS calls (
	date    VARCHAR NOT NULL,
	a_num   BIGINT  NOT NULL,
	b_num   BIGINT  NOT NULL,
	calls   INTEGER NOT NULL,
	minutes DOUBLE  NOT NULL,
	sms     INTEGER NOT NULL,
	mms     INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS attributes (
	number   BIGINT PRIMARY KEY,
	postcode VARCHAR,
	gender   VARCHAR,
	age      INTEGER
)`}

// DuckDB holds call and attribute tables in a DuckDB database.
type DuckDB struct {
	db      *sql.DB
	threads int
}

// Option configures a DuckDB warehouse.
type Option func(*DuckDB)

// WithThreads sets the number of DuckDB threads (0 = DuckDB default).
func WithThreads(n int) Option {
	return func(d *DuckDB) {
		d.threads = n
	}
}

// Open opens or creates the warehouse at dsn and ensures its tables exist.
// An empty dsn opens an in-memory database.
func Open(ctx context.Context, dsn string, opts ...Option) (*DuckDB, error) {
	d := &DuckDB{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warehouse: ping duckdb: %w", err)
	}
	// Writes go through one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	d.db = db

	if d.threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET threads TO %d", d.threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("warehouse: set threads: %w", err)
		}
	}
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("warehouse: create schema: %w", err)
		}
	}
	return d, nil
}

// DB returns the underlying sql.DB instance.
func (d *DuckDB) DB() *sql.DB {
	return d.db
}

// Close releases database resources.
func (d *DuckDB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// LoadCalls appends call records to the calls table in one transaction.
func (d *DuckDB) LoadCalls(ctx context.Context, calls []cdr.CallRecord) error {
	return d.inTx(ctx, `INSERT INTO calls VALUES (?, ?, ?, ?, ?, ?, ?)`, func(stmt *sql.Stmt) error {
		for _, c := range calls {
			if _, err := stmt.ExecContext(ctx, c.Date, c.ANum, c.BNum, c.Calls, c.Minutes, c.SMS, c.MMS); err != nil {
				return fmt.Errorf("insert call %d -> %d on %s: %w", c.ANum, c.BNum, c.Date, err)
			}
		}
		return nil
	})
}

// LoadAttributes inserts or replaces attribute rows. Missing values are
// stored as NULL.
func (d *DuckDB) LoadAttributes(ctx context.Context, attrs []cdr.Attribute) error {
	return d.inTx(ctx, `INSERT OR REPLACE INTO attributes VALUES (?, ?, ?, ?)`, func(stmt *sql.Stmt) error {
		for _, a := range attrs {
			age := sql.NullInt64{Int64: int64(a.Age), Valid: a.HasAge()}
			postcode := sql.NullString{String: a.Postcode, Valid: a.Postcode != ""}
			gender := sql.NullString{String: a.Gender, Valid: a.Gender != ""}
			if _, err := stmt.ExecContext(ctx, a.Number, postcode, gender, age); err != nil {
				return fmt.Errorf("insert attributes of %d: %w", a.Number, err)
			}
		}
		return nil
	})
}

// LoadCallsFile reads a call table written by cdr.WriteCalls and loads it.
func (d *DuckDB) LoadCallsFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	calls, err := cdr.ReadCalls(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return len(calls), d.LoadCalls(ctx, calls)
}

// LoadAttributesFile reads an attribute table written by cdr.WriteAttributes
// and loads it.
func (d *DuckDB) LoadAttributesFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	attrs, err := cdr.ReadAttributes(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return len(attrs), d.LoadAttributes(ctx, attrs)
}

func (d *DuckDB) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("warehouse: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("warehouse: prepare: %w", err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("warehouse: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("warehouse: commit: %w", err)
	}
	return nil
}

// AggregateCalls sums the traffic of every ordered (A, B) pair, ordered by
// A then B.
func (d *DuckDB) AggregateCalls(ctx context.Context) ([]cdr.AggregatedCall, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT a_num, b_num,
		       CAST(SUM(calls) AS BIGINT),
		       SUM(minutes),
		       CAST(SUM(sms) AS BIGINT),
		       CAST(SUM(mms) AS BIGINT)
		FROM calls
		GROUP BY a_num, b_num
		ORDER BY a_num, b_num`)
	if err != nil {
		return nil, fmt.Errorf("warehouse: aggregate calls: %w", err)
	}
	defer rows.Close()

	var out []cdr.AggregatedCall
	for rows.Next() {
		var a cdr.AggregatedCall
		var calls, sms, mms int64
		if err := rows.Scan(&a.ANum, &a.BNum, &calls, &a.SMinutes, &sms, &mms); err != nil {
			return nil, fmt.Errorf("warehouse: scan aggregate: %w", err)
		}
		a.SCalls, a.SSMS, a.SMMS = int(calls), int(sms), int(mms)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DayTraffic is the traffic of one date.
type DayTraffic struct {
	Date    string  `json:"date"`
	Records int     `json:"records"`
	Calls   int     `json:"calls"`
	Minutes float64 `json:"minutes"`
}

// DailyTraffic sums traffic per date, ordered by date.
func (d *DuckDB) DailyTraffic(ctx context.Context) ([]DayTraffic, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT date, COUNT(*), CAST(SUM(calls) AS BIGINT), SUM(minutes)
		FROM calls
		GROUP BY date
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("warehouse: daily traffic: %w", err)
	}
	defer rows.Close()

	var out []DayTraffic
	for rows.Next() {
		var t DayTraffic
		var records, calls int64
		if err := rows.Scan(&t.Date, &records, &calls, &t.Minutes); err != nil {
			return nil, fmt.Errorf("warehouse: scan daily traffic: %w", err)
		}
		t.Records, t.Calls = int(records), int(calls)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountRows returns the number of rows in table.
func (d *DuckDB) CountRows(ctx context.Context, table Table) (int, error) {
	switch table {
	case TableCalls, TableAttributes:
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var n int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("warehouse: count %s: %w", table, err)
	}
	return int(n), nil
}
