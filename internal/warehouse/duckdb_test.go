//go:build cgo

package warehouse

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
)

var testCalls = []cdr.CallRecord{
	{Date: "20130101", ANum: 2, BNum: 1, Calls: 1, Minutes: 1.5, SMS: 2, MMS: 0},
	{Date: "20130101", ANum: 1, BNum: 2, Calls: 3, Minutes: 4.5, SMS: 6, MMS: 7},
	{Date: "20130102", ANum: 1, BNum: 2, Calls: 2, Minutes: 2.0, SMS: 1, MMS: 1},
	{Date: "20130102", ANum: 3, BNum: 1, Calls: 0, Minutes: 0, SMS: 4, MMS: 0},
}

func newTestWarehouse(t *testing.T) *DuckDB {
	t.Helper()
	d, err := Open(context.Background(), "", WithThreads(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestAggregateCalls_MatchesGo(t *testing.T) {
	ctx := context.Background()
	d := newTestWarehouse(t)
	require.NoError(t, d.LoadCalls(ctx, testCalls))

	got, err := d.AggregateCalls(ctx)
	require.NoError(t, err)
	want := cdr.AggregateCalls(testCalls)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ANum, got[i].ANum)
		assert.Equal(t, want[i].BNum, got[i].BNum)
		assert.Equal(t, want[i].SCalls, got[i].SCalls)
		assert.InDelta(t, want[i].SMinutes, got[i].SMinutes, 1e-9)
		assert.Equal(t, want[i].SSMS, got[i].SSMS)
		assert.Equal(t, want[i].SMMS, got[i].SMMS)
	}
}

func TestDailyTraffic(t *testing.T) {
	ctx := context.Background()
	d := newTestWarehouse(t)
	require.NoError(t, d.LoadCalls(ctx, testCalls))

	days, err := d.DailyTraffic(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, DayTraffic{Date: "20130101", Records: 2, Calls: 4, Minutes: 6}, days[0])
	assert.Equal(t, "20130102", days[1].Date)
	assert.Equal(t, 2, days[1].Calls)
}

func TestLoadAttributes_Missing(t *testing.T) {
	ctx := context.Background()
	d := newTestWarehouse(t)
	require.NoError(t, d.LoadAttributes(ctx, []cdr.Attribute{
		{Number: 1, Postcode: "1000", Gender: "F", Age: 30},
		{Number: 2},
	}))
	// Replacing a row keeps one row per number.
	require.NoError(t, d.LoadAttributes(ctx, []cdr.Attribute{{Number: 2, Gender: "M"}}))

	n, err := d.CountRows(ctx, TableAttributes)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var nullAges int
	require.NoError(t, d.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM attributes WHERE age IS NULL").Scan(&nullAges))
	assert.Equal(t, 1, nullAges)
}

func TestLoadFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls, attrs bytes.Buffer
	require.NoError(t, cdr.WriteCalls(&calls, testCalls))
	require.NoError(t, cdr.WriteAttributes(&attrs, []cdr.Attribute{{Number: 1, Age: 20}, {Number: 2}, {Number: 3}}))
	callsPath := filepath.Join(dir, "c.txt")
	attrsPath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(callsPath, calls.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(attrsPath, attrs.Bytes(), 0o644))

	d := newTestWarehouse(t)
	n, err := d.LoadCallsFile(ctx, callsPath)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = d.LoadAttributesFile(ctx, attrsPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := d.CountRows(ctx, TableCalls)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	_, err = d.LoadCallsFile(ctx, filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)
}

func TestCountRows_UnknownTable(t *testing.T) {
	_, err := newTestWarehouse(t).CountRows(context.Background(), "calls; DROP TABLE calls")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "w.duckdb")
	d, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, d.LoadCalls(ctx, testCalls[:1]))
	require.NoError(t, d.Close())

	d, err = Open(ctx, path)
	require.NoError(t, err)
	defer d.Close()
	n, err := d.CountRows(ctx, TableCalls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
