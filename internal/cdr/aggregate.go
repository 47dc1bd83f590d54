package cdr

import (
	"fmt"
	"os"
	"sort"
)

type pairKey struct {
	a, b int64
}

// AggregateCalls sums calls, minutes, SMS and MMS per ordered (A, B) pair.
// The result is sorted by A then B; direction is preserved.
func AggregateCalls(calls []CallRecord) []AggregatedCall {
	index := make(map[pairKey]int, len(calls))
	var out []AggregatedCall
	for _, c := range calls {
		k := pairKey{c.ANum, c.BNum}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, AggregatedCall{ANum: c.ANum, BNum: c.BNum})
		}
		out[i].SCalls += c.Calls
		out[i].SMinutes += c.Minutes
		out[i].SSMS += c.SMS
		out[i].SMMS += c.MMS
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ANum != out[j].ANum {
			return out[i].ANum < out[j].ANum
		}
		return out[i].BNum < out[j].BNum
	})
	return out
}

// Quarter returns the calendar quarter label of a YYYYMMDD date, e.g. "2013Q1".
func Quarter(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1), nil
}

// QuarterCalls is the slice of a call table that falls in one quarter.
type QuarterCalls struct {
	Quarter string
	Calls   []CallRecord
}

// SplitByQuarter partitions calls by calendar quarter, ordered chronologically.
func SplitByQuarter(calls []CallRecord) ([]QuarterCalls, error) {
	byQuarter := make(map[string][]CallRecord)
	for _, c := range calls {
		q, err := Quarter(c.Date)
		if err != nil {
			return nil, err
		}
		byQuarter[q] = append(byQuarter[q], c)
	}
	labels := make([]string, 0, len(byQuarter))
	for q := range byQuarter {
		labels = append(labels, q)
	}
	// "YYYYQn" sorts chronologically for four-digit years.
	sort.Strings(labels)

	out := make([]QuarterCalls, 0, len(labels))
	for _, q := range labels {
		out = append(out, QuarterCalls{Quarter: q, Calls: byQuarter[q]})
	}
	return out, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
