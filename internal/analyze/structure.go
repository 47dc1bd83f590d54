package analyze

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// StructureStats describes how a directed call network breaks into weak
// components and how much the neighbourhoods of its callers overlap.
type StructureStats struct {
	Quarter        string        `json:"quarter"`
	ComponentSizes []int         `json:"componentSizes"` // largest first
	Overlap        ColumnSummary `json:"overlap"`
	Undefined      int           `json:"undefinedOverlaps"`
}

// Structure computes the weak component sizes of d and the overlap
// distribution of its undirected projection. Every edge contributes one
// overlap per endpoint.
func Structure(d *graph.Network, quarter string) (*StructureStats, error) {
	if !d.IsDirected() {
		return nil, graph.ErrUndirected
	}
	values, undefined, err := graph.OverlapDistribution(d.ToUndirected(), nil, true)
	if err != nil {
		return nil, err
	}
	return &StructureStats{
		Quarter:        quarter,
		ComponentSizes: graph.ComponentSizes(d),
		Overlap:        summarize(Column{Name: "overlap", Values: values}),
		Undefined:      undefined,
	}, nil
}

// Report returns the structure table.
func (s *StructureStats) Report() Report {
	sizes := make([]string, len(s.ComponentSizes))
	for i, n := range s.ComponentSizes {
		sizes[i] = strconv.Itoa(n)
	}
	o := s.Overlap
	return Report{Rows: []Row{
		{"Network Structure -- Quarter ", s.Quarter},
		{indent + "Number of Weakly Connected Components (WCC): ", strconv.Itoa(len(s.ComponentSizes))},
		{indent + indent + "WCC sizes (largest first): ", strings.Join(sizes, " ")},
		{indent + "Number of edge overlaps (one per endpoint): ", strconv.Itoa(o.Count)},
		{indent + indent + "Number of undefined overlaps: ", strconv.Itoa(s.Undefined)},
		{indent + indent + "Mean overlap: ", formatFloat(o.Mean)},
		{indent + indent + "Median overlap: ", formatFloat(o.Median)},
		{indent + indent + "25th percentile overlap: ", formatFloat(o.P25)},
		{indent + indent + "75th percentile overlap: ", formatFloat(o.P75)},
		{indent + indent + "Maximum overlap: ", formatFloat(o.Max)},
	}}
}

// StructureQuarters splits calls by quarter and computes the structure of
// each quarter's directed network concurrently, ordered by quarter.
func StructureQuarters(ctx context.Context, calls []cdr.CallRecord) ([]*StructureStats, error) {
	quarters, err := cdr.SplitByQuarter(calls)
	if err != nil {
		return nil, err
	}
	out := make([]*StructureStats, len(quarters))

	eg, ctx := errgroup.WithContext(ctx)
	for i, q := range quarters {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := Structure(graph.FromAggregates(cdr.AggregateCalls(q.Calls), true), q.Quarter)
			if err != nil {
				return fmt.Errorf("quarter %s: %w", q.Quarter, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
