package analyze

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

const indent = "    "

// Row is one line of a network report.
type Row struct {
	Description string `json:"description"`
	Result      string `json:"result"`
}

// Report is a two-column Description/Result table.
type Report struct {
	Rows []Row `json:"rows"`
}

// WriteCSV writes the report with a Description,Result header. Fields are
// quoted only when they contain a comma, a quote or a line break, so the
// indented descriptions keep their leading spaces unquoted.
func (r Report) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	writeRecord(bw, "Description", "Result")
	for _, row := range r.Rows {
		writeRecord(bw, row.Description, row.Result)
	}
	return bw.Flush()
}

func writeRecord(bw *bufio.Writer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		if !strings.ContainsAny(f, ",\"\r\n") {
			bw.WriteString(f)
			continue
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
		bw.WriteByte('"')
	}
	bw.WriteByte('\n')
}

// String renders the report one row per line.
func (r Report) String() string {
	var b strings.Builder
	for _, row := range r.Rows {
		b.WriteString(row.Description)
		b.WriteString(row.Result)
		b.WriteString("\n")
	}
	return b.String()
}

// Sizes are the edge count and weighted sizes of a network.
type Sizes struct {
	Edges   int     `json:"edges"`
	Calls   float64 `json:"calls"`
	Minutes float64 `json:"min"`
	SMS     float64 `json:"sms"`
	MMS     float64 `json:"mms"`
}

func sizesOf(g *graph.Network) Sizes {
	return Sizes{
		Edges:   g.NumberOfEdges(),
		Calls:   g.Size(graph.WeightCalls),
		Minutes: g.Size(graph.WeightMinutes),
		SMS:     g.Size(graph.WeightSMS),
		MMS:     g.Size(graph.WeightMMS),
	}
}

func (s Sizes) rows(unweighted string) []Row {
	return []Row{
		{indent + unweighted, strconv.Itoa(s.Edges)},
		{indent + indent + "Number of edges (weighted by calls): ", formatFloat(s.Calls)},
		{indent + indent + "Number of edges (weighted by minutes): ", formatFloat(s.Minutes)},
		{indent + indent + "Number of edges (weighted by SMS): ", formatFloat(s.SMS)},
		{indent + indent + "Number of edges (weighted by MMS): ", formatFloat(s.MMS)},
	}
}

// DirectedStats summarizes a directed call network.
type DirectedStats struct {
	Quarter    string  `json:"quarter"`
	Nodes      int     `json:"nodes"`
	Sizes      Sizes   `json:"sizes"`
	SCCCount   int     `json:"sccCount"`
	LargestSCC float64 `json:"largestScc"` // relative size
	WCCCount   int     `json:"wccCount"`
	LargestWCC float64 `json:"largestWcc"` // relative size
}

// Directed computes the statistics of a directed network labelled quarter.
func Directed(d *graph.Network, quarter string) (*DirectedStats, error) {
	nscc, err := graph.NumberStronglyConnected(d)
	if err != nil {
		return nil, err
	}
	nwcc, err := graph.NumberWeaklyConnected(d)
	if err != nil {
		return nil, err
	}
	rscc, err := graph.RelativeLargestSCC(d)
	if err != nil {
		return nil, err
	}
	rwcc, err := graph.RelativeLargestWCC(d)
	if err != nil {
		return nil, err
	}
	return &DirectedStats{
		Quarter:    quarter,
		Nodes:      d.NumberOfNodes(),
		Sizes:      sizesOf(d),
		SCCCount:   nscc,
		LargestSCC: rscc,
		WCCCount:   nwcc,
		LargestWCC: rwcc,
	}, nil
}

// Report returns the eleven-row directed network table.
func (s *DirectedStats) Report() Report {
	rows := []Row{
		{"Directed Network Statistics -- Quarter ", s.Quarter},
		{indent + "Number of nodes: ", strconv.Itoa(s.Nodes)},
	}
	rows = append(rows, s.Sizes.rows("Number of edges (unweighted): ")...)
	rows = append(rows,
		Row{indent + "Number of Strongly Connected Components (SCC): ", strconv.Itoa(s.SCCCount)},
		Row{indent + indent + "Relative size of largest SCC: ", formatFloat(s.LargestSCC)},
		Row{indent + "Number of Weakly Connected Components (WCC): ", strconv.Itoa(s.WCCCount)},
		Row{indent + indent + "Relative size of largest WCC: ", formatFloat(s.LargestWCC)},
	)
	return Report{Rows: rows}
}

// DirectedSummary is Directed followed by Report.
func DirectedSummary(d *graph.Network, quarter string) (Report, error) {
	s, err := Directed(d, quarter)
	if err != nil {
		return Report{}, err
	}
	return s.Report(), nil
}

// UndirectedStats summarizes an undirected call network.
type UndirectedStats struct {
	Quarter           string  `json:"quarter"`
	Nodes             int     `json:"nodes"`
	Sizes             Sizes   `json:"sizes"`
	Clustering        float64 `json:"clustering"`
	ClusteringCalls   float64 `json:"clusteringCalls"`
	ClusteringMinutes float64 `json:"clusteringMin"`
	ClusteringSMS     float64 `json:"clusteringSms"`
	ClusteringMMS     float64 `json:"clusteringMms"`
}

// Undirected computes the statistics of an undirected network labelled
// quarter. The five average clusterings are computed concurrently.
func Undirected(ctx context.Context, g *graph.Network, quarter string) (*UndirectedStats, error) {
	weights := append([]graph.Weight{graph.WeightNone}, graph.Weights...)
	avg := make([]float64, len(weights))

	eg, ctx := errgroup.WithContext(ctx)
	for i, w := range weights {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := graph.AverageClustering(g, w)
			if err != nil {
				return fmt.Errorf("average clustering (%q): %w", w, err)
			}
			avg[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &UndirectedStats{
		Quarter:           quarter,
		Nodes:             g.NumberOfNodes(),
		Sizes:             sizesOf(g),
		Clustering:        avg[0],
		ClusteringCalls:   avg[1],
		ClusteringMinutes: avg[2],
		ClusteringSMS:     avg[3],
		ClusteringMMS:     avg[4],
	}, nil
}

// Report returns the twelve-row clustering table.
func (s *UndirectedStats) Report() Report {
	rows := []Row{
		{"Undirected Network Statistics -- Quarter ", s.Quarter},
		{indent + "Number of nodes: ", strconv.Itoa(s.Nodes)},
	}
	rows = append(rows, s.Sizes.rows("Number of edges (unweighted, undirected): ")...)
	rows = append(rows,
		Row{indent + "Average Clustering (undirected, unweighted): ", formatFloat(s.Clustering)},
		Row{indent + indent + "Average Clustering (weighted by calls): ", formatFloat(s.ClusteringCalls)},
		Row{indent + indent + "Average Clustering (weighted by minutes): ", formatFloat(s.ClusteringMinutes)},
		Row{indent + indent + "Average Clustering (weighted by SMS): ", formatFloat(s.ClusteringSMS)},
		Row{indent + indent + "Average Clustering (weighted by MMS): ", formatFloat(s.ClusteringMMS)},
	)
	return Report{Rows: rows}
}

// UndirectedSummary is Undirected followed by Report.
func UndirectedSummary(ctx context.Context, g *graph.Network, quarter string) (Report, error) {
	s, err := Undirected(ctx, g, quarter)
	if err != nil {
		return Report{}, err
	}
	return s.Report(), nil
}

// QuarterSummary holds both network summaries of one quarter.
type QuarterSummary struct {
	Quarter    string           `json:"quarter"`
	Directed   *DirectedStats   `json:"directed"`
	Undirected *UndirectedStats `json:"undirected"`
}

// SummarizeQuarters splits calls by quarter and summarizes the directed and
// undirected network of each quarter concurrently. Results are ordered by
// quarter.
func SummarizeQuarters(ctx context.Context, calls []cdr.CallRecord) ([]QuarterSummary, error) {
	quarters, err := cdr.SplitByQuarter(calls)
	if err != nil {
		return nil, err
	}
	out := make([]QuarterSummary, len(quarters))

	eg, ctx := errgroup.WithContext(ctx)
	for i, q := range quarters {
		eg.Go(func() error {
			aggs := cdr.AggregateCalls(q.Calls)
			d, err := Directed(graph.FromAggregates(aggs, true), q.Quarter)
			if err != nil {
				return fmt.Errorf("quarter %s: %w", q.Quarter, err)
			}
			u, err := Undirected(ctx, graph.FromAggregates(aggs, false), q.Quarter)
			if err != nil {
				return fmt.Errorf("quarter %s: %w", q.Quarter, err)
			}
			out[i] = QuarterSummary{Quarter: q.Quarter, Directed: d, Undirected: u}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
