// Package analyze computes the descriptive statistics of a CDR dataset:
// per-column summaries of the call and attribute tables and the directed
// and undirected network summaries of a call graph.
package analyze

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
)

// StatNames lists the summary statistics in table order.
var StatNames = []string{"min", "max", "mean", "median", "var", "std", "nunique", "count", "p25", "p75"}

// Column is a named numeric column. NaN marks a missing value.
type Column struct {
	Name   string
	Values []float64
}

// ColumnSummary holds the statistics of one column. Statistics that are
// undefined for the available values (e.g. the variance of one value) are NaN.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Var     float64 `json:"var"`
	Std     float64 `json:"std"`
	NUnique int     `json:"nunique"`
	Count   int     `json:"count"`
	P25     float64 `json:"p25"`
	P75     float64 `json:"p75"`
}

// values returns the statistics in StatNames order.
func (s ColumnSummary) values() []float64 {
	return []float64{s.Min, s.Max, s.Mean, s.Median, s.Var, s.Std,
		float64(s.NUnique), float64(s.Count), s.P25, s.P75}
}

// Strings returns the statistics in StatNames order, formatted as in
// WriteCSV.
func (s ColumnSummary) Strings() []string {
	vals := s.values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatFloat(v)
	}
	return out
}

// SummaryTable is a statistics-by-column table.
type SummaryTable struct {
	Columns []ColumnSummary `json:"columns"`
}

// SummaryStats summarizes every column. Missing values are skipped; the
// variance and standard deviation are the unbiased sample estimates and
// quantiles interpolate linearly between order statistics.
func SummaryStats(columns []Column) SummaryTable {
	out := SummaryTable{Columns: make([]ColumnSummary, 0, len(columns))}
	for _, c := range columns {
		out.Columns = append(out.Columns, summarize(c))
	}
	return out
}

func summarize(c Column) ColumnSummary {
	x := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	s := ColumnSummary{Name: c.Name, Count: len(x)}
	nan := math.NaN()
	if len(x) == 0 {
		s.Min, s.Max, s.Mean, s.Median, s.Var, s.Std, s.P25, s.P75 = nan, nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(x)

	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Mean = stat.Mean(x, nil)
	s.Median = Quantile(x, 0.5)
	s.P25 = Quantile(x, 0.25)
	s.P75 = Quantile(x, 0.75)
	if len(x) > 1 {
		s.Var = stat.Variance(x, nil)
		s.Std = stat.StdDev(x, nil)
	} else {
		s.Var, s.Std = nan, nan
	}

	unique := 1
	for i := 1; i < len(x); i++ {
		if x[i] != x[i-1] {
			unique++
		}
	}
	s.NUnique = unique
	return s
}

// Quantile returns the p-quantile of sorted, interpolating linearly between
// the order statistics at floor and ceil of p*(n-1).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if hi >= n {
		hi = n - 1
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// CallColumns returns the numeric columns of a call table.
func CallColumns(calls []cdr.CallRecord) []Column {
	cols := []Column{
		{Name: "date"}, {Name: "A_num"}, {Name: "B_num"},
		{Name: "calls"}, {Name: "min"}, {Name: "sms"}, {Name: "mms"},
	}
	for i := range cols {
		cols[i].Values = make([]float64, len(calls))
	}
	for r, c := range calls {
		date, err := strconv.ParseFloat(c.Date, 64)
		if err != nil {
			date = math.NaN()
		}
		cols[0].Values[r] = date
		cols[1].Values[r] = float64(c.ANum)
		cols[2].Values[r] = float64(c.BNum)
		cols[3].Values[r] = float64(c.Calls)
		cols[4].Values[r] = c.Minutes
		cols[5].Values[r] = float64(c.SMS)
		cols[6].Values[r] = float64(c.MMS)
	}
	return cols
}

// AttributeColumns returns the numeric columns of an attribute table. The
// postcode column is included only when every present postcode is numeric;
// gender is never numeric.
func AttributeColumns(attrs []cdr.Attribute) []Column {
	num := Column{Name: "A_num", Values: make([]float64, len(attrs))}
	post := Column{Name: "postcode", Values: make([]float64, len(attrs))}
	age := Column{Name: "age", Values: make([]float64, len(attrs))}
	numericPost := true
	for r, a := range attrs {
		num.Values[r] = float64(a.Number)
		if a.HasAge() {
			age.Values[r] = float64(a.Age)
		} else {
			age.Values[r] = math.NaN()
		}
		if a.Postcode == "" {
			post.Values[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(a.Postcode, 64)
		if err != nil {
			numericPost = false
			continue
		}
		post.Values[r] = v
	}
	if numericPost {
		return []Column{num, post, age}
	}
	return []Column{num, age}
}

// WriteCSV writes the table with one row per statistic and one column per
// summarized column, headed by the column names.
func (t SummaryTable) WriteCSV(w io.Writer) error {
	var b strings.Builder
	for _, c := range t.Columns {
		b.WriteString(",")
		b.WriteString(c.Name)
	}
	b.WriteString("\n")
	vals := t.matrix()
	for i, name := range StatNames {
		b.WriteString(name)
		for j := range t.Columns {
			b.WriteString(",")
			b.WriteString(formatFloat(vals[j][i]))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders the table aligned for a terminal.
func (t SummaryTable) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, c := range t.Columns {
		fmt.Fprintf(tw, "\t%s", c.Name)
	}
	fmt.Fprintln(tw, "\t")
	vals := t.matrix()
	for i, name := range StatNames {
		fmt.Fprint(tw, name)
		for j := range t.Columns {
			fmt.Fprintf(tw, "\t%s", formatFloat(vals[j][i]))
		}
		fmt.Fprintln(tw, "\t")
	}
	_ = tw.Flush()
	return b.String()
}

func (t SummaryTable) matrix() [][]float64 {
	out := make([][]float64, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.values()
	}
	return out
}

// formatFloat renders v the shortest way that round-trips, always with a
// decimal point, and NaN as "NaN".
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}
