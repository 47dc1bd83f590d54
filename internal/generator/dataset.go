// Package generator synthesizes fake call-detail-record datasets: a
// preferential-attachment network of subscribers, the daily calls between
// them, and a table of subscriber attributes.
//
// Generation runs in three steps. Network edges are picked and assigned to
// dates, each picked edge gets call and text traffic, and a share of each
// day's calls is reciprocated. All randomness of one run flows from a single
// *rand.Rand so a fixed seed reproduces the dataset.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

// Params configures MakeData.
type Params struct {
	Nodes       int        `json:"nodes" yaml:"nodes"`
	Edges       int        `json:"edges" yaml:"edges"` // links added per new node
	Days        int        `json:"days" yaml:"days"`
	CallsPerDay float64    `json:"callsPerDay" yaml:"callsPerDay"`
	StartDate   string     `json:"startDate" yaml:"startDate"` // YYYYMMDD
	Call        CallParams `json:"call" yaml:"call"`
	Reciprocity float64    `json:"reciprocity" yaml:"reciprocity"`
	Seed        uint64     `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaleID      string     `json:"maleId" yaml:"maleId"`
	FemaleID    string     `json:"femaleId" yaml:"femaleId"`
}

// DefaultParams returns the parameters of a small demonstration dataset.
func DefaultParams() Params {
	return Params{
		Nodes:       30,
		Edges:       10,
		Days:        10,
		CallsPerDay: 20,
		StartDate:   "20130101",
		Call:        DefaultCallParams(),
		Reciprocity: 0.33,
		MaleID:      "M",
		FemaleID:    "F",
	}
}

// Missingness holds the share of rows to blank per attribute column.
type Missingness struct {
	Postcode float64 `json:"postcode" yaml:"postcode"`
	Age      float64 `json:"age" yaml:"age"`
	Gender   float64 `json:"gender" yaml:"gender"`
}

// Any reports whether any column is to be blanked.
func (m Missingness) Any() bool {
	return m.Postcode != 0 || m.Age != 0 || m.Gender != 0
}

// Validate checks that every probability lies in [0, 1].
func (m Missingness) Validate() error {
	for _, c := range []struct {
		name string
		p    float64
	}{{"postcode", m.Postcode}, {"age", m.Age}, {"gender", m.Gender}} {
		if err := checkProbability(c.name, c.p); err != nil {
			return err
		}
	}
	return nil
}

// Dataset is one generated network with its call and attribute tables.
type Dataset struct {
	Graph      *graph.Network
	Calls      []cdr.CallRecord
	Attributes []cdr.Attribute
}

// CallerNetwork builds the network calls are drawn from: a
// preferential-attachment network with node 0 removed.
func CallerNetwork(nodes, edges int, r *rand.Rand) (*graph.Network, error) {
	g, err := BarabasiAlbert(nodes, edges, r)
	if err != nil {
		return nil, err
	}
	g.RemoveNode(0)
	return g, nil
}

// Attributes draws one attribute row per node of g in node order: a uniform
// postcode, a uniform gender from {femaleID, maleID} and an age from
// MinAge upward weighted by ageWeights.
func Attributes(g *graph.Network, postcodes []string, ageWeights []float64, maleID, femaleID string, r *rand.Rand) ([]cdr.Attribute, error) {
	if len(postcodes) == 0 {
		return nil, ErrNoPostcodes
	}
	if len(ageWeights) == 0 {
		return nil, fmt.Errorf("generator: no age weights")
	}
	cumulative := make([]float64, len(ageWeights))
	var sum float64
	for i, w := range ageWeights {
		if w < 0 {
			return nil, fmt.Errorf("%w: age weight %d is %v", ErrProbability, i, w)
		}
		sum += w
		cumulative[i] = sum
	}
	if sum <= 0 {
		return nil, fmt.Errorf("generator: age weights sum to zero")
	}

	nodes := g.Nodes()
	out := make([]cdr.Attribute, len(nodes))
	for i, n := range nodes {
		out[i].Number = n
	}
	for i := range out {
		out[i].Postcode = postcodes[r.IntN(len(postcodes))]
	}
	genders := [2]string{femaleID, maleID}
	for i := range out {
		out[i].Gender = genders[r.IntN(2)]
	}
	for i := range out {
		out[i].Age = MinAge + weightedIndex(r, cumulative)
	}
	return out, nil
}

// MakeData generates a complete dataset. See Params for the knobs; postcodes
// and ageWeights come from Postcodes and PopulationWeights.
func MakeData(postcodes []string, ageWeights []float64, p Params) (*Dataset, error) {
	r := NewRand(p.Seed)

	g, err := CallerNetwork(p.Nodes, p.Edges, r)
	if err != nil {
		return nil, err
	}
	calls, err := DateCallers(g, p.Days, p.CallsPerDay, p.StartDate, r)
	if err != nil {
		return nil, err
	}
	calls = CallData(calls, p.Call, r)
	calls, err = Reciprocate(calls, p.Reciprocity, p.Call, r)
	if err != nil {
		return nil, err
	}
	attrs, err := Attributes(g, postcodes, ageWeights, p.MaleID, p.FemaleID, r)
	if err != nil {
		return nil, err
	}
	return &Dataset{Graph: g, Calls: calls, Attributes: attrs}, nil
}

// InsertMissing returns a copy of attrs with values removed. For each column
// with a non-zero probability p exactly int(p*n) distinct rows are blanked.
// The input is not modified.
func InsertMissing(attrs []cdr.Attribute, m Missingness, r *rand.Rand) ([]cdr.Attribute, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := make([]cdr.Attribute, len(attrs))
	copy(out, attrs)
	n := len(out)

	if m.Postcode != 0 {
		for _, i := range sampleIndices(r, n, int(m.Postcode*float64(n))) {
			out[i].Postcode = ""
		}
	}
	if m.Age != 0 {
		for _, i := range sampleIndices(r, n, int(m.Age*float64(n))) {
			out[i].Age = cdr.MissingAge
		}
	}
	if m.Gender != 0 {
		for _, i := range sampleIndices(r, n, int(m.Gender*float64(n))) {
			out[i].Gender = ""
		}
	}
	return out, nil
}
