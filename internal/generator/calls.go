package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/dusk-indust/cdrhelper/internal/cdr"
	"github.com/dusk-indust/cdrhelper/internal/graph"
)

var (
	// ErrSampleTooLarge is returned when a day needs more distinct callers
	// than the network has edges.
	ErrSampleTooLarge = errors.New("generator: sample larger than population")
	// ErrProbability is returned for a probability outside [0, 1].
	ErrProbability = errors.New("generator: probability must be within [0, 1]")
)

// CallParams are the distribution parameters of per-record traffic.
type CallParams struct {
	MeanCalls    float64 `json:"meanCalls" yaml:"meanCalls"`       // Poisson mean of calls per record
	CallDuration float64 `json:"callDuration" yaml:"callDuration"` // log-logistic shape of one call's minutes
	MeanSMS      float64 `json:"meanSms" yaml:"meanSms"`
	MeanMMS      float64 `json:"meanMms" yaml:"meanMms"`
}

// DefaultCallParams returns the traffic parameters used when none are given.
func DefaultCallParams() CallParams {
	return CallParams{
		MeanCalls:    5,
		CallDuration: 1.15,
		MeanSMS:      25,
		MeanMMS:      10,
	}
}

func checkProbability(name string, p float64) error {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return fmt.Errorf("%w: %s=%v", ErrProbability, name, p)
	}
	return nil
}

// DateCallers assigns network edges to days. For each of days consecutive
// dates from start it draws E ~ Poisson(callsPerDay), samples E distinct
// edges and orients each one at random. Only Date, ANum and BNum are set.
func DateCallers(g *graph.Network, days int, callsPerDay float64, start string, r *rand.Rand) ([]cdr.CallRecord, error) {
	first, err := cdr.ParseDate(start)
	if err != nil {
		return nil, err
	}
	edges := g.Edges()

	var out []cdr.CallRecord
	for d := 0; d < days; d++ {
		e := poisson(r, callsPerDay)
		if e > len(edges) {
			return nil, fmt.Errorf("%w: day %d needs %d edges, network has %d",
				ErrSampleTooLarge, d, e, len(edges))
		}
		date := cdr.FormatDate(first.AddDate(0, 0, d))
		for _, i := range sampleIndices(r, len(edges), e) {
			a, b := edges[i].From, edges[i].To
			if r.IntN(2) == 1 {
				a, b = b, a
			}
			out = append(out, cdr.CallRecord{Date: date, ANum: a, BNum: b})
		}
	}
	return out, nil
}

// CallData returns a copy of records with fresh traffic: calls ~
// Poisson(MeanCalls), minutes the sum of one log-logistic draw per call
// rounded to one decimal, SMS ~ Poisson(MeanSMS) and MMS ~ Poisson(MeanMMS).
func CallData(records []cdr.CallRecord, p CallParams, r *rand.Rand) []cdr.CallRecord {
	out := make([]cdr.CallRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Calls = poisson(r, p.MeanCalls)
	}
	for i := range out {
		var minutes float64
		for c := 0; c < out[i].Calls; c++ {
			minutes += logLogistic(r, p.CallDuration)
		}
		out[i].Minutes = math.Round(minutes*10) / 10
	}
	for i := range out {
		out[i].SMS = poisson(r, p.MeanSMS)
	}
	for i := range out {
		out[i].MMS = poisson(r, p.MeanMMS)
	}
	return out
}

// Reciprocate answers a share of each day's records. For every date it picks
// int(rProb*n) of that day's n records without replacement, swaps caller and
// recipient, draws new traffic for the answers with p, and returns the
// originals plus answers ordered by date then caller.
func Reciprocate(records []cdr.CallRecord, rProb float64, p CallParams, r *rand.Rand) ([]cdr.CallRecord, error) {
	if err := checkProbability("reciprocity", rProb); err != nil {
		return nil, err
	}

	var dates []string
	byDate := make(map[string][]int)
	for i, rec := range records {
		if _, ok := byDate[rec.Date]; !ok {
			dates = append(dates, rec.Date)
		}
		byDate[rec.Date] = append(byDate[rec.Date], i)
	}

	var answers []cdr.CallRecord
	for _, d := range dates {
		day := byDate[d]
		k := int(rProb * float64(len(day)))
		for _, j := range sampleIndices(r, len(day), k) {
			orig := records[day[j]]
			answers = append(answers, cdr.CallRecord{Date: orig.Date, ANum: orig.BNum, BNum: orig.ANum})
		}
	}
	answers = CallData(answers, p, r)

	out := make([]cdr.CallRecord, 0, len(records)+len(answers))
	out = append(out, records...)
	out = append(out, answers...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ANum < out[j].ANum
	})
	return out, nil
}
