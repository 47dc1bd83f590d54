package generator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// DefaultPostcodeHeader names the postcode column of a postcode file.
	DefaultPostcodeHeader = "Postal Code"
	// DefaultPostcodeBegin and DefaultPostcodeEnd bound generated postcodes.
	DefaultPostcodeBegin = 1000
	DefaultPostcodeEnd   = 5000
	// DefaultAgeMax is the exclusive upper bound of generated ages.
	DefaultAgeMax = 106
	// MinAge is the youngest age assigned to a subscriber.
	MinAge = 18
)

// ErrNoPostcodes is returned when a postcode source yields nothing to draw from.
var ErrNoPostcodes = errors.New("generator: no postcodes available")

// Postcodes returns the location identifiers subscribers are drawn from.
// With a nil reader it generates the integers [begin, end). Otherwise it
// reads the column named header from a comma separated file with a header
// row.
func Postcodes(r io.Reader, header string, begin, end int) ([]string, error) {
	if r == nil {
		if end <= begin {
			return nil, fmt.Errorf("%w: range [%d, %d)", ErrNoPostcodes, begin, end)
		}
		out := make([]string, 0, end-begin)
		for p := begin; p < end; p++ {
			out = append(out, strconv.Itoa(p))
		}
		return out, nil
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	names, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read postcode header: %w", err)
	}
	col := -1
	for i, n := range names {
		if strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")) == header {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("postcode column %q not found", header)
	}

	var out []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read postcodes: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if p := strings.TrimSpace(rec[col]); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoPostcodes
	}
	return out, nil
}

// PopulationWeights returns the probability of each age from MinAge upward.
// The reader holds an age,both,male,female table with a header row; row i
// (counting from zero after the header) describes age i. Weights come from
// the "both" column of rows MinAge onward and sum to one. With a nil reader
// every age in [MinAge, ageMax) is equally likely.
func PopulationWeights(r io.Reader, ageMax int) ([]float64, error) {
	var counts []float64
	if r == nil {
		for age := MinAge; age < ageMax; age++ {
			counts = append(counts, 100)
		}
	} else {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("read population header: %w", err)
		}
		row := 0
		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read population: %w", err)
			}
			if row >= MinAge {
				if len(rec) < 2 {
					return nil, fmt.Errorf("population row %d: missing column both", row+2)
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
				if err != nil {
					return nil, fmt.Errorf("population row %d: %w", row+2, err)
				}
				counts = append(counts, v)
			}
			row++
		}
	}

	var total float64
	for _, c := range counts {
		total += c
	}
	if len(counts) == 0 || total <= 0 {
		return nil, errors.New("generator: population has no weight at or above the minimum age")
	}
	weights := make([]float64, len(counts))
	for i, c := range counts {
		weights[i] = c / total
	}
	return weights, nil
}
