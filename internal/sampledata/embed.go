// Package sampledata embeds the default attribute sources shipped inside the
// cdrhelper binary: a population-by-age table and a postcode list. Both are
// synthetic.
package sampledata

import (
	"bytes"
	_ "embed"
	"io"
)

// PopulationCSV is an age,both,male,female table for ages 0 to 105.
//
//go:embed population.csv
var PopulationCSV []byte

// PostcodesCSV has a "Postal Code" column.
//
//go:embed postcodes.csv
var PostcodesCSV []byte

// Population returns a reader over the embedded population table.
func Population() io.Reader {
	return bytes.NewReader(PopulationCSV)
}

// Postcodes returns a reader over the embedded postcode list.
func Postcodes() io.Reader {
	return bytes.NewReader(PostcodesCSV)
}
