// Package cdr holds the call-detail-record tables produced by the generator
// and consumed by the analysis tools: call events, subscriber attributes and
// their aggregates.
package cdr

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk date format for call records.
const DateLayout = "20060102"

// MissingAge marks an attribute row whose age is unknown.
const MissingAge = 0

// CallRecord is one row of the call table: the traffic between caller A and
// recipient B on a single day.
type CallRecord struct {
	Date    string  `json:"date"` // YYYYMMDD
	ANum    int64   `json:"aNum"`
	BNum    int64   `json:"bNum"`
	Calls   int     `json:"calls"`
	Minutes float64 `json:"min"`
	SMS     int     `json:"sms"`
	MMS     int     `json:"mms"`
}

// Attribute is one row of the subscriber attribute table. Empty strings and
// MissingAge denote missing values.
type Attribute struct {
	Number   int64  `json:"aNum"`
	Postcode string `json:"postcode,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Age      int    `json:"age,omitempty"`
}

// HasAge reports whether the age column is populated.
func (a Attribute) HasAge() bool {
	return a.Age != MissingAge
}

// AggregatedCall sums every CallRecord between an ordered (A, B) pair.
type AggregatedCall struct {
	ANum     int64   `json:"aNum"`
	BNum     int64   `json:"bNum"`
	SCalls   int     `json:"scalls"`
	SMinutes float64 `json:"smin"`
	SSMS     int     `json:"ssms"`
	SMMS     int     `json:"smms"`
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYYMMDD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
