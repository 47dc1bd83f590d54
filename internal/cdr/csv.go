package cdr

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Separator is the field delimiter of exported tables.
const Separator = ';'

// missingField is written in place of a missing value.
const missingField = " "

// ErrMalformedRow is returned when an imported row has the wrong shape.
var ErrMalformedRow = errors.New("cdr: malformed row")

// rowWriter writes separator-joined rows. encoding/csv quotes fields with
// leading whitespace, which would turn the single-space missing marker into
// a quoted string.
type rowWriter struct {
	bw  *bufio.Writer
	err error
}

func newWriter(w io.Writer) *rowWriter {
	return &rowWriter{bw: bufio.NewWriter(w)}
}

func (rw *rowWriter) Write(row []string) error {
	if rw.err != nil {
		return rw.err
	}
	for i, f := range row {
		if strings.ContainsAny(f, string(Separator)+"\n") {
			rw.err = fmt.Errorf("field %q contains a separator", f)
			return rw.err
		}
		if i > 0 {
			rw.bw.WriteByte(Separator)
		}
		rw.bw.WriteString(f)
	}
	_, rw.err = rw.bw.WriteString("\n")
	return rw.err
}

func (rw *rowWriter) Flush() {
	if rw.err == nil {
		rw.err = rw.bw.Flush()
	}
}

func (rw *rowWriter) Error() error {
	return rw.err
}

func newReader(r io.Reader, fields int) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = fields
	cr.ReuseRecord = true
	return cr
}

// WriteCalls writes call records without a header row. Columns are
// date, A_num, B_num, calls, min, sms, mms.
func WriteCalls(w io.Writer, calls []CallRecord) error {
	cw := newWriter(w)
	row := make([]string, 7)
	for _, c := range calls {
		row[0] = c.Date
		row[1] = strconv.FormatInt(c.ANum, 10)
		row[2] = strconv.FormatInt(c.BNum, 10)
		row[3] = strconv.Itoa(c.Calls)
		row[4] = formatMinutes(c.Minutes)
		row[5] = strconv.Itoa(c.SMS)
		row[6] = strconv.Itoa(c.MMS)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write call row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAttributes writes attribute rows without a header row. Columns are
// A_num, postcode, gender, age; missing values are written as a single space.
func WriteAttributes(w io.Writer, attrs []Attribute) error {
	cw := newWriter(w)
	row := make([]string, 4)
	for _, a := range attrs {
		row[0] = strconv.FormatInt(a.Number, 10)
		row[1] = orMissing(a.Postcode)
		row[2] = orMissing(a.Gender)
		row[3] = missingField
		if a.HasAge() {
			row[3] = strconv.Itoa(a.Age)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write attribute row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatMinutes writes whole numbers with a trailing ".0" so the column
// reads back as floating point.
func formatMinutes(m float64) string {
	s := strconv.FormatFloat(m, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

func orMissing(s string) string {
	if s == "" {
		return missingField
	}
	return s
}

// ReadCalls parses a table written by WriteCalls.
func ReadCalls(r io.Reader) ([]CallRecord, error) {
	cr := newReader(r, 7)
	var out []CallRecord
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		rec, err := parseCallRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		out = append(out, rec)
	}
}

func parseCallRow(row []string) (CallRecord, error) {
	var (
		rec CallRecord
		err error
	)
	rec.Date = strings.TrimSpace(row[0])
	if _, err = ParseDate(rec.Date); err != nil {
		return rec, err
	}
	if rec.ANum, err = parseInt64(row[1]); err != nil {
		return rec, err
	}
	if rec.BNum, err = parseInt64(row[2]); err != nil {
		return rec, err
	}
	if rec.Calls, err = strconv.Atoi(strings.TrimSpace(row[3])); err != nil {
		return rec, err
	}
	if rec.Minutes, err = strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err != nil {
		return rec, err
	}
	if rec.SMS, err = strconv.Atoi(strings.TrimSpace(row[5])); err != nil {
		return rec, err
	}
	if rec.MMS, err = strconv.Atoi(strings.TrimSpace(row[6])); err != nil {
		return rec, err
	}
	return rec, nil
}

// ReadAttributes parses a table written by WriteAttributes. Blank fields are
// read back as missing values.
func ReadAttributes(r io.Reader) ([]Attribute, error) {
	cr := newReader(r, 4)
	var out []Attribute
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		num, err := parseInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		a := Attribute{
			Number:   num,
			Postcode: strings.TrimSpace(row[1]),
			Gender:   strings.TrimSpace(row[2]),
		}
		if age := strings.TrimSpace(row[3]); age != "" {
			// Ages exported from float columns may carry a fraction.
			f, err := strconv.ParseFloat(age, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
			}
			a.Age = int(f + 0.5)
		}
		out = append(out, a)
	}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
