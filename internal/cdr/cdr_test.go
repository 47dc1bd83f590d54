package cdr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCalls() []CallRecord {
	return []CallRecord{
		{Date: "20130101", ANum: 3, BNum: 1, Calls: 2, Minutes: 4.5, SMS: 20, MMS: 9},
		{Date: "20130101", ANum: 1, BNum: 3, Calls: 5, Minutes: 12.1, SMS: 24, MMS: 11},
		{Date: "20130102", ANum: 3, BNum: 1, Calls: 1, Minutes: 0.7, SMS: 30, MMS: 8},
		{Date: "20130402", ANum: 2, BNum: 5, Calls: 6, Minutes: 8, SMS: 25, MMS: 10},
	}
}

func TestWriteCalls_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCalls(&buf, sampleCalls()[:2]))

	assert.Equal(t,
		"20130101;3;1;2;4.5;20;9\n20130101;1;3;5;12.1;24;11\n",
		buf.String())
}

func TestWriteCalls_WholeMinutes(t *testing.T) {
	var buf bytes.Buffer
	calls := []CallRecord{
		{Date: "20130402", ANum: 2, BNum: 5, Calls: 6, Minutes: 8, SMS: 25, MMS: 10},
		{Date: "20130402", ANum: 5, BNum: 2, Calls: 1, Minutes: 0, SMS: 0, MMS: 0},
	}
	require.NoError(t, WriteCalls(&buf, calls))
	assert.Equal(t, "20130402;2;5;6;8.0;25;10\n20130402;5;2;1;0.0;0;0\n", buf.String())

	back, err := ReadCalls(&buf)
	require.NoError(t, err)
	assert.Equal(t, calls, back)
}

func TestWriteAttributes_MissingValues(t *testing.T) {
	attrs := []Attribute{
		{Number: 1, Postcode: "1234", Gender: "F", Age: 33},
		{Number: 2, Gender: "M"},
		{Number: 3, Postcode: "4000", Age: 70},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAttributes(&buf, attrs))

	assert.Equal(t, "1;1234;F;33\n2; ;M; \n3;4000; ;70\n", buf.String())
}

func TestCallsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	calls := sampleCalls()
	require.NoError(t, WriteCalls(&buf, calls))

	got, err := ReadCalls(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(calls, got); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAttributesRoundTrip(t *testing.T) {
	attrs := []Attribute{
		{Number: 1, Postcode: "1234", Gender: "F", Age: 33},
		{Number: 2, Gender: "M"},
		{Number: 3, Postcode: "4000", Age: 70},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAttributes(&buf, attrs))

	got, err := ReadAttributes(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(attrs, got); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAttributes_FloatAge(t *testing.T) {
	got, err := ReadAttributes(strings.NewReader("7;2000;F;41.0\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 41, got[0].Age)
}

func TestReadCalls_Malformed(t *testing.T) {
	_, err := ReadCalls(strings.NewReader("20130101;1;2;x;1;2;3\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))

	_, err = ReadCalls(strings.NewReader("20130101;1;2\n"))
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestWriteCalls_RejectsSeparatorInField(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAttributes(&buf, []Attribute{{Number: 1, Postcode: "12;34"}})
	assert.Error(t, err)
}

func TestAggregateCalls(t *testing.T) {
	agg := AggregateCalls(sampleCalls())

	want := []AggregatedCall{
		{ANum: 1, BNum: 3, SCalls: 5, SMinutes: 12.1, SSMS: 24, SMMS: 11},
		{ANum: 2, BNum: 5, SCalls: 6, SMinutes: 8, SSMS: 25, SMMS: 10},
		{ANum: 3, BNum: 1, SCalls: 3, SMinutes: 5.2, SSMS: 50, SMMS: 17},
	}
	require.Len(t, agg, len(want))
	for i := range want {
		assert.Equal(t, want[i].ANum, agg[i].ANum)
		assert.Equal(t, want[i].BNum, agg[i].BNum)
		assert.Equal(t, want[i].SCalls, agg[i].SCalls)
		assert.InDelta(t, want[i].SMinutes, agg[i].SMinutes, 1e-9)
		assert.Equal(t, want[i].SSMS, agg[i].SSMS)
		assert.Equal(t, want[i].SMMS, agg[i].SMMS)
	}
}

func TestQuarter(t *testing.T) {
	cases := map[string]string{
		"20130101": "2013Q1",
		"20130331": "2013Q1",
		"20130401": "2013Q2",
		"20131231": "2013Q4",
	}
	for date, want := range cases {
		got, err := Quarter(date)
		require.NoError(t, err)
		assert.Equal(t, want, got, date)
	}

	_, err := Quarter("2013-01-01")
	assert.Error(t, err)
}

func TestSplitByQuarter(t *testing.T) {
	parts, err := SplitByQuarter(sampleCalls())
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "2013Q1", parts[0].Quarter)
	assert.Len(t, parts[0].Calls, 3)
	assert.Equal(t, "2013Q2", parts[1].Quarter)
	assert.Len(t, parts[1].Calls, 1)
}

func TestAgeCategory(t *testing.T) {
	assert.Equal(t, 0, AgeCategory(18))
	assert.Equal(t, 20, AgeCategory(20))
	assert.Equal(t, 20, AgeCategory(29))
	assert.Equal(t, 50, AgeCategory(59))
	assert.Equal(t, 60, AgeCategory(60))
	assert.Equal(t, 60, AgeCategory(105))
	assert.Equal(t, AnyCategory, AgeCategory(MissingAge))
}

func subsetAttrs() []Attribute {
	return []Attribute{
		{Number: 1, Gender: "M", Age: 19},
		{Number: 2, Gender: "F", Age: 25},
		{Number: 3, Gender: "M", Age: 27},
		{Number: 4, Gender: "F", Age: 64},
		{Number: 5, Age: 33},
		{Number: 6, Gender: "M"},
	}
}

func TestSelectSubscribers(t *testing.T) {
	attrs := subsetAttrs()

	got, err := SelectSubscribers(attrs, 20, AnyCategory, "M", "F")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got)

	got, err = SelectSubscribers(attrs, AnyCategory, Male, "M", "F")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 6}, got)

	got, err = SelectSubscribers(attrs, 20, Female, "M", "F")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got)

	got, err = SelectSubscribers(attrs, AnyCategory, AnyCategory, "M", "F")
	require.NoError(t, err)
	assert.Len(t, got, len(attrs))

	_, err = SelectSubscribers(attrs, 45, Male, "M", "F")
	assert.Error(t, err)
	_, err = SelectSubscribers(attrs, 20, 3, "M", "F")
	assert.Error(t, err)
}

func TestAgeSexSubsets(t *testing.T) {
	subsets := AgeSexSubsets(subsetAttrs(), "M", "F")
	require.Len(t, subsets, 21)

	assert.Len(t, subsets[6], 6, "index 6 holds everyone")
	assert.Equal(t, []int64{1, 3, 6}, subsets[13], "index 13 holds all males")
	assert.Equal(t, []int64{2, 4}, subsets[20], "index 20 holds all females")
	assert.Equal(t, []int64{1}, subsets[7], "males under 20")
	assert.Equal(t, []int64{4}, subsets[19], "females 60 and over")
}
