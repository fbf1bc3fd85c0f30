package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "1,2,3", want: []int{1, 2, 3}},
		{in: " 5 , 10 ", want: []int{5, 10}},
		{in: "7", want: []int{7}},
		{in: "", wantErr: true},
		{in: "1,x", wantErr: true},
		{in: "1,-2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseIntList(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestParseSeparator(t *testing.T) {
	sep, err := parseSeparator(",")
	require.NoError(t, err)
	require.Equal(t, ',', sep)

	sep, err = parseSeparator("tab")
	require.NoError(t, err)
	require.Equal(t, '\t', sep)

	_, err = parseSeparator("")
	require.Error(t, err)

	_, err = parseSeparator(",,")
	require.Error(t, err)
}

func TestParseSample(t *testing.T) {
	n, err := parseSample("all")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = parseSample("500")
	require.NoError(t, err)
	require.Equal(t, 500, n)

	_, err = parseSample("0")
	require.Error(t, err)

	_, err = parseSample("some")
	require.Error(t, err)
}

func TestBuildRun(t *testing.T) {
	valid := config{
		q:           2,
		hashType:    "dh",
		numHash:     "opt",
		bfLen:       1000,
		myPath:      "a.csv",
		otPath:      "b.csv",
		sep:         ",",
		attrs:       "1,2",
		segPercents: "100,50",
		sample:      "all",
		seed:        42,
	}

	r, err := buildRun(valid)
	require.NoError(t, err)
	require.Equal(t, []int{100, 50}, r.segPercents)
	require.Equal(t, []int{1, 2}, r.loadOpts.AttrCols)

	for name, mutate := range map[string]func(*config){
		"missing my":      func(c *config) { c.myPath = "" },
		"bad scheme":      func(c *config) { c.hashType = "sha" },
		"bad hash count":  func(c *config) { c.numHash = "none" },
		"short filter":    func(c *config) { c.bfLen = 1 },
		"no attrs":        func(c *config) { c.attrs = "" },
		"percent too big": func(c *config) { c.segPercents = "100,150" },
		"bad sample":      func(c *config) { c.sample = "-3" },
	} {
		c := valid
		mutate(&c)
		_, err := buildRun(c)
		require.Error(t, err, name)
	}
}
