package dataset

import (
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Basic(t *testing.T) {
	path := writeFile(t, "people.csv",
		"id,first,last\n"+
			"r1,Peter,Miller\n"+
			"r2,ANNA , Smith\n"+
			"r3,peter,miller\n")

	ds, err := Load(Options{
		Path:     path,
		Sep:      ',',
		Header:   true,
		RecIDCol: 0,
		AttrCols: []int{1, 2},
		Q:        2,
	}, discardLogger())
	require.NoError(t, err)

	require.Equal(t, "first;last", ds.Attrs)
	require.Equal(t, 3, ds.Records)

	// r1 and r3 normalize to the same value.
	require.Len(t, ds.ValueQGrams, 2)
	require.Contains(t, ds.ValueQGrams, "peter miller")
	require.Contains(t, ds.ValueQGrams, "anna smith")

	// Normalization joins fields with a single space; q-grams span the join.
	require.True(t, ds.ValueQGrams["peter miller"].Contains("r "))
	require.True(t, ds.ValueQGrams["peter miller"].Contains(" m"))

	// Reverse index points back at the containing values.
	require.Contains(t, ds.QGramValues["pe"], "peter miller")
	require.NotContains(t, ds.QGramValues["pe"], "anna smith")

	require.Greater(t, ds.AvgQGrams, 0.0)
	require.Greater(t, ds.ValueEntropy, 0.0)
	require.Equal(t, 0, ds.Skipped)
}

func TestLoad_SkipsValuesShorterThanQ(t *testing.T) {
	path := writeFile(t, "short.csv",
		"ab\n"+
			"x\n"+ // shorter than q, skipped
			"cd\n")

	ds, err := Load(Options{
		Path:     path,
		Sep:      ',',
		AttrCols: []int{0},
		Q:        2,
	}, discardLogger())
	require.NoError(t, err)

	require.Len(t, ds.ValueQGrams, 2)
	require.Equal(t, 1, ds.Skipped)
	require.NotContains(t, ds.ValueQGrams, "x")
}

func TestLoad_AllValuesTooShort(t *testing.T) {
	path := writeFile(t, "tiny.csv", "a\nb\n")

	_, err := Load(Options{Path: path, Sep: ',', AttrCols: []int{0}, Q: 3}, discardLogger())
	require.Error(t, err)
}

func TestLoad_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("peter\nanna\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ds, err := Load(Options{Path: path, Sep: ',', AttrCols: []int{0}, Q: 2}, discardLogger())
	require.NoError(t, err)

	require.Equal(t, "people", ds.Name)
	require.Len(t, ds.ValueQGrams, 2)
}

func TestLoad_BadConfig(t *testing.T) {
	path := writeFile(t, "x.csv", "a,b\n")

	_, err := Load(Options{Path: path, Sep: ',', AttrCols: []int{0}, Q: 0}, discardLogger())
	require.Error(t, err, "non-positive q must fail")

	_, err = Load(Options{Path: path, Sep: ',', Q: 2}, discardLogger())
	require.Error(t, err, "no attribute columns must fail")

	_, err = Load(Options{Path: path, Sep: ',', AttrCols: []int{5}, Q: 2}, discardLogger())
	require.Error(t, err, "attribute column beyond row width must fail")
}

func TestComputeOverlap(t *testing.T) {
	dir := t.TempDir()
	myPath := filepath.Join(dir, "my.csv")
	otPath := filepath.Join(dir, "ot.csv")
	require.NoError(t, os.WriteFile(myPath, []byte("peter\nanna\n"), 0o644))
	require.NoError(t, os.WriteFile(otPath, []byte("peter\nmarie\n"), 0o644))

	opts := Options{Sep: ',', AttrCols: []int{0}, Q: 2}

	my := mustLoad(t, opts, myPath)
	ot := mustLoad(t, opts, otPath)

	ov := ComputeOverlap(my, ot)
	require.Equal(t, 2, ov.MyValues)
	require.Equal(t, 2, ov.OtValues)
	require.Equal(t, 1, ov.CommonValues)
	require.InDelta(t, 1.0/3.0, ov.Jaccard, 1e-9)
	require.Equal(t, ov.MyQGrams+ov.OtQGrams-ov.CommonQGrams, ov.AllQGrams)
}

func TestMergeQGramValues(t *testing.T) {
	dir := t.TempDir()
	myPath := filepath.Join(dir, "my.csv")
	otPath := filepath.Join(dir, "ot.csv")
	require.NoError(t, os.WriteFile(myPath, []byte("anna\n"), 0o644))
	require.NoError(t, os.WriteFile(otPath, []byte("annika\n"), 0o644))

	opts := Options{Sep: ',', AttrCols: []int{0}, Q: 2}
	my := mustLoad(t, opts, myPath)
	ot := mustLoad(t, opts, otPath)

	merged := MergeQGramValues(my, ot)

	// "an" occurs in both values; "ik" only in the other dataset's value.
	require.Contains(t, merged["an"], "anna")
	require.Contains(t, merged["an"], "annika")
	require.Contains(t, merged["ik"], "annika")
	require.NotContains(t, merged["ik"], "anna")

	// The merge must not alias the source maps.
	merged["an"]["intruder"] = struct{}{}
	require.NotContains(t, my.QGramValues["an"], "intruder")
}

func mustLoad(t *testing.T, opts Options, path string) *Dataset {
	t.Helper()
	opts.Path = path
	ds, err := Load(opts, discardLogger())
	require.NoError(t, err)
	return ds
}
