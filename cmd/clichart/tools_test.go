package main

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clichart/pkg/clichart"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
	"github.com/cognicore/clichart/pkg/clichart/server"
	"github.com/cognicore/clichart/pkg/clichart/session"
	"github.com/cognicore/clichart/pkg/clichart/store"
)

func TestHistogramFromStdin(t *testing.T) {
	out, _, err := execute(t, "1\n2\n2\n3\n4\n", "histogram", "-l", "0", "-i", "3", "-p", "--header")
	require.NoError(t, err)
	assert.Equal(t, "Interval_Start Interval_End Count Percent\n1 2 1 20.000\n2 3 2 40.000\n3 4 2 40.000\n", out)
}

func TestHistogramRequiresColumn(t *testing.T) {
	_, stderr, err := execute(t, "1\n", "histogram", "-i", "3")
	require.ErrorIs(t, err, internalerr.ErrInvalidOptions)
	assert.Contains(t, stderr, "Column number is required")
	assert.Contains(t, stderr, "histogram [flags]")
}

func TestLineStatsFromFile(t *testing.T) {
	in := writeFile(t, "access.log", "GET /a 10\nGET /b 30\nPOST /a 5\nGET /a 20\n")
	out, _, err := execute(t, "", "linestats", "-c", "-s", "-k", "f:1", "-v", "f:2", "-l", "k,k:cnt,0:tot", in)
	require.NoError(t, err)
	assert.Equal(t, "/a, 3, 35\n/b, 1, 30\n", out)
}

func TestLineStatsBadSpec(t *testing.T) {
	_, _, err := execute(t, "a\n", "linestats", "-k", "z:1")
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)

	_, _, err = execute(t, "a\n", "linestats", "-m", "(")
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
}

func TestDiscreteStatsCountsPerKey(t *testing.T) {
	in := "10:01 WARN a\n10:01 INFO b\n10:02 WARN c\n10:01 WARN d\n"
	out, _, err := execute(t, in, "discretestats", "-c", "-k", "f:0", "-v", "f:1")
	require.NoError(t, err)
	assert.Equal(t, "Key, INFO, WARN\n10:01, 1, 2\n10:02, 0, 1\n", out)

	_, _, err = execute(t, in, "discretestats", "-k", "f:0")
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
}

func TestAggregateOneRowPerFile(t *testing.T) {
	a := writeFile(t, "a.csv", "x,1\nx,3\n")
	b := writeFile(t, "b.csv", "x,10\n")
	out, _, err := execute(t, "", "aggregate", "-c", "-l", "1:tot,1:cnt", "-p", "day", a, b)
	require.NoError(t, err)
	assert.Equal(t, "day, 4, 2\nday, 10, 1\n", out)
}

func TestAggregateReportsNoData(t *testing.T) {
	_, stderr, err := execute(t, "", "aggregate", "-l", "0:min")
	require.ErrorIs(t, err, internalerr.ErrInvalidData)
	assert.Contains(t, stderr, "Invalid data: No data found")

	out, _, err := execute(t, "", "aggregate", "-s", "-l", "0:min")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAggregateMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "aggregate", "-l", "0:min", filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
}

func TestRemoteGeneratesOnServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := server.New(server.Config{
		NewGenerator: func() session.ChartGenerator { return clichart.NewGenerator(clichart.Config{}) },
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()
	defer func() {
		cancel()
		assert.NoError(t, <-errc)
	}()

	in := writeFile(t, "in.txt", "1 5\n2 7\n")
	outPath := filepath.Join(t.TempDir(), "chart.json")
	_, _, err = execute(t, "", "remote", ln.Addr().String(),
		"inputpath="+in, "outputpath="+outPath, "v", "title=Remote", "bar=false")
	require.NoError(t, err)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var c store.Chart
	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, "Remote", c.Title)
	require.Len(t, c.Series, 1)
	assert.Len(t, c.Series[0].Points, 2)

	_, stderr, err := execute(t, "", "remote", ln.Addr().String(), "title=No input")
	require.ErrorIs(t, err, internalerr.ErrInvalidOptions)
	assert.Contains(t, stderr, "Input file path is required")
}
