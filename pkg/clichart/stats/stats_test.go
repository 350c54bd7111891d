package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/clichart/pkg/clichart/store"
)

func TestAccumulatorIgnoresNulls(t *testing.T) {
	var acc Accumulator
	for _, p := range []store.Point{{Y: 4}, {Null: true}, {Y: -2}, {Y: 10}} {
		acc.Add(p)
	}

	got := acc.Snapshot()
	assert.InDelta(t, math.Sqrt(24), got.StdDev, 1e-9)
	got.StdDev = 0
	assert.Equal(t, Stats{Count: 3, Nulls: 1, Min: -2, Max: 10, Mean: 4, Total: 12, First: 4, Last: 10}, got)
}

func TestEmptyAccumulator(t *testing.T) {
	var acc Accumulator
	acc.Add(store.Point{Null: true})
	assert.Equal(t, Stats{Nulls: 1}, acc.Snapshot())
}

func TestStdDevOfConstantIsZero(t *testing.T) {
	var acc Accumulator
	for i := 0; i < 5; i++ {
		acc.AddValue(3.25)
	}
	s := acc.Snapshot()
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 3.25, s.Mean)
}

func TestForChart(t *testing.T) {
	c := &store.Chart{Series: []store.Series{
		{Axis: 0, Index: 0, Title: "cpu", Points: []store.Point{{X: 1, Y: 0.5}, {X: 2, Y: 1.5}}},
		{Axis: 1, Index: 0, Title: "threads", Points: []store.Point{{X: 1, Y: 7}}},
	}}

	got := ForChart(c)
	assert.Equal(t, []Stats{
		{Axis: 0, Title: "cpu", Count: 2, Min: 0.5, Max: 1.5, Mean: 1, Total: 2, First: 0.5, Last: 1.5, StdDev: 0.5},
		{Axis: 1, Title: "threads", Count: 1, Min: 7, Max: 7, Mean: 7, Total: 7, First: 7, Last: 7},
	}, got)
}
