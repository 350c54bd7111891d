package store

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDSortable(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestSummarize(t *testing.T) {
	c := Chart{
		ID:    "abc",
		Title: "Load",
		Series: []Series{
			{Index: 0, Points: []Point{{X: 1, Y: 2}, {X: 2, Null: true}}},
			{Axis: 1, Index: 0, Points: []Point{{X: 1, Y: 5}}},
		},
	}
	sum := c.Summarize()
	assert.Equal(t, "abc", sum.ID)
	assert.Equal(t, "Load", sum.Title)
	assert.Equal(t, 2, sum.SeriesCount)
	assert.Equal(t, 3, sum.PointCount)
}
