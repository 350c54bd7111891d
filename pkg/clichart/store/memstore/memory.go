package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/clichart/pkg/clichart/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	charts map[string]store.Chart
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{charts: make(map[string]store.Chart)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveChart stores a copy of c.
func (s *Store) SaveChart(ctx context.Context, c store.Chart) (string, error) {
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[c.ID] = copyChart(c)
	return c.ID, nil
}

// GetChart returns a copy of the chart with the given ID.
func (s *Store) GetChart(ctx context.Context, id string) (store.Chart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.charts[id]
	if !ok {
		return store.Chart{}, false, nil
	}
	return copyChart(c), true, nil
}

// ListCharts returns all chart summaries, newest first.
func (s *Store) ListCharts(ctx context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Summary, 0, len(s.charts))
	for _, c := range s.charts {
		out = append(out, c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeleteChart removes the chart with the given ID.
func (s *Store) DeleteChart(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charts[id]; !ok {
		return false, nil
	}
	delete(s.charts, id)
	return true, nil
}

func copyChart(c store.Chart) store.Chart {
	out := c
	out.Axes = nil
	for _, a := range c.Axes {
		a.MinY = copyInt(a.MinY)
		a.MaxY = copyInt(a.MaxY)
		out.Axes = append(out.Axes, a)
	}
	out.Colours = append([]string(nil), c.Colours...)
	out.Series = nil
	for _, sr := range c.Series {
		sr.Points = append([]store.Point(nil), sr.Points...)
		out.Series = append(out.Series, sr)
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
