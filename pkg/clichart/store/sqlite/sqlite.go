package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
	"github.com/cognicore/clichart/pkg/clichart/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// timeLayout sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// layout holds the chart settings kept as one JSON column.
type layout struct {
	Axes    []store.Axis `json:"axes,omitempty"`
	Colours []string     `json:"colours,omitempty"`
}

// OpenSQLite opens a SQLite chart store with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	// PRAGMA foreign_keys is per connection; cascades need it on every one.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS charts (
	id TEXT PRIMARY KEY,
	title TEXT,
	x_title TEXT,
	x_type TEXT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	layout TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS series (
	chart_id TEXT NOT NULL,
	axis INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	title TEXT,
	PRIMARY KEY(chart_id, axis, idx),
	FOREIGN KEY(chart_id) REFERENCES charts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS points (
	chart_id TEXT NOT NULL,
	axis INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	x REAL NOT NULL,
	y REAL,
	PRIMARY KEY(chart_id, axis, idx, seq),
	FOREIGN KEY(chart_id, axis, idx) REFERENCES series(chart_id, axis, idx) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_charts_created ON charts(created_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveChart inserts a chart, replacing any chart with the same ID
func (s *sqliteStore) SaveChart(ctx context.Context, c store.Chart) (string, error) {
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	layoutJSON, err := json.Marshal(layout{Axes: c.Axes, Colours: c.Colours})
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM charts WHERE id=?`, c.ID); err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO charts (id, title, x_title, x_type, width, height, layout, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, c.ID, c.Title, c.XTitle, c.XType, c.Width, c.Height, string(layoutJSON),
		c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", err
	}

	for _, sr := range c.Series {
		if err := insertSeries(ctx, tx, c.ID, sr); err != nil {
			return "", fmt.Errorf("series %d/%d: %w", sr.Axis, sr.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return c.ID, nil
}

func insertSeries(ctx context.Context, tx *sql.Tx, chartID string, sr store.Series) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO series (chart_id, axis, idx, title) VALUES (?, ?, ?, ?)`,
		chartID, sr.Axis, sr.Index, sr.Title); err != nil {
		return err
	}
	if len(sr.Points) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points (chart_id, axis, idx, seq, x, y) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for seq, p := range sr.Points {
		y := sql.NullFloat64{Float64: p.Y, Valid: !p.Null}
		if _, err := stmt.ExecContext(ctx, chartID, sr.Axis, sr.Index, seq, p.X, y); err != nil {
			return err
		}
	}
	return nil
}

// GetChart retrieves a chart with all of its points
func (s *sqliteStore) GetChart(ctx context.Context, id string) (store.Chart, bool, error) {
	var (
		c          store.Chart
		layoutJSON sql.NullString
		createdAt  string
		title      sql.NullString
		xTitle     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, title, x_title, x_type, width, height, layout, created_at
FROM charts WHERE id = ?;
`, id).Scan(&c.ID, &title, &xTitle, &c.XType, &c.Width, &c.Height, &layoutJSON, &createdAt)
	if err == sql.ErrNoRows {
		return store.Chart{}, false, nil
	}
	if err != nil {
		return store.Chart{}, false, err
	}
	c.Title = title.String
	c.XTitle = xTitle.String

	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return store.Chart{}, false, fmt.Errorf("chart %s: created_at: %w", id, err)
	}

	if layoutJSON.Valid && layoutJSON.String != "" {
		var l layout
		if err := json.Unmarshal([]byte(layoutJSON.String), &l); err != nil {
			return store.Chart{}, false, fmt.Errorf("chart %s: layout: %w", id, err)
		}
		c.Axes, c.Colours = l.Axes, l.Colours
	}

	if c.Series, err = s.loadSeries(ctx, id); err != nil {
		return store.Chart{}, false, err
	}
	return c, true, nil
}

func (s *sqliteStore) loadSeries(ctx context.Context, chartID string) ([]store.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT axis, idx, title FROM series
WHERE chart_id = ?
ORDER BY axis, idx;
`, chartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []store.Series
	for rows.Next() {
		var sr store.Series
		var title sql.NullString
		if err := rows.Scan(&sr.Axis, &sr.Index, &title); err != nil {
			return nil, err
		}
		sr.Title = title.String
		series = append(series, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range series {
		points, err := s.loadPoints(ctx, chartID, series[i].Axis, series[i].Index)
		if err != nil {
			return nil, err
		}
		series[i].Points = points
	}
	return series, nil
}

func (s *sqliteStore) loadPoints(ctx context.Context, chartID string, axis, idx int) ([]store.Point, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT x, y FROM points
WHERE chart_id = ? AND axis = ? AND idx = ?
ORDER BY seq;
`, chartID, axis, idx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []store.Point
	for rows.Next() {
		var p store.Point
		var y sql.NullFloat64
		if err := rows.Scan(&p.X, &y); err != nil {
			return nil, err
		}
		p.Y, p.Null = y.Float64, !y.Valid
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListCharts returns chart summaries, newest first
func (s *sqliteStore) ListCharts(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.title, c.created_at,
	(SELECT COUNT(*) FROM series s WHERE s.chart_id = c.id),
	(SELECT COUNT(*) FROM points p WHERE p.chart_id = c.id)
FROM charts c
ORDER BY c.created_at DESC, c.id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var sum store.Summary
		var title sql.NullString
		var createdAt string
		if err := rows.Scan(&sum.ID, &title, &createdAt, &sum.SeriesCount, &sum.PointCount); err != nil {
			return nil, err
		}
		sum.Title = title.String
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("chart %s: created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteChart removes a chart with its series and points
func (s *sqliteStore) DeleteChart(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
