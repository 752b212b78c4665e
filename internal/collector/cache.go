package collector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"BreakoutScanner/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// BarCache stores fetched daily ranges in a local SQLite database.
type BarCache struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
}

// NewBarCache opens (or creates) the cache database and runs migrations.
// A zero ttl keeps cached ranges forever.
func NewBarCache(dbPath string, ttl time.Duration) (*BarCache, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &BarCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *BarCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cached_ranges (
			symbol     TEXT    NOT NULL,
			start_ts   INTEGER NOT NULL,
			end_ts     INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, start_ts, end_ts)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol  TEXT    NOT NULL,
			date_ts INTEGER NOT NULL,
			open    REAL,
			high    REAL,
			low     REAL,
			close   REAL    NOT NULL,
			volume  INTEGER NOT NULL,
			PRIMARY KEY (symbol, date_ts)
		)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get returns the cached bars for the exact range. ok is false on a miss or
// when the range is older than the ttl.
func (c *BarCache) Get(ctx context.Context, symbol string, start, end time.Time) (bars []model.DailyBar, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	err = c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM cached_ranges WHERE symbol = ? AND start_ts = ? AND end_ts = ?`,
		symbol, start.Unix(), end.Unix(),
	).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup range: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT date_ts, open, high, low, close, volume FROM daily_bars
		 WHERE symbol = ? AND date_ts >= ? AND date_ts < ? ORDER BY date_ts`,
		symbol, start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	bars = []model.DailyBar{}
	for rows.Next() {
		var ts int64
		var b model.DailyBar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, false, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, true, nil
}

// Put stores bars and marks the range as fetched.
func (c *BarCache) Put(ctx context.Context, symbol string, start, end time.Time, bars []model.DailyBar) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, b := range bars {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO daily_bars
			(symbol, date_ts, open, high, low, close, volume) VALUES (?,?,?,?,?,?,?)`,
			symbol, b.Date.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO cached_ranges
		(symbol, start_ts, end_ts, fetched_at) VALUES (?,?,?,?)`,
		symbol, start.Unix(), end.Unix(), c.now().Unix(),
	); err != nil {
		return fmt.Errorf("insert range: %w", err)
	}
	return tx.Commit()
}

func (c *BarCache) Close() error {
	return c.db.Close()
}

// CachedFetcher serves ranges from a BarCache and falls back to the
// wrapped Fetcher on a miss. Cache failures are logged, never fatal.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   *BarCache
	Log     zerolog.Logger
}

// NewCachedFetcher wraps f with cache.
func NewCachedFetcher(f Fetcher, cache *BarCache, log zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Cache: cache, Log: log.With().Str("component", "bar_cache").Logger()}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *CachedFetcher) FetchDailyRange(ctx context.Context, symbol string, start, end time.Time) ([]model.DailyBar, error) {
	bars, ok, err := c.Cache.Get(ctx, symbol, start, end)
	if err != nil {
		c.Log.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
	} else if ok {
		c.Log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("cache hit")
		return bars, nil
	}

	bars, err = c.Fetcher.FetchDailyRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(ctx, symbol, start, end, bars); err != nil {
		c.Log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
	return bars, nil
}
