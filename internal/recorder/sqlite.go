package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"CoinSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists signals, alerts and fetch failures to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the dashboard can read history while the cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			asset_id    TEXT NOT NULL,
			price       REAL,
			change_24h  REAL,
			label       TEXT,
			confidence  REAL,
			rsi         REAL,
			macd        REAL,
			sma20       REAL,
			buy_score   REAL,
			sell_score  REAL,
			warmup      INTEGER,
			rationale   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_asset_ts ON signal_snapshots(asset_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			asset_id   TEXT NOT NULL,
			kind       TEXT,
			price      REAL,
			change_24h REAL,
			target     REAL,
			direction  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ts ON alert_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			attempts  INTEGER,
			error     TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

func (r *SQLiteRecorder) RecordSignal(rec *SignalRecord) error {
	if rec == nil || rec.Signal == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sig := rec.Signal
	_, err := r.db.Exec(`INSERT INTO signal_snapshots
		(timestamp, asset_id, price, change_24h, label, confidence, rsi, macd, sma20,
		 buy_score, sell_score, warmup, rationale)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		stamp(rec.At), rec.AssetID, rec.Price, rec.Change24h,
		string(sig.Label), sig.Confidence, sig.RSI, sig.MACD, sig.SMA20,
		sig.BuyScore, sig.SellScore, sig.Warmup, sig.Rationale,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(a *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alert_events
		(timestamp, asset_id, kind, price, change_24h, target, direction)
		VALUES (?,?,?,?,?,?,?)`,
		stamp(a.At), a.AssetID, string(a.Kind), a.Price, a.Change24h, a.Target, string(a.Direction),
	)
	return err
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_failures (timestamp, source, attempts, error) VALUES (?,?,?,?)`,
		stamp(evt.At), evt.Source, evt.Attempts, evt.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecentSignals(assetID string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, price, change_24h, label, confidence, rsi, macd, sma20,
		buy_score, sell_score, warmup, rationale
		FROM signal_snapshots WHERE asset_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var (
			ts    int64
			label string
			rec   = SignalRecord{AssetID: assetID, Signal: &model.SignalResult{}}
		)
		sig := rec.Signal
		if err := rows.Scan(&ts, &rec.Price, &rec.Change24h, &label, &sig.Confidence,
			&sig.RSI, &sig.MACD, &sig.SMA20, &sig.BuyScore, &sig.SellScore,
			&sig.Warmup, &sig.Rationale); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Label = model.SignalLabel(label)
		rec.At = time.UnixMilli(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
