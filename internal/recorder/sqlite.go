package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"PriceSweep/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
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

	// WAL mode for better concurrent read performance (inspection queries
	// while a run writes).
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
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			output      TEXT,
			total       INTEGER,
			accepted    INTEGER,
			rejected    INTEGER,
			low_price   REAL,
			high_price  REAL,
			window_size INTEGER,
			threshold   REAL,
			reference   TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS rejections (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    INTEGER NOT NULL REFERENCES runs(id),
			date      TEXT,
			price     REAL,
			reference REAL,
			deviation REAL,
			position  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_run ON rejections(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run summary and every rejection it produced.
func (r *SQLiteRecorder) RecordRun(summary *model.Summary, rejections []model.Rejection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`INSERT INTO runs
		(timestamp, source, output, total, accepted, rejected,
		 low_price, high_price, window_size, threshold, reference, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		summary.StartedAt.Unix(), summary.Source, summary.Output,
		summary.Total, summary.Accepted, summary.Rejected,
		summary.LowPrice, summary.HighPrice,
		summary.WindowSize, summary.Threshold, summary.Reference,
		summary.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, rej := range rejections {
		_, err := r.db.Exec(`INSERT INTO rejections
			(run_id, date, price, reference, deviation, position)
			VALUES (?,?,?,?,?,?)`,
			runID, rej.Record.Date.Format("2006-01-02"), rej.Record.Price,
			rej.Reference, rej.Deviation, rej.Position,
		)
		if err != nil {
			return fmt.Errorf("insert rejection at position %d: %w", rej.Position, err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
