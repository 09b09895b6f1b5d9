// Package replhistory persists REPL input/output pairs and GC-cycle
// summaries to a local sqlite database, so a REPL session's `:history`
// command can list earlier lines. Grounded on the teacher
// pack's own use of `database/sql` + the pure-Go `modernc.org/sqlite`
// driver (internal/evaluator/builtins_sql.go in the mcgru-funxy revision),
// which is the reason the teacher's go.mod carries that dependency at all.
package replhistory

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a sqlite-backed session log.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("replhistory: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("replhistory: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	gc_cycles INTEGER NOT NULL,
	gc_bytes_live INTEGER NOT NULL
);
`

// Entry is one recorded REPL turn.
type Entry struct {
	ID          int64
	RunID       string
	RecordedAt  time.Time
	Input       string
	Output      string
	GCCycles    int
	GCBytesLive int
}

// Append records one input/output turn tagged with runID, alongside the
// VM's GC stats at that point (spec.md §4.3's Stats, surfaced for
// `:history`/`:gc` reporting).
func (s *Store) Append(runID, input, output string, gcCycles, gcBytesLive int) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (run_id, recorded_at, input, output, gc_cycles, gc_bytes_live) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().Unix(), input, output, gcCycles, gcBytesLive,
	)
	return err
}

// Recent returns the last n entries across all runs, oldest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, recorded_at, input, output, gc_cycles, gc_bytes_live
		 FROM entries ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var recordedAt int64
		if err := rows.Scan(&e.ID, &e.RunID, &recordedAt, &e.Input, &e.Output, &e.GCCycles, &e.GCBytesLive); err != nil {
			return nil, err
		}
		e.RecordedAt = time.Unix(recordedAt, 0)
		out = append(out, e)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

// Search returns entries whose input contains substr (a simple LIKE
// search). The REPL has no command that calls it; `:history` only lists
// Recent entries.
func (s *Store) Search(substr string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, recorded_at, input, output, gc_cycles, gc_bytes_live
		 FROM entries WHERE input LIKE ? ORDER BY id ASC`, "%"+substr+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var recordedAt int64
		if err := rows.Scan(&e.ID, &e.RunID, &recordedAt, &e.Input, &e.Output, &e.GCCycles, &e.GCBytesLive); err != nil {
			return nil, err
		}
		e.RecordedAt = time.Unix(recordedAt, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
