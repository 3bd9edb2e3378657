// Package journal keeps a SQLite log of every persisted photo file.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/soocke/photo3d-go/domain/storage"
)

// Schema for the photo_files table. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS photo_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	taken_at INTEGER NOT NULL,
	seq INTEGER NOT NULL DEFAULT 0,
	depth INTEGER NOT NULL,
	name TEXT NOT NULL,
	path TEXT,
	size INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	error TEXT,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_photo_files_session ON photo_files(session_id);
CREATE INDEX IF NOT EXISTS idx_photo_files_recorded ON photo_files(recorded_at);
`

const (
	bufferSize = 256
	batchSize  = 32
)

// Entry is one journal row.
type Entry struct {
	SessionID  string
	TakenAt    time.Time
	Seq        int
	Depth      bool
	Name       string
	Path       string
	Size       int
	DurationUs int64
	Error      string
	RecordedAt time.Time
}

// FromResult converts a writer result into a journal entry.
func FromResult(r storage.Result) Entry {
	e := Entry{
		SessionID:  r.Session.ID.String(),
		TakenAt:    r.Session.Time,
		Seq:        r.Session.Seq,
		Depth:      r.Depth,
		Name:       r.Name,
		Path:       r.Path,
		Size:       r.Size,
		DurationUs: r.Elapsed.Microseconds(),
		RecordedAt: time.Now(),
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return e
}

// Store persists entries asynchronously in batches.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	ch     chan Entry
	done   chan struct{}
	once   sync.Once

	flushEvery time.Duration
}

// Open opens (creating if needed) the journal database at path and starts
// the flush goroutine. Use ":memory:" for an in-process journal.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("journal: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000", "PRAGMA synchronous = NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: schema: %w", err)
	}
	return newStore(db, logger, time.Second), nil
}

func newStore(db *sql.DB, logger *slog.Logger, flushEvery time.Duration) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:         db,
		logger:     logger,
		ch:         make(chan Entry, bufferSize),
		done:       make(chan struct{}),
		flushEvery: flushEvery,
	}
	go s.flushLoop()
	return s
}

// RecordAsync queues e for persistence. Non-blocking; drops when the buffer is full.
func (s *Store) RecordAsync(e Entry) {
	select {
	case s.ch <- e:
	default:
		s.logger.Warn("journal buffer full, entry dropped", "file", e.Name)
	}
}

// Record is a storage.Writer result hook.
func (s *Store) Record(r storage.Result) { s.RecordAsync(FromResult(r)) }

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, taken_at, seq, depth, name, COALESCE(path, ''), size, duration_us, COALESCE(error, ''), recorded_at
		FROM photo_files ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e               Entry
			taken, recorded int64
			depth           int
		)
		if err := rows.Scan(&e.SessionID, &taken, &e.Seq, &depth, &e.Name, &e.Path, &e.Size, &e.DurationUs, &e.Error, &recorded); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.TakenAt = time.Unix(0, taken)
		e.RecordedAt = time.Unix(0, recorded)
		e.Depth = depth != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of recorded entries, optionally only failures.
func (s *Store) Count(ctx context.Context, failedOnly bool) (int, error) {
	q := `SELECT COUNT(*) FROM photo_files`
	if failedOnly {
		q += ` WHERE error IS NOT NULL AND error != ''`
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

// Close drains the buffer, stops the flush goroutine and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		close(s.ch)
		<-s.done
		err = s.db.Close()
	})
	return err
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]Entry, 0, batchSize)
	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []Entry) {
	if len(batch) == 0 {
		return
	}
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("journal: begin tx", "error", err)
		return
	}
	stmt, err := tx.Prepare(`INSERT INTO photo_files (session_id, taken_at, seq, depth, name, path, size, duration_us, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		s.logger.Error("journal: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		depth := 0
		if e.Depth {
			depth = 1
		}
		if _, err := stmt.Exec(e.SessionID, e.TakenAt.UnixNano(), e.Seq, depth, e.Name, nullable(e.Path), e.Size, e.DurationUs, nullable(e.Error), e.RecordedAt.UnixNano()); err != nil {
			s.logger.Error("journal: insert", "error", err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("journal: commit", "error", err)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
