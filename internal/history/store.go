// Package history stores saved reflections in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no reflection has the requested id.
var ErrNotFound = errors.New("reflection not found")

const schema = `
CREATE TABLE IF NOT EXISTS reflections (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	mode        TEXT NOT NULL,
	topic       TEXT NOT NULL,
	excerpt     TEXT NOT NULL,
	mood_score  INTEGER NOT NULL,
	label       TEXT NOT NULL,
	result_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS reflections_created_at ON reflections(created_at DESC);
`

// Entry is one saved reflection.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Mode      journal.InputMode
	Topic     string
	Excerpt   string
	MoodScore int
	Label     string
	Result    *journal.AnalysisResult
}

// Store is a SQLite-backed reflection history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the schema if needed.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores e. A blank ID or zero CreatedAt is filled in; the stored
// entry is returned.
func (s *Store) Save(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(e.Result)
	if err != nil {
		return e, fmt.Errorf("encoding result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reflections (id, created_at, mode, topic, excerpt, mood_score, label, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic = excluded.topic,
			excerpt = excluded.excerpt,
			mood_score = excluded.mood_score,
			label = excluded.label,
			result_json = excluded.result_json`,
		e.ID, e.CreatedAt.UnixMilli(), e.Mode.String(), e.Topic, e.Excerpt, e.MoodScore, e.Label, string(raw),
	)
	if err != nil {
		return e, fmt.Errorf("saving reflection: %w", err)
	}
	return e, nil
}

// List returns up to limit reflections, newest first. A limit of zero or
// less returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, created_at, mode, topic, excerpt, mood_score, label, result_json
		FROM reflections ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reflections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the reflection with id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, mode, topic, excerpt, mood_score, label, result_json
		FROM reflections WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// Delete removes the reflection with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reflections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reflection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		created int64
		mode    string
		raw     string
	)
	if err := sc.Scan(&e.ID, &created, &mode, &e.Topic, &e.Excerpt, &e.MoodScore, &e.Label, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning reflection: %w", err)
	}
	e.CreatedAt = time.UnixMilli(created)
	e.Mode, _ = journal.ParseInputMode(mode)

	var res journal.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return e, fmt.Errorf("decoding stored result %s: %w", e.ID, err)
	}
	e.Result = &res
	return e, nil
}

// NewEntry describes a finished analysis for storage.
func NewEntry(req journal.AnalysisRequest, excerpt string, vm journal.ViewModel, res *journal.AnalysisResult) Entry {
	mode := journal.ModeText
	if req.Attachment != nil {
		mode = req.Attachment.Mode
	}
	return Entry{
		Mode:      mode,
		Topic:     req.Topic,
		Excerpt:   excerpt,
		MoodScore: vm.MoodScore,
		Label:     vm.DominantLabel,
		Result:    res,
	}
}
