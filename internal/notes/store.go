// Package notes persists notes in SQLite.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned for ids that match no note.
var ErrNotFound = errors.New("note not found")

// DefaultTitle is used for notes created without one.
const DefaultTitle = "Untitled"

// timeLayout is fixed-width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Note is one stored note. Content is Markdown.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Pinned    bool      `json:"pinned"`
}

// Patch changes the non-nil fields of a note.
type Patch struct {
	Title   *string
	Content *string
}

// Store handles SQLite operations for notes.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    pinned INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at DESC);
`)
	return err
}

// Create inserts a new note. A blank title becomes DefaultTitle.
func (s *Store) Create(ctx context.Context, title, content string) (*Note, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (title, content, created_at, updated_at, pinned)
		VALUES (?, ?, ?, ?, 0)
	`, title, content, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &Note{ID: id, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

// Get retrieves a note by id.
func (s *Store) Get(ctx context.Context, id int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at, pinned
		FROM notes WHERE id = ?
	`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query note: %w", err)
	}
	return n, nil
}

// List returns all notes, pinned first, then most recently updated.
func (s *Store) List(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at, pinned
		FROM notes
		ORDER BY pinned DESC, updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// Update applies p to the note and bumps its update time.
func (s *Store) Update(ctx context.Context, id int64, p Patch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.Title != nil {
		title := *p.Title
		if strings.TrimSpace(title) == "" {
			title = DefaultTitle
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(s.now()), id)

	res, err := s.db.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return affected(res, id)
}

// UpdateNote is Update under the name the editor's Store interface uses.
func (s *Store) UpdateNote(ctx context.Context, id int64, p Patch) error {
	return s.Update(ctx, id, p)
}

// Delete removes a note.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return affected(res, id)
}

// TogglePin flips the pinned state of a note.
func (s *Store) TogglePin(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET pinned = 1 - pinned, updated_at = ? WHERE id = ?
	`, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("toggle pin: %w", err)
	}
	return affected(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (*Note, error) {
	var n Note
	var createdAt, updatedAt string
	var pinned int
	if err := sc.Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt, &pinned); err != nil {
		return nil, err
	}
	n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	n.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	n.Pinned = pinned == 1
	return &n, nil
}

func affected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
