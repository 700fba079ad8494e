package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/sizer"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SQLite implements Store on an embedded SQLite file, one row per
// snapshot key, latest write wins.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the snapshot database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	return err
}

func (s *SQLite) get(ctx context.Context, key string, v any) error {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *SQLite) SaveBook(ctx context.Context, key string, b *book.Book) error {
	return s.put(ctx, key, b)
}

func (s *SQLite) LoadBook(ctx context.Context, key string) (*book.Book, error) {
	var b book.Book
	if err := s.get(ctx, key, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLite) SaveSizer(ctx context.Context, in sizer.Inputs) error {
	return s.put(ctx, sizerKey, in)
}

func (s *SQLite) LoadSizer(ctx context.Context) (sizer.Inputs, error) {
	var in sizer.Inputs
	if err := s.get(ctx, sizerKey, &in); err != nil {
		return sizer.Inputs{}, err
	}
	return in, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
