package blogpodcast

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = sql.ErrNoRows

// SQLiteStore is a DocumentStore backed by a SQLite document index.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets feed tasks read while the host keeps indexing; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    vpath TEXT PRIMARY KEY,
    render_path TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    teaser TEXT NOT NULL DEFAULT '',
    publication_date TEXT NOT NULL DEFAULT '',
    layout TEXT NOT NULL DEFAULT '',
    blogtag TEXT NOT NULL DEFAULT '',
    mtime INTEGER NOT NULL DEFAULT 0,
    extra TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS documents_blogtag ON documents (blogtag);
`)
	return err
}

// SaveDocument upserts a document.
func (s *SQLiteStore) SaveDocument(ctx context.Context, d Document) error {
	var mtime int64
	if !d.ModTime.IsZero() {
		mtime = d.ModTime.UnixNano()
	}
	extra := ""
	if len(d.Metadata.Extra) > 0 {
		b, err := json.Marshal(d.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.VPath, err)
		}
		extra = string(b)
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO documents (vpath, render_path, title, teaser, publication_date, layout, blogtag, mtime, extra) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.VPath, d.RenderPath, d.Metadata.Title, d.Metadata.Teaser, d.Metadata.PublicationDate,
		d.Metadata.Layout, d.Metadata.BlogTag, mtime, extra)
	return err
}

// DeleteDocument removes a document by virtual path.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, vpath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE vpath = ?`, vpath)
	return err
}

// GetDocument returns a single document by virtual path.
func (s *SQLiteStore) GetDocument(ctx context.Context, vpath string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE vpath = ?`, vpath)
	return scanDocument(row)
}

const documentColumns = `vpath, render_path, title, teaser, publication_date, layout, blogtag, mtime, extra`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (Document, error) {
	var d Document
	var mtime int64
	var extra string
	if err := r.Scan(&d.VPath, &d.RenderPath, &d.Metadata.Title, &d.Metadata.Teaser,
		&d.Metadata.PublicationDate, &d.Metadata.Layout, &d.Metadata.BlogTag, &mtime, &extra); err != nil {
		return Document{}, err
	}
	if mtime != 0 {
		d.ModTime = time.Unix(0, mtime).UTC()
	}
	if extra != "" {
		if err := json.Unmarshal([]byte(extra), &d.Metadata.Extra); err != nil {
			return Document{}, fmt.Errorf("decode metadata for %s: %w", d.VPath, err)
		}
	}
	return d, nil
}

// Search narrows candidates in SQL (HTML output, root path prefix, layouts,
// blogtags) and applies the regular expression and glob matchers in Go.
func (s *SQLiteStore) Search(ctx context.Context, sel Selector) ([]Document, error) {
	query, args := searchQuery(sel)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if sel.Match(d) {
			docs = append(docs, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func searchQuery(sel Selector) (string, []any) {
	var where []string
	var args []any
	if sel.RendersToHTML {
		where = append(where, `render_path LIKE '%.html'`)
	}
	if sel.RootPath != "" {
		// LIKE is case-insensitive in SQLite; the exact prefix check is
		// redone by Selector.Match.
		prefix := escapeLike(strings.TrimPrefix(sel.RootPath, "/")) + "%"
		where = append(where, `(render_path LIKE ? ESCAPE '\' OR render_path LIKE ? ESCAPE '\')`)
		args = append(args, prefix, "/"+prefix)
	}
	if len(sel.Layouts) > 0 {
		where = append(where, `layout IN (`+placeholders(len(sel.Layouts))+`)`)
		for _, l := range sel.Layouts {
			args = append(args, l)
		}
	}
	if tags := sel.TagSet(); len(tags) > 0 {
		where = append(where, `blogtag IN (`+placeholders(len(tags))+`)`)
		for _, t := range tags {
			args = append(args, t)
		}
	}
	q := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	return q, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
