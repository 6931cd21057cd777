package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pagesync/internal/page"
)

// SQLiteStore implements Repository over the pure-Go modernc.org/sqlite
// driver, grounded on the teacher's eventstore.SQLiteStore: sql.Open at
// construction, a schema-on-init statement, and a mutex guarding the
// connection the same way the teacher guards its events table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the page table at dbPath. Use ":memory:"
// for an ephemeral store in tests.
func NewSQLiteStore(dbPath string, maxConnections int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if maxConnections > 0 {
		db.SetMaxOpenConns(maxConnections)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		filename TEXT PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		name TEXT,
		html_content TEXT NOT NULL,
		md_content TEXT NOT NULL,
		md_content_hash TEXT NOT NULL,
		tags TEXT,
		modified_datetime TEXT,
		created_datetime TEXT
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_pages_identifier ON pages(identifier);
	`
	_, err := s.db.Exec(schema)
	return err
}

const timestampLayout = time.RFC3339

// Save performs an UPSERT on filename, grounded on the original
// ON CONFLICT(filename) DO UPDATE shape described in original_source's
// database/sqlite.rs.
func (s *SQLiteStore) Save(ctx context.Context, p page.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := p.ToStoredRow()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (filename, identifier, name, html_content, md_content, md_content_hash, tags, modified_datetime, created_datetime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			identifier = excluded.identifier,
			name = excluded.name,
			html_content = excluded.html_content,
			md_content = excluded.md_content,
			md_content_hash = excluded.md_content_hash,
			tags = excluded.tags,
			modified_datetime = excluded.modified_datetime,
			created_datetime = excluded.created_datetime
	`,
		row.Filename, row.Identifier, row.Name, row.HTMLContent, row.MDContent, row.MDContentHash,
		row.Tags, formatTimestamp(row.ModifiedDatetime), formatTimestamp(row.CreatedDatetime))
	if err != nil {
		return fmt.Errorf("save page %s: %w", row.Filename, err)
	}
	return nil
}

// Delete removes the row for filename. Deleting an absent filename is not
// an error.
func (s *SQLiteStore) Delete(ctx context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE filename = ?", filename)
	if err != nil {
		return fmt.Errorf("delete page %s: %w", filename, err)
	}
	return nil
}

// GetByIdentifier returns the page bound to identifier, or ErrNotFound.
func (s *SQLiteStore) GetByIdentifier(ctx context.Context, identifier string) (page.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE identifier = ?", identifier)
	return scanPage(row)
}

// GetByFilename returns the page stored for filename, or ErrNotFound.
func (s *SQLiteStore) GetByFilename(ctx context.Context, filename string) (page.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE filename = ?", filename)
	return scanPage(row)
}

// GetAll returns every persisted page. Order is not guaranteed.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]page.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectColumns)
	if err != nil {
		return nil, fmt.Errorf("query all pages: %w", err)
	}
	defer rows.Close()

	var out []page.Page
	for rows.Next() {
		p, err := scanPageRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

const selectColumns = `SELECT filename, identifier, name, html_content, md_content, md_content_hash, tags, modified_datetime, created_datetime FROM pages`

// rowScanner abstracts *sql.Row and *sql.Rows, both of which expose Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (page.Page, error) {
	return scanInto(row)
}

func scanPageRows(rows *sql.Rows) (page.Page, error) {
	return scanInto(rows)
}

func scanInto(row rowScanner) (page.Page, error) {
	var stored page.StoredRow
	var modified, created sql.NullString
	err := row.Scan(&stored.Filename, &stored.Identifier, &stored.Name, &stored.HTMLContent,
		&stored.MDContent, &stored.MDContentHash, &stored.Tags, &modified, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return page.Page{}, ErrNotFound
	}
	if err != nil {
		return page.Page{}, fmt.Errorf("scan page row: %w", err)
	}
	stored.ModifiedDatetime = parseTimestamp(modified)
	stored.CreatedDatetime = parseTimestamp(created)
	return page.FromStoredRow(stored)
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(timestampLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
