// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists manuscript records and builds a full-text
// retrieval index over their Markdown content.
// See docs/ARCHITECTURE § Index.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docpress/pkg/types"
)

const dbFile = "docpress.db"

// Store manages the manuscript index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/docpress.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := cfg.IndexDir + "/" + dbFile
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_path TEXT,
			pdf_path TEXT,
			words INTEGER,
			sha256 TEXT,
			rendered_at TEXT,
			status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bodies (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE REFERENCES documents(id),
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bodies_id ON bodies(id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			document_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='bodies_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE bodies_fts USING fts5(body, content=bodies, content_rowid=rowid)`,
			`CREATE TRIGGER bodies_ai AFTER INSERT ON bodies BEGIN
				INSERT INTO bodies_fts(rowid, body) VALUES (new.rowid, new.body);
			END`,
			`CREATE TRIGGER bodies_ad AFTER DELETE ON bodies BEGIN
				INSERT INTO bodies_fts(bodies_fts, rowid, body) VALUES('delete', old.rowid, old.body);
			END`,
			`CREATE TRIGGER bodies_au AFTER UPDATE ON bodies BEGIN
				INSERT INTO bodies_fts(bodies_fts, rowid, body) VALUES('delete', old.rowid, old.body);
				INSERT INTO bodies_fts(rowid, body) VALUES (new.rowid, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index build run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes the given documents, reading each source file for its
// body text. Unchanged files (by mod time) are skipped for incremental
// rebuilds. On success it refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, docs []types.Document, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		info, err := os.Stat(doc.SourcePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Check whether the source has changed since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE document_id = ?`, doc.ID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", doc.ID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		body, err := os.ReadFile(doc.SourcePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDocument(ctx, doc, string(body), modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d words)\n", doc.ID, doc.WordCount)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d words)\n", doc.ID, doc.WordCount)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Refresh export.yaml after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, doc types.Document, body, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	renderedAt := ""
	if !doc.RenderedAt.IsZero() {
		renderedAt = doc.RenderedAt.Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, pdf_path, words, sha256, rendered_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, source_path=excluded.source_path,
			pdf_path=excluded.pdf_path, words=excluded.words,
			sha256=excluded.sha256, rendered_at=excluded.rendered_at,
			status=excluded.status`,
		doc.ID, doc.Title, doc.SourcePath, doc.PDFPath,
		doc.WordCount, doc.SourceSHA256, renderedAt, string(doc.Status),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	// Upsert body; the insert/update triggers keep the FTS table in sync.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bodies (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET body=excluded.body`, doc.ID, body); err != nil {
		return fmt.Errorf("upserting body: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (document_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		doc.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// Remove deletes a document, its body, and its indexing status. Unknown
// IDs are not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM bodies WHERE id = ?`,
		`DELETE FROM indexing_status WHERE document_id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("removing %s: %w", id, err)
		}
	}
	return tx.Commit()
}
