// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/docpress/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Status filters by DocumentStatus.
	Status types.DocumentStatus

	// DocumentID filters by document.
	DocumentID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.DocumentID == ""
}

// QueryResult is a document record with a search snippet.
type QueryResult struct {
	ID         string  `json:"id" yaml:"id"`
	Title      string  `json:"title" yaml:"title"`
	SourcePath string  `json:"source_path" yaml:"source_path"`
	Words      int     `json:"words" yaml:"words"`
	Status     string  `json:"status" yaml:"status"`
	Snippet    string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Rank       float64 `json:"-" yaml:"-"`
}

// Retrieve queries the index with optional full-text search and structured
// filters. Results are ranked by relevance for full-text queries or sorted
// by document ID otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT d.id, d.title, d.source_path, d.words, d.status,
				snippet(bodies_fts, 0, '[', ']', '...', 12), bodies_fts.rank
			FROM bodies_fts
			JOIN bodies b ON b.rowid = bodies_fts.rowid
			JOIN documents d ON d.id = b.id
			WHERE bodies_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT d.id, d.title, d.source_path, d.words, d.status,
				'', 0 AS rank
			FROM documents d
			WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND d.status = ?`)
		args = append(args, string(opts.Status))
	}

	if opts.DocumentID != "" {
		qb.WriteString(` AND d.id = ?`)
		args = append(args, opts.DocumentID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY bodies_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr      QueryResult
			snippet sql.NullString
		)
		if err := rows.Scan(
			&qr.ID, &qr.Title, &qr.SourcePath, &qr.Words, &qr.Status,
			&snippet, &qr.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if snippet.Valid {
			qr.Snippet = snippet.String
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// Trace returns the body of the named section from a document's source
// Markdown. It reads from the indexed source path.
func (s *Store) Trace(ctx context.Context, id, heading string) (string, error) {
	var sourcePath string
	err := s.db.QueryRowContext(ctx,
		`SELECT source_path FROM documents WHERE id = ?`, id,
	).Scan(&sourcePath)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("document %s not found", id)
		}
		return "", fmt.Errorf("looking up document: %w", err)
	}

	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	section := extractSectionContext(string(content), heading)
	if section == "" {
		return "", fmt.Errorf("section %q not found in %s", heading, id)
	}
	return section, nil
}

// extractSectionContext finds the named heading in Markdown and returns
// its body text up to the next heading of any level.
func extractSectionContext(content, target string) string {
	lines := strings.Split(content, "\n")
	var capturing bool
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			if strings.EqualFold(heading, target) {
				capturing = true
				continue
			} else if capturing {
				break
			}
		}

		if capturing {
			result = append(result, line)
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
