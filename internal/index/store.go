// Package index maintains a SQLite index of the declarations in a DRL
// project: rules, functions, globals and imports with their source ranges.
//
// The index is rebuilt from descriptor trees with Build and kept current
// file by file with ReplaceFile and RemoveFile. Schema changes are applied
// with embedded goose migrations.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/drl/pkg/descr"
)

// Document is the input for indexing one file.
type Document struct {
	Path       string
	Package    *descr.PackageDescr
	ErrorCount int
}

// BuildInfo describes one full rebuild of the index.
type BuildInfo struct {
	ID          string    `json:"id" yaml:"id"`
	Root        string    `json:"root" yaml:"root"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FileCount   int       `json:"file_count" yaml:"file_count"`
	SymbolCount int       `json:"symbol_count" yaml:"symbol_count"`
	ErrorCount  int       `json:"error_count" yaml:"error_count"`
}

// Query filters symbols. Zero fields match everything. Name may contain
// "*" wildcards.
type Query struct {
	Name    string
	Kind    SymbolKind
	Package string
	File    string
	Limit   int
}

// Store is the SQLite-backed symbol index.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a store. A nil logger discards output.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// newStoreWithDB wraps an existing connection. Used by tests.
func newStoreWithDB(db *sql.DB) *Store {
	s := NewStore(nil)
	s.db = db
	return s
}

// Open opens the database at path. Use ":memory:" for an in-memory
// database.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// Build replaces the whole index with docs and records the build.
func (s *Store) Build(ctx context.Context, root string, docs []Document) (*BuildInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	info := &BuildInfo{
		ID:        generateID(),
		Root:      root,
		StartedAt: time.Now().UTC(),
		FileCount: len(docs),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols`); err != nil {
		return nil, fmt.Errorf("failed to clear symbols: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return nil, fmt.Errorf("failed to clear files: %w", err)
	}

	for _, doc := range docs {
		n, err := insertDocument(ctx, tx, info.ID, info.StartedAt, doc)
		if err != nil {
			return nil, err
		}
		info.SymbolCount += n
		info.ErrorCount += doc.ErrorCount
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO builds (id, root, started_at, file_count, symbol_count, error_count) VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.Root, info.StartedAt.UnixMilli(), info.FileCount, info.SymbolCount, info.ErrorCount,
	); err != nil {
		return nil, fmt.Errorf("failed to record build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit build: %w", err)
	}

	s.logger.Debug("index built", "build", info.ID, "files", info.FileCount, "symbols", info.SymbolCount)
	return info, nil
}

// ReplaceFile re-indexes a single file under the latest build.
func (s *Store) ReplaceFile(ctx context.Context, doc Document) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var buildID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM builds ORDER BY started_at DESC LIMIT 1`).Scan(&buildID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("index has not been built")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest build: %w", err)
	}

	if err := deleteFile(ctx, tx, doc.Path); err != nil {
		return 0, err
	}
	n, err := insertDocument(ctx, tx, buildID, time.Now().UTC(), doc)
	if err != nil {
		return 0, err
	}
	if err := refreshTotals(ctx, tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit file: %w", err)
	}
	return n, nil
}

// RemoveFile drops a file and its symbols from the index.
func (s *Store) RemoveFile(ctx context.Context, path string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFile(ctx, tx, path); err != nil {
		return err
	}
	if err := refreshTotals(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}
	return nil
}

// refreshTotals recounts files, symbols and errors into the latest build so
// that LastBuild reflects incremental updates.
func refreshTotals(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE builds SET
			file_count = (SELECT COUNT(*) FROM files),
			symbol_count = (SELECT COUNT(*) FROM symbols),
			error_count = (SELECT COALESCE(SUM(error_count), 0) FROM files)
		WHERE id = (SELECT id FROM builds ORDER BY started_at DESC LIMIT 1)`,
	); err != nil {
		return fmt.Errorf("failed to update build totals: %w", err)
	}
	return nil
}

func deleteFile(ctx context.Context, tx *sql.Tx, path string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete symbols of %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, buildID string, at time.Time, doc Document) (int, error) {
	pkgName := ""
	if doc.Package != nil {
		pkgName = doc.Package.Name
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, package, build_id, error_count, indexed_at) VALUES (?, ?, ?, ?, ?)`,
		doc.Path, pkgName, buildID, doc.ErrorCount, at.UnixMilli(),
	); err != nil {
		return 0, fmt.Errorf("failed to insert file %s: %w", doc.Path, err)
	}

	symbols := Symbols(doc.Path, doc.Package)
	if len(symbols) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (file_path, kind, name, package, detail,
			start_line, start_column, end_line, end_column, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare symbol insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sym := range symbols {
		start, end := sym.Span.Start, sym.Span.End
		if _, err := stmt.ExecContext(ctx,
			sym.File, string(sym.Kind), sym.Name, sym.Package, sym.Detail,
			start.Line, start.Column, end.Line, end.Column, start.Offset, end.Offset,
		); err != nil {
			return 0, fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}
	}
	return len(symbols), nil
}

// Query returns the symbols matching q, ordered by file and position.
func (s *Store) Query(ctx context.Context, q Query) ([]Symbol, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var where []string
	var args []any
	if q.Name != "" {
		if strings.Contains(q.Name, "*") {
			where = append(where, `name LIKE ? ESCAPE '\'`)
			args = append(args, likePattern(q.Name))
		} else {
			where = append(where, `name = ?`)
			args = append(args, q.Name)
		}
	}
	if q.Kind != "" {
		where = append(where, `kind = ?`)
		args = append(args, string(q.Kind))
	}
	if q.Package != "" {
		where = append(where, `package = ?`)
		args = append(args, q.Package)
	}
	if q.File != "" {
		where = append(where, `file_path = ?`)
		args = append(args, q.File)
	}

	query := `SELECT kind, name, package, detail, file_path,
		start_line, start_column, end_line, end_column, start_offset, end_offset
		FROM symbols`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY file_path, start_offset"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Symbol
	for rows.Next() {
		var sym Symbol
		var kind string
		start, end := &sym.Span.Start, &sym.Span.End
		if err := rows.Scan(&kind, &sym.Name, &sym.Package, &sym.Detail, &sym.File,
			&start.Line, &start.Column, &end.Line, &end.Column, &start.Offset, &end.Offset); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		sym.Kind = SymbolKind(kind)
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}
	return out, nil
}

// likePattern turns a "*" wildcard pattern into a LIKE pattern.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`)
	return r.Replace(s)
}

// LastBuild returns the most recent build, or nil if the index was never
// built.
func (s *Store) LastBuild(ctx context.Context) (*BuildInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var info BuildInfo
	var startedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root, started_at, file_count, symbol_count, error_count FROM builds ORDER BY started_at DESC LIMIT 1`,
	).Scan(&info.ID, &info.Root, &startedAt, &info.FileCount, &info.SymbolCount, &info.ErrorCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last build: %w", err)
	}
	info.StartedAt = time.UnixMilli(startedAt).UTC()
	return &info, nil
}
