// Package store holds one run's records in an in-memory DuckDB database and
// evaluates the run's aggregate queries against them.
//
// The storage engine stays behind this narrow surface (CreateSchema, Insert,
// Run) so that nothing outside the package depends on DuckDB specifics.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"accesstop/internal/extract"
	"accesstop/internal/query"
)

// Store wraps the database connection for one run. The scheduler owns the
// Store exclusively; it is never written from more than one goroutine.
type Store struct {
	db         *sql.DB
	fields     []string
	insertStmt *sql.Stmt
}

// Open creates a fresh in-memory database. Nothing persists across runs.
func Open() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection and any prepared statements.
func (s *Store) Close() error {
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}

// CreateSchema creates the log table with one column per field, in field
// order, plus an index per column. The prepared insert uses the same order,
// which keeps columns and placeholders aligned by construction.
func (s *Store) CreateSchema(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("store: schema needs at least one field")
	}

	cols := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f+" "+columnType(f))
		placeholders = append(placeholders, "?")
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", query.Table, strings.Join(cols, ", "))
	if _, err := s.db.Exec(createStmt); err != nil {
		return fmt.Errorf("store: %q: %w", createStmt, err)
	}

	for i, f := range fields {
		indexStmt := fmt.Sprintf("CREATE INDEX %s_idx%d ON %s (%s)", query.Table, i, query.Table, f)
		if _, err := s.db.Exec(indexStmt); err != nil {
			return fmt.Errorf("store: %q: %w", indexStmt, err)
		}
	}

	insertStmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		query.Table, strings.Join(fields, ", "), strings.Join(placeholders, ", "))
	stmt, err := s.db.Prepare(insertStmt)
	if err != nil {
		return fmt.Errorf("store: %q: %w", insertStmt, err)
	}

	s.fields = fields
	s.insertStmt = stmt
	return nil
}

// Insert stores the given records, one row each, inside a single
// transaction.
func (s *Store) Insert(records []extract.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin insert: %w", err)
	}
	stmt := tx.Stmt(s.insertStmt)
	for _, rec := range records {
		if _, err := stmt.Exec(rec...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit insert: %w", err)
	}
	return nil
}

// Result is one query's outcome: the column names in selection order and the
// rows as driver-typed values (nil, int64, float64, string or []byte).
type Result struct {
	Columns []string
	Rows    [][]any
}

// Run evaluates one query and materializes its full result set.
func (s *Store) Run(q string) (*Result, error) {
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("store: %q: %w", q, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("store: %q: %w", q, err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("store: %q: %w", q, err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %q: %w", q, err)
	}
	return res, nil
}

// columnType picks the DuckDB column type for a field. The numeric derived
// fields are integers; every raw capture is text.
func columnType(field string) string {
	switch field {
	case extract.FieldStatusType, extract.FieldBytesSent:
		return "BIGINT"
	default:
		return "VARCHAR"
	}
}
