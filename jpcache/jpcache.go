// Package jpcache stores the Japanese lines extracted from game scripts,
// grouped by script name, in a SQLite database.
package jpcache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the Japanese line cache.
type Store struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

// Open opens the database at dbPath, creating it and bringing its schema up
// to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The CLI is the only writer.
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db, SQ: sq.StatementBuilder}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// migrate applies the embedded NNNN_name.sql files numbered above the
// database's user_version, each in its own transaction.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		num, _, ok := strings.Cut(e.Name(), "_")
		if e.IsDir() || !ok || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return fmt.Errorf("migration %s: bad number: %w", e.Name(), err)
		}
		if n <= version {
			continue
		}
		if err := applyMigration(db, e.Name(), n); err != nil {
			return err
		}
		version = n
	}
	return nil
}

func applyMigration(db *sql.DB, name string, n int) error {
	b, err := migrationsFS.ReadFile(path.Join("migrations", name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(b)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	// PRAGMA takes no bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", n)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit()
}

// AddLines stores lines under script, ignoring blank lines and lines
// already stored for it. It returns the number of new rows.
func (s *Store) AddLines(ctx context.Context, script string, lines []string) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		q := s.SQ.
			Insert("jp_lines").
			Columns("script", "line").
			Values(script, line).
			Suffix("ON CONFLICT(script, line) DO NOTHING")
		sqlStr, args, _ := q.ToSql()
		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("storing line of %s: %w", script, err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Scripts returns the cached script names, sorted.
func (s *Store) Scripts(ctx context.Context) ([]string, error) {
	q := s.SQ.Select("DISTINCT script").From("jp_lines").OrderBy("script")
	sqlStr, args, _ := q.ToSql()
	rows, err := s.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Lines returns the lines of script in the order they were stored.
func (s *Store) Lines(ctx context.Context, script string) ([]string, error) {
	q := s.SQ.Select("line").From("jp_lines").Where(sq.Eq{"script": script}).OrderBy("id")
	sqlStr, args, _ := q.ToSql()
	rows, err := s.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Count returns the number of scripts and lines stored.
func (s *Store) Count(ctx context.Context) (scripts, lines int, err error) {
	q := s.SQ.Select("COUNT(DISTINCT script)", "COUNT(*)").From("jp_lines")
	sqlStr, args, _ := q.ToSql()
	err = s.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&scripts, &lines)
	return
}

// ImportJSON loads a {"script": ["line", ...]} document, the format older
// releases kept the cache in. It returns the number of new rows.
func (s *Store) ImportJSON(ctx context.Context, jsonPath string) (int, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", jsonPath, err)
	}
	var doc map[string][]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", jsonPath, err)
	}

	names := make([]string, 0, len(doc))
	for n := range doc {
		names = append(names, n)
	}
	sort.Strings(names)

	total := 0
	for _, n := range names {
		added, err := s.AddLines(ctx, n, doc[n])
		if err != nil {
			return total, err
		}
		total += added
	}
	return total, nil
}
