// Package database opens the storage connection and applies migrations.
//
// Two drivers are supported behind the same *sql.DB:
//   - SQLite (modernc.org/sqlite, pure Go, no CGO) with the migration runner
//     in this file;
//   - PostgreSQL (pgx stdlib driver) with goose, see postgres.go.
//
// Drivers register themselves on import, hence the blank imports.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/akinalp/shopapi/pkg/logger"
)

// Dialects, used by the repository layer to pick SQL flavour.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// recoverableErrors are migration errors that are safe to skip: re-running a
// half-applied migration hits "duplicate column name" for columns that are
// already there.
var recoverableErrors = []string{
	"duplicate column name",
}

// DB wraps the connection pool. *sql.DB is safe for concurrent use.
type DB struct {
	Conn    *sql.DB
	Dialect string
}

// New opens (creating if needed) the SQLite database at dbPath and applies
// the migrations found in migrationsFS.
//
// Pragmas:
//   - foreign_keys(1): SQLite leaves them off by default;
//   - journal_mode(WAL): readers do not block the writer;
//   - busy_timeout(5000): a writer waits for the lock instead of failing
//     immediately with SQLITE_BUSY when requests insert concurrently.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn, Dialect: DialectSQLite}

	if err := db.runMigrations(context.Background(), migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Get().Named("database").Info("connected and migrations applied",
		zap.String("dialect", db.Dialect),
		zap.String("path", dbPath),
	)
	return db, nil
}

// Ping checks the connection; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.Conn.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations applies the .sql files of migrationsFS in name order
// (001_init.sql, 002_..., ...).
//
// Applied files are recorded in schema_migrations so that non-idempotent
// statements such as ALTER TABLE run only once. Each file and its record are
// written in one transaction.
//
// Bootstrap: when schema_migrations is empty but the users table already
// exists (a database created before tracking), every file is marked applied
// without running it.
func (db *DB) runMigrations(ctx context.Context, migrationsFS fs.FS) error {
	log := logger.Get().Named("database")

	if _, err := db.Conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		var tableCount int
		if err := db.Conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'",
		).Scan(&tableCount); err != nil {
			return fmt.Errorf("failed to check existing tables: %w", err)
		}

		if tableCount > 0 {
			for _, file := range sqlFiles {
				if _, err := db.Conn.ExecContext(ctx,
					"INSERT INTO schema_migrations (filename) VALUES (?)", file,
				); err != nil {
					return fmt.Errorf("failed to bootstrap migration %s: %w", file, err)
				}
			}
			log.Info("bootstrapped existing migrations", zap.Int("count", len(sqlFiles)))
			return nil
		}
	}

	for _, file := range sqlFiles {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			if err := execStatements(ctx, tx, file, string(content)); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (filename) VALUES (?)", file,
			); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("migration applied", zap.String("file", file))
	}

	return nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.Conn.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration rows: %w", err)
	}

	return applied, nil
}

// execStatements runs a migration file one statement at a time so that
// recoverable errors can be skipped individually.
func execStatements(ctx context.Context, q TxQuerier, filename, content string) error {
	for i, stmt := range splitStatements(content) {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			errMsg := err.Error()
			recoverable := false
			for _, pattern := range recoverableErrors {
				if strings.Contains(errMsg, pattern) {
					recoverable = true
					break
				}
			}

			if recoverable {
				logger.Get().Named("database").Warn("migration statement skipped",
					zap.String("file", filename),
					zap.Int("statement", i+1),
					zap.String("reason", errMsg),
				)
				continue
			}

			return fmt.Errorf("failed to execute migration %s (statement %d): %w", filename, i+1, err)
		}
	}

	return nil
}

// splitStatements splits SQL text on semicolons, ignoring those inside
// single-quoted literals ('' is an escaped quote). Line comments are kept;
// SQLite accepts them inside a statement.
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if ch == '\'' {
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				current.WriteByte(ch)
				current.WriteByte(sql[i+1])
				i++
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			if s := strings.TrimSpace(current.String()); s != "" && !onlyComments(s) {
				statements = append(statements, s)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if s := strings.TrimSpace(current.String()); s != "" && !onlyComments(s) {
		statements = append(statements, s)
	}

	return statements
}

// onlyComments reports whether every non-blank line of s is a "--" comment.
func onlyComments(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
