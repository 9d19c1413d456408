package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"path"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/quizdrill/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the SQLite handle behind the sqlite storage backend.
type DB struct {
	*sql.DB
}

// pragmas are passed to go-sqlite3 through the DSN query string.
var pragmas = url.Values{
	"_busy_timeout": {"5000"},
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
}

func dsn(file string) string {
	return file + "?" + pragmas.Encode()
}

// Open opens the stats and session database at file and brings its schema up
// to date. The pool holds one connection: the trainer has a single writer.
func Open(file string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	sqlDB, err := sql.Open("sqlite3", dsn(file))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", file, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(context.Background(), sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("storage database %s ready", file)
	return &DB{DB: sqlDB}, nil
}

// Migrate applies, in file name order, every embedded migration missing from
// schema_migrations. Each migration and its bookkeeping row commit together.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	log := logger.FromContext(ctx).WithPrefix("db")

	if _, err := sqlDB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := appliedVersions(ctx, sqlDB)
	if err != nil {
		return err
	}

	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	pending := 0
	for _, f := range files {
		version := f.Name()
		if done[version] {
			continue
		}
		script, err := migrationsFS.ReadFile(path.Join("migrations", version))
		if err != nil {
			return err
		}
		if err := applyMigration(ctx, sqlDB, version, string(script)); err != nil {
			log.Error("schema migration %s: %v", version, err)
			return err
		}
		log.Debug("schema migration %s applied", version)
		pending++
	}
	if pending > 0 {
		log.Info("applied %d schema migration(s)", pending)
	}
	return nil
}

func appliedVersions(ctx context.Context, sqlDB *sql.DB) (map[string]bool, error) {
	rows, err := sqlDB.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list schema migrations: %w", err)
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

func applyMigration(ctx context.Context, sqlDB *sql.DB, version, script string) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return tx.Commit()
}
