package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/wordflash/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type DB struct {
	*sqlx.DB
	log *logger.Logger
}

// Open connects to a sqlite3 or postgres database and applies any pending
// migrations for that dialect.
func Open(driver, dsn string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	log.Info("opening %s database", driver)

	sqlxDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	if driver == DriverSQLite {
		sqlxDB.SetMaxOpenConns(1) // single writer
	}

	db := &DB{DB: sqlxDB, log: log}

	log.Debug("applying migrations")
	if err := db.applyMigrations(context.Background()); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlxDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

// Wrap adopts an existing connection without running migrations.
func Wrap(sqlxDB *sqlx.DB) *DB {
	return &DB{DB: sqlxDB, log: logger.Default().WithPrefix("db")}
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
}

// Builder returns a squirrel statement builder with this dialect's placeholders.
func (db *DB) Builder() squirrel.StatementBuilderType {
	if db.DriverName() == DriverPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (db *DB) migrationsDir() string {
	if db.DriverName() == DriverPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

func (db *DB) applyMigrations(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	dir := db.migrationsDir()
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		applied, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile(path.Join(dir, version))
		if err != nil {
			return err
		}
		db.log.Info("applying migration: %s", version)
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			db.log.Error("migration %s failed: %v", version, err)
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), version); err != nil {
			return err
		}
		db.log.Info("migration %s applied successfully", version)
	}
	return nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var v string
	err := db.QueryRowContext(ctx, db.Rebind(`SELECT version FROM schema_migrations WHERE version = ?`), version).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// RunInTx runs fn within a transaction, rolling back if fn fails.
func RunInTx(ctx context.Context, db *DB, fn func(tx *sqlx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction: %v", rbErr)
		}
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
