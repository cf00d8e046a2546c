package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/api-sage/banking-ledger/internal/logger"
	_ "github.com/lib/pq"
)

// RunMigrations brings the ledger schema up to date before the server
// starts accepting requests. Each pending .sql file in migrationsDir is
// applied inside its own transaction and recorded in schema_migrations,
// so a restart never replays a migration that already landed.
func RunMigrations(ctx context.Context, dsn, migrationsDir string) error {
	logger.Info("migrator starting", logger.Fields{
		"directory": migrationsDir,
	})

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("migrator open connection failed", err, nil)
		return fmt.Errorf("open postgres connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("migrator ping failed", err, nil)
		return fmt.Errorf("ping postgres: %w", err)
	}

	if err := ensureVersionTable(ctx, db); err != nil {
		logger.Error("migrator version table failed", err, nil)
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		logger.Error("migrator version lookup failed", err, nil)
		return err
	}

	pending, err := pendingMigrations(migrationsDir, applied)
	if err != nil {
		logger.Error("migrator listing failed", err, logger.Fields{
			"directory": migrationsDir,
		})
		return err
	}

	for _, version := range pending {
		if err := applyMigration(ctx, db, migrationsDir, version); err != nil {
			logger.Error("migrator apply failed", err, logger.Fields{
				"version": version,
			})
			return err
		}
		logger.Info("migrator applied", logger.Fields{
			"version": version,
		})
	}

	logger.Info("migrator finished", logger.Fields{
		"applied": len(pending),
	})
	return nil
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	return nil
}

// pendingMigrations returns the .sql files in migrationsDir that have no
// row in schema_migrations yet, in lexical order. File names carry a
// numeric prefix, so lexical order is application order.
func pendingMigrations(migrationsDir string, applied map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory %q: %w", migrationsDir, err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".sql") {
			continue
		}
		if applied[name] {
			continue
		}
		pending = append(pending, name)
	}

	sort.Strings(pending)
	return pending, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sql.DB, migrationsDir, version string) error {
	statements, err := os.ReadFile(filepath.Join(migrationsDir, version))
	if err != nil {
		return fmt.Errorf("read migration %q: %w", version, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for migration %q: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, string(statements)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %q: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %q: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", version, err)
	}
	return nil
}
