// Package sqlitemigrate applies embedded SQL migrations once each.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Apply runs every *.sql file under root in name order, skipping files
// already recorded in schema_migrations. Each file runs in its own transaction.
func Apply(ctx context.Context, db *sql.DB, migrations fs.FS, root string) error {
	if db == nil {
		return fmt.Errorf("sqlitemigrate: db is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return fmt.Errorf("sqlitemigrate: read %s: %w", root, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("sqlitemigrate: ensure %s: %w", migrationTable, err)
	}

	for _, name := range files {
		if err := applyOne(ctx, db, migrations, path.Join(root, name), name); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(ctx context.Context, db *sql.DB, migrations fs.FS, file, name string) error {
	applied, err := isApplied(ctx, db, name)
	if err != nil {
		return fmt.Errorf("sqlitemigrate: check %s: %w", name, err)
	}
	if applied {
		return nil
	}

	content, err := fs.ReadFile(migrations, file)
	if err != nil {
		return fmt.Errorf("sqlitemigrate: read %s: %w", name, err)
	}
	up := UpSection(string(content))
	if strings.TrimSpace(up) == "" {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitemigrate: begin %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, up); err != nil && !IsAlreadyExists(err) {
		_ = tx.Rollback()
		return fmt.Errorf("sqlitemigrate: exec %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
		name, time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlitemigrate: record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitemigrate: commit %s: %w", name, err)
	}
	return nil
}

// UpSection returns the SQL between the Up and Down markers. Files without
// markers are treated as all Up.
func UpSection(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	rest := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(rest, downMarker); downIdx != -1 {
		return rest[:downIdx]
	}
	return rest
}

// IsAlreadyExists reports whether err means the DDL had already been applied.
func IsAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
