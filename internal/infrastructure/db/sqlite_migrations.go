package db

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sqlmigrations/*.up.sql
var sqliteMigrationsFS embed.FS

type sqliteMigration struct {
	Version int
	Name    string
	Up      string
}

// RunSQLiteMigrations applies every embedded migration not yet recorded in
// the migrations table, in version order, each inside its own transaction.
func RunSQLiteMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := loadSQLiteMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := appliedSQLiteMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applySQLiteMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func loadSQLiteMigrations() ([]sqliteMigration, error) {
	entries, err := sqliteMigrationsFS.ReadDir("sqlmigrations")
	if err != nil {
		return nil, err
	}

	var migrations []sqliteMigration
	for _, entry := range entries {
		name := entry.Name()
		version := migrationVersion(name)
		if version == 0 {
			continue
		}
		up, err := sqliteMigrationsFS.ReadFile(path.Join("sqlmigrations", name))
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, sqliteMigration{Version: version, Name: name, Up: string(up)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// migrationVersion extracts 12 from "000012_add_column.up.sql".
func migrationVersion(name string) int {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return v
}

func appliedSQLiteMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applySQLiteMigration(db *sql.DB, m sqliteMigration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
