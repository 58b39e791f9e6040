package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// migration pairs the up and down scripts for one schema version.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// readMigrations loads the embedded sql/NNNN_name_{up,down}.sql pairs,
// sorted by version. A version missing either half is an error: a schema
// change that cannot be rolled back does not ship.
func readMigrations() ([]migration, error) {
	paths, err := fs.Glob(migrationFS, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migration scripts: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, path := range paths {
		base := strings.TrimSuffix(strings.TrimPrefix(path, "sql/"), ".sql")

		var down bool
		switch {
		case strings.HasSuffix(base, "_up"):
			base = strings.TrimSuffix(base, "_up")
		case strings.HasSuffix(base, "_down"):
			base = strings.TrimSuffix(base, "_down")
			down = true
		default:
			return nil, fmt.Errorf("migration %s has neither an _up nor a _down suffix", path)
		}

		versionStr, name, _ := strings.Cut(base, "_")
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("migration %s has no numeric version prefix: %w", path, err)
		}

		script, err := fs.ReadFile(migrationFS, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", path, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if down {
			m.down = string(script)
		} else {
			m.up = string(script)
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("migration version %d (%s) is missing its up or down script", m.version, m.name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}

// RunMigrations applies every migration not yet recorded in the
// schema_migrations ledger, in version order, each in its own transaction.
// Safe to call repeatedly.
func RunMigrations(db *sql.DB) error {
	migrations, err := readMigrations()
	if err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		record := "INSERT INTO schema_migrations (version) VALUES (?)"
		if err := runScript(db, m.up, record, m.version); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// RollbackMigration reverts the highest applied migration.
func RollbackMigration(db *sql.DB) error {
	migrations, err := readMigrations()
	if err != nil {
		return err
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	if !current.Valid {
		return fmt.Errorf("no migrations to roll back")
	}

	for _, m := range migrations {
		if int64(m.version) != current.Int64 {
			continue
		}
		record := "DELETE FROM schema_migrations WHERE version = ?"
		if err := runScript(db, m.down, record, m.version); err != nil {
			return fmt.Errorf("failed to roll back migration %d (%s): %w", m.version, m.name, err)
		}
		return nil
	}

	return fmt.Errorf("applied version %d has no migration script", current.Int64)
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// runScript executes a migration script statement by statement, then the
// ledger update, all in one transaction.
func runScript(db *sql.DB, script, record string, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement %q: %w", stmt, err)
		}
	}

	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements breaks a script on semicolons, dropping -- comments and
// blank statements. The embedded scripts keep semicolons out of literals.
func splitStatements(script string) []string {
	var statements []string
	for _, raw := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			if idx := strings.Index(line, "--"); idx >= 0 {
				line = line[:idx]
			}
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
