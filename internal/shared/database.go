package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDatabase opens the SQLite database described by cfg with foreign key
// enforcement on and the configured pool limits applied.
//
// A ":memory:" path is pinned to a single connection: every new :memory:
// connection is a fresh, empty database, so a larger pool would hand out
// unmigrated databases at random.
func OpenDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_fk=1", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.Path, err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.Path == ":memory:" {
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: database at %s unreachable: %v", ErrTransient, cfg.Path, err)
	}

	return db, nil
}
