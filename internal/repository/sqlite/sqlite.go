// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a
// single file. No separate database server to install, configure, or
// manage. A pool of friends guessing tournament scores is exactly the
// single-server scale it shines at, and ":memory:" gives the tests a free
// throwaway database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — works everywhere Go works.
//
// The UNIQUE constraints declared in the schema are load-bearing: they
// are the final arbiter for the one-membership-per-user and
// one-guess-per-game invariants, and for join-code uniqueness. The
// repository methods translate constraint violations into the matching
// business errors so a race that slips past a service pre-check surfaces
// exactly like the pre-check failing.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// The driver import registers itself with database/sql under the name
	// "sqlite" via its init() function. We import it non-blank because we
	// also inspect *sqlite.Error codes for constraint violations.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements repository.PoolRepository, GuessRepository, and
// UserRepository; the compile-time checks live next to the methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't touch the file; Ping surfaces bad paths and
	// permission problems immediately instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in progress — important for
	// a web server where list/projection reads race guess writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; the participant and
	// guess tables rely on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer it wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent; for this schema-stable app that beats carrying a migration
// tool.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			google_id  TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// owner_id is nullable: a pool created without authentication has no
	// owner until someone joins it.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS pools (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			code       TEXT NOT NULL UNIQUE,
			owner_id   TEXT REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pools_created_at ON pools(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating pools table: %w", err)
	}

	// The UNIQUE(user_id, pool_id) pair is the one-membership-per-user
	// invariant.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS participants (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			pool_id    TEXT NOT NULL REFERENCES pools(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, pool_id)
		);
		CREATE INDEX IF NOT EXISTS idx_participants_pool_id ON participants(pool_id);
	`)
	if err != nil {
		return fmt.Errorf("creating participants table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id                       TEXT PRIMARY KEY,
			first_team_country_code  TEXT NOT NULL,
			second_team_country_code TEXT NOT NULL,
			date                     DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating games table: %w", err)
	}

	// UNIQUE(participant_id, game_id): at most one guess per game per
	// participant, for the lifetime of the system.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS guesses (
			id                 TEXT PRIMARY KEY,
			participant_id     TEXT NOT NULL REFERENCES participants(id),
			game_id            TEXT NOT NULL REFERENCES games(id),
			first_team_points  INTEGER NOT NULL,
			second_team_points INTEGER NOT NULL,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (participant_id, game_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating guesses table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
//
// The driver surfaces these as *sqlite.Error with an extended result
// code. Each INSERT in this package touches exactly one UNIQUE constraint
// (fresh xid primary keys can't collide), so the calling method knows
// which business error the violation means.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
