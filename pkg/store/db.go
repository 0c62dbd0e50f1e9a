package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc.org/sqlite registers itself under the driver name "sqlite",
	// which sqlx does not recognize by default; without this it falls
	// back to UNKNOWN bind type instead of "?" placeholders.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps a pure-Go SQLite connection pool in WAL mode: one write
// connection (WAL permits concurrent readers during a writer
// transaction) and up to maxReadConns read connections.
type DB struct {
	write *sqlx.DB
	read  *sqlx.DB
}

// Open opens (creating if necessary) the database file at path, applies
// pending migrations, and returns a ready DB.
func Open(path string, maxReadConns int) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	write, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)

	read, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("store: open read connection: %w", err)
	}
	if maxReadConns < 1 {
		maxReadConns = 1
	}
	read.SetMaxOpenConns(maxReadConns)

	db := &DB{write: write, read: read}
	if err := db.migrate(); err != nil {
		write.Close()
		read.Close()
		return nil, err
	}
	return db, nil
}

// Close releases both connection pools.
func (db *DB) Close() error {
	werr := db.write.Close()
	rerr := db.read.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
