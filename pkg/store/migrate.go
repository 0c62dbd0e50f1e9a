package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// migrate applies every migration after the database's current
// schema_version, in order. Migrations only append; there is no
// down-migration path by design.
func (db *DB) migrate() error {
	tx, err := db.write.Beginx()
	if err != nil {
		return fmt.Errorf("store: begin migration tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migrations[0]); err != nil {
		return fmt.Errorf("store: apply base schema: %w", err)
	}

	var current int
	if err := tx.Get(&current, `SELECT schema_version FROM meta LIMIT 1`); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: query schema_version: %w", err)
		}
		current = 0
		if _, err := tx.Exec(`INSERT INTO meta (schema_version) VALUES (0)`); err != nil {
			return fmt.Errorf("store: seed meta row: %w", err)
		}
	}

	for v := current + 1; v <= len(migrations); v++ {
		if v == 1 {
			// migrations[0] is the base schema, already applied above.
			continue
		}
		if _, err := tx.Exec(migrations[v-1]); err != nil {
			return fmt.Errorf("store: apply migration %d: %w", v, err)
		}
	}

	if _, err := tx.Exec(`UPDATE meta SET schema_version = ?`, schemaVersion); err != nil {
		return fmt.Errorf("store: bump schema_version: %w", err)
	}

	return tx.Commit()
}
