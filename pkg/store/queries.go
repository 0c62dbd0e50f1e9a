package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Animation returns the stored row for id, or nil if no such animation
// has ever been written.
func (db *DB) Animation(id string) (*AnimationRow, error) {
	var row AnimationRow
	err := db.read.Get(&row, `SELECT * FROM animations WHERE animation_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: query animation %s: %w", id, err)
	}
	return &row, nil
}

// EventsInRange returns timeline_events with tick in [t0,t1], ordered by
// (tick, event_id) — event_id is monotonic insertion order, which for a
// single writer matches arrival order within a tick.
func (db *DB) EventsInRange(t0, t1 int64) ([]TimelineEventRow, error) {
	var rows []TimelineEventRow
	err := db.read.Select(&rows, `SELECT * FROM timeline_events
		WHERE tick >= ? AND tick <= ? ORDER BY tick, event_id`, t0, t1)
	if err != nil {
		return nil, fmt.Errorf("store: query events in range: %w", err)
	}
	return rows, nil
}

// SchemaVersion returns the database's current schema_version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.read.Get(&v, `SELECT schema_version FROM meta LIMIT 1`); err != nil {
		return 0, fmt.Errorf("store: query schema_version: %w", err)
	}
	return v, nil
}
