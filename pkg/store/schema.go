package store

// schemaVersion is the current forward-only migration target.
const schemaVersion = 1

// migrations are applied in order starting from the database's current
// meta.schema_version + 1. Migrations only ever append: a later version
// must never drop or narrow a column a prior version created.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		schema_version INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS animations (
		animation_id TEXT PRIMARY KEY,
		definition   TEXT NOT NULL,
		active       INTEGER NOT NULL DEFAULT 0,
		start_tick   INTEGER,
		end_tick     INTEGER,
		updated_at   INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timeline_events (
		event_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		tick         INTEGER NOT NULL,
		kind         TEXT NOT NULL,
		primitive_id TEXT NOT NULL,
		animation_id TEXT,
		payload      TEXT,
		created_at   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_timeline_events_tick ON timeline_events(tick);
	CREATE INDEX IF NOT EXISTS idx_timeline_events_kind ON timeline_events(kind);
	CREATE INDEX IF NOT EXISTS idx_timeline_events_primitive_id ON timeline_events(primitive_id);

	CREATE TABLE IF NOT EXISTS coordination_plans (
		plan_id         TEXT PRIMARY KEY,
		definition      TEXT NOT NULL,
		state           TEXT NOT NULL,
		start_tick      INTEGER,
		completion_tick INTEGER,
		active          INTEGER NOT NULL DEFAULT 0,
		updated_at      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS performance_metrics (
		metric_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		tick       INTEGER NOT NULL,
		kind       TEXT NOT NULL,
		value      REAL NOT NULL,
		payload    TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_performance_metrics_tick_kind ON performance_metrics(tick, kind);

	CREATE TABLE IF NOT EXISTS data_history (
		data_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		tick       INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_data_history_name_tick ON data_history(name, tick);
	`,
}
