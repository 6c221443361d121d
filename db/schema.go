// ABOUTME: Ledger store schema definitions
// ABOUTME: Handles SQLite table creation for actions, notes, entity state, and readiness
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts DATETIME NOT NULL,
	user_id TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action_type TEXT NOT NULL,
	payload TEXT
);

CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
CREATE INDEX IF NOT EXISTS idx_actions_entity ON actions(entity_id);

CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts DATETIME NOT NULL,
	user_id TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	note_text TEXT NOT NULL,
	follow_up_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_notes_ts ON notes(ts);
CREATE INDEX IF NOT EXISTS idx_notes_entity ON notes(entity_id);

CREATE TABLE IF NOT EXISTS entity_state (
	entity_id TEXT PRIMARY KEY,
	skipped INTEGER NOT NULL DEFAULT 0,
	last_action_ts DATETIME
);

CREATE TABLE IF NOT EXISTS readiness (
	entity_id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	answers TEXT NOT NULL,
	score REAL NOT NULL,
	level TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_readiness_level ON readiness(level);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
