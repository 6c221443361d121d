// ABOUTME: Append-only action and note ledger operations
// ABOUTME: Handles action logging, note appends, skip flags, and entity state upserts
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wolfcarports/salesdesk/models"
)

// LogAction appends an outreach action with a server-assigned timestamp and
// reflects it in entity_state. The skip flag of an existing state row is left
// untouched.
func LogAction(db *sql.DB, userID, entityID, actionType string, payload map[string]any) (int64, error) {
	body, err := json.Marshal(payloadOrEmpty(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	ts := now()
	res, err := tx.Exec(`
		INSERT INTO actions (ts, user_id, entity_id, action_type, payload)
		VALUES (?, ?, ?, ?, ?)
	`, ts, userID, entityID, actionType, string(body))
	if err != nil {
		return 0, fmt.Errorf("failed to insert action: %w", err)
	}

	if err := touchEntityState(tx, entityID, ts); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AppendNote appends a free-text note. followUpDate is an optional
// YYYY-MM-DD string; pass "" for none.
func AppendNote(db *sql.DB, userID, entityID, text, followUpDate string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := now()
	var followUp any
	if followUpDate != "" {
		followUp = followUpDate
	}
	res, err := tx.Exec(`
		INSERT INTO notes (ts, user_id, entity_id, note_text, follow_up_date)
		VALUES (?, ?, ?, ?, ?)
	`, ts, userID, entityID, text, followUp)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}

	if err := touchEntityState(tx, entityID, ts); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetSkip upserts the skip flag for an entity with a fresh timestamp.
func SetSkip(db *sql.DB, entityID string, skipped bool) error {
	_, err := db.Exec(`
		INSERT INTO entity_state (entity_id, skipped, last_action_ts)
		VALUES (?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			skipped = excluded.skipped,
			last_action_ts = excluded.last_action_ts
	`, entityID, boolToInt(skipped), now())
	if err != nil {
		return fmt.Errorf("failed to set skip flag: %w", err)
	}
	return nil
}

// SkippedEntities returns the IDs of every entity currently flagged skipped.
func SkippedEntities(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT entity_id FROM entity_state WHERE skipped = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skipped entities: %w", err)
	}
	defer rows.Close()

	skipped := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		skipped[id] = true
	}
	return skipped, rows.Err()
}

// GetEntityState retrieves the overlay state for an entity, or nil when the
// entity has never been touched.
func GetEntityState(db *sql.DB, entityID string) (*models.EntityState, error) {
	state := &models.EntityState{}
	var skipped int
	var lastAction sql.NullTime

	err := db.QueryRow(`
		SELECT entity_id, skipped, last_action_ts
		FROM entity_state WHERE entity_id = ?
	`, entityID).Scan(&state.EntityID, &skipped, &lastAction)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state.Skipped = skipped != 0
	if lastAction.Valid {
		t := lastAction.Time
		state.LastActionAt = &t
	}
	return state, nil
}

// ActionsByEntity returns actions for one entity, most recent first.
func ActionsByEntity(db *sql.DB, entityID string) ([]models.ActionRecord, error) {
	rows, err := db.Query(`
		SELECT id, ts, user_id, entity_id, action_type, payload
		FROM actions WHERE entity_id = ? ORDER BY ts DESC, id DESC
	`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

// ActionsByRange returns actions with timestamp in the inclusive range,
// ascending. Used for daily metrics and CSV export.
func ActionsByRange(db *sql.DB, start, end time.Time) ([]models.ActionRecord, error) {
	rows, err := db.Query(`
		SELECT id, ts, user_id, entity_id, action_type, payload
		FROM actions WHERE ts BETWEEN ? AND ? ORDER BY ts ASC, id ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

// NotesByEntity returns notes for one entity, most recent first.
func NotesByEntity(db *sql.DB, entityID string) ([]models.NoteRecord, error) {
	rows, err := db.Query(`
		SELECT id, ts, user_id, entity_id, note_text, follow_up_date
		FROM notes WHERE entity_id = ? ORDER BY ts DESC, id DESC
	`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

// NotesByRange returns notes with timestamp in the inclusive range, ascending.
func NotesByRange(db *sql.DB, start, end time.Time) ([]models.NoteRecord, error) {
	rows, err := db.Query(`
		SELECT id, ts, user_id, entity_id, note_text, follow_up_date
		FROM notes WHERE ts BETWEEN ? AND ? ORDER BY ts ASC, id ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

func touchEntityState(tx *sql.Tx, entityID string, ts time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO entity_state (entity_id, skipped, last_action_ts)
		VALUES (?, 0, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			last_action_ts = excluded.last_action_ts
	`, entityID, ts)
	if err != nil {
		return fmt.Errorf("failed to update entity state: %w", err)
	}
	return nil
}

func scanActions(rows *sql.Rows) ([]models.ActionRecord, error) {
	var actions []models.ActionRecord
	for rows.Next() {
		var a models.ActionRecord
		var payload sql.NullString
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.UserID, &a.EntityID, &a.Type, &payload); err != nil {
			return nil, err
		}
		a.Payload = payload.String
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func scanNotes(rows *sql.Rows) ([]models.NoteRecord, error) {
	var notes []models.NoteRecord
	for rows.Next() {
		var n models.NoteRecord
		var followUp sql.NullString
		if err := rows.Scan(&n.ID, &n.Timestamp, &n.UserID, &n.EntityID, &n.Text, &followUp); err != nil {
			return nil, err
		}
		n.FollowUpDate = followUp.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func payloadOrEmpty(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
