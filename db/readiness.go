// ABOUTME: Readiness overlay persistence
// ABOUTME: Handles latest-wins upserts and reads of questionnaire results per entity
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfcarports/salesdesk/models"
)

// SetReadiness replaces the single readiness row for an entity and reflects
// the write in entity_state. No answer history is kept.
func SetReadiness(db *sql.DB, entityID string, answers map[string]string, score float64, level string) error {
	if answers == nil {
		answers = map[string]string{}
	}
	body, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := now()
	_, err = tx.Exec(`
		INSERT INTO readiness (entity_id, ts, answers, score, level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			ts = excluded.ts,
			answers = excluded.answers,
			score = excluded.score,
			level = excluded.level
	`, entityID, ts, string(body), score, level)
	if err != nil {
		return fmt.Errorf("failed to upsert readiness: %w", err)
	}

	if err := touchEntityState(tx, entityID, ts); err != nil {
		return err
	}

	return tx.Commit()
}

// GetReadiness retrieves the stored readiness row for an entity, or nil when
// the questionnaire has never been saved.
func GetReadiness(db *sql.DB, entityID string) (*models.ReadinessRecord, error) {
	var rec models.ReadinessRecord
	var answers string

	err := db.QueryRow(`
		SELECT entity_id, ts, answers, score, level
		FROM readiness WHERE entity_id = ?
	`, entityID).Scan(&rec.EntityID, &rec.Timestamp, &answers, &rec.Score, &rec.Level)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		rec.Answers = map[string]string{}
	}
	return &rec, nil
}

// AllReadiness returns every stored readiness row. The dataset loader merges
// these over the snapshot at load time.
func AllReadiness(db *sql.DB) ([]models.ReadinessRecord, error) {
	rows, err := db.Query(`SELECT entity_id, ts, answers, score, level FROM readiness`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ReadinessRecord
	for rows.Next() {
		var rec models.ReadinessRecord
		var answers string
		if err := rows.Scan(&rec.EntityID, &rec.Timestamp, &answers, &rec.Score, &rec.Level); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
			rec.Answers = map[string]string{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
