// ABOUTME: CSV export of ledger actions and notes for a date range
// ABOUTME: Writes timestamped files into the export directory, replacing prior exports of the same kind
package export

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wolfcarports/salesdesk/db"
)

const fileTimestamp = "20060102_150405"

// Actions writes all ledger actions between start and end (inclusive) to a
// fresh CSV in dir. Prior actions_*.csv files in dir are removed first so the
// latest export is the only one present. Returns the written path.
func Actions(database *sql.DB, start, end time.Time, dir string) (string, error) {
	actions, err := db.ActionsByRange(database, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to query actions: %w", err)
	}

	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []string{
			a.Timestamp.Format(time.RFC3339),
			a.UserID,
			a.EntityID,
			a.Type,
			a.Payload,
		})
	}
	return writeExport(dir, "actions", []string{"ts", "user_id", "entity_id", "action_type", "payload"}, rows)
}

// Notes writes all notes between start and end (inclusive) to a fresh CSV in
// dir, replacing prior notes_*.csv files. Returns the written path.
func Notes(database *sql.DB, start, end time.Time, dir string) (string, error) {
	notes, err := db.NotesByRange(database, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to query notes: %w", err)
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			n.Timestamp.Format(time.RFC3339),
			n.UserID,
			n.EntityID,
			n.Text,
			n.FollowUpDate,
		})
	}
	return writeExport(dir, "notes", []string{"ts", "user_id", "entity_id", "note_text", "follow_up_date"}, rows)
}

func writeExport(dir, kind string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := removePrior(dir, kind); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", kind, time.Now().UTC().Format(fileTimestamp)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}
	return path, nil
}

func removePrior(dir, kind string) error {
	matches, err := filepath.Glob(filepath.Join(dir, kind+"_*.csv"))
	if err != nil {
		return fmt.Errorf("failed to list prior exports: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("failed to remove prior export %s: %w", m, err)
		}
	}
	return nil
}
