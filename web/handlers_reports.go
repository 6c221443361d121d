// ABOUTME: Daily activity report and CSV export handlers
// ABOUTME: Reps see their own numbers; managers see every rep and can export date ranges
package web

import (
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/wolfcarports/salesdesk/db"
	"github.com/wolfcarports/salesdesk/export"
	"github.com/wolfcarports/salesdesk/models"
)

// userDayStats is one rep's activity counts for the report table.
type userDayStats struct {
	UserID      string
	Calls       int
	PreCallSMS  int
	PostCallSMS int
	FinanceSMS  int
	BulkSMS     int
	Notes       int
	Total       int
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)

	day := r.URL.Query().Get("day")
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		date = time.Now().UTC()
		day = date.Format("2006-01-02")
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)

	actions, err := db.ActionsByRange(s.db, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	notes, err := db.NotesByRange(s.db, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byUser := map[string]*userDayStats{}
	stats := func(userID string) *userDayStats {
		if st, ok := byUser[userID]; ok {
			return st
		}
		st := &userDayStats{UserID: userID}
		byUser[userID] = st
		return st
	}
	for _, a := range actions {
		if !viewer.IsManager() && a.UserID != viewer.Email {
			continue
		}
		st := stats(a.UserID)
		switch a.Type {
		case models.ActionCall:
			st.Calls++
		case models.ActionPreCallSMS:
			st.PreCallSMS++
		case models.ActionPostCallSMS:
			st.PostCallSMS++
		case models.ActionFinanceSMS:
			st.FinanceSMS++
		case models.ActionBulkSMS:
			st.BulkSMS++
		}
		st.Total++
	}
	for _, n := range notes {
		if !viewer.IsManager() && n.UserID != viewer.Email {
			continue
		}
		st := stats(n.UserID)
		st.Notes++
		st.Total++
	}

	rows := make([]userDayStats, 0, len(byUser))
	for _, st := range byUser {
		rows = append(rows, *st)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })

	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           "Daily report",
		"ContentTemplate": "reports-content",
		"User":            viewer,
		"Day":             day,
		"Stats":           rows,
	})
}

// handleReportsExport writes a range CSV to the export directory and streams
// it back as a download. Manager only.
func (s *Server) handleReportsExport(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	if !viewer.IsManager() {
		http.Error(w, "Managers only", http.StatusForbidden)
		return
	}

	start, err := time.Parse("2006-01-02", r.FormValue("start"))
	if err != nil {
		http.Error(w, "Start date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	endDay, err := time.Parse("2006-01-02", r.FormValue("end"))
	if err != nil {
		http.Error(w, "End date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end := endDay.Add(24*time.Hour - time.Second)

	var path string
	switch r.FormValue("kind") {
	case "actions":
		path, err = export.Actions(s.db, start, end, s.cfg.ExportDir)
	case "notes":
		path, err = export.Notes(s.db, start, end, s.cfg.ExportDir)
	default:
		http.Error(w, "Unknown export kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}
