// ABOUTME: Lead list handlers with the filter bar and bulk SMS over visible rows
// ABOUTME: Filter criteria travel in the query string so views are bookmarkable
package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/wolfcarports/salesdesk/db"
	"github.com/wolfcarports/salesdesk/filters"
	"github.com/wolfcarports/salesdesk/models"
	"github.com/wolfcarports/salesdesk/sms"
)

// pageSize bounds how many rows render on the list page. Bulk SMS also stops
// at this many recipients.
const pageSize = 200

func criteriaFromQuery(q url.Values, viewer *models.User) filters.Criteria {
	c := filters.Criteria{
		Readiness:     q["readiness"],
		LeadStage:     q["lead_stage"],
		CustomerStage: q["customer_stage"],
		States:        q["state"],
		Interaction:   q.Get("interaction"),
		Query:         strings.TrimSpace(q.Get("q")),
		SortBy:        q.Get("sort"),
		SortAsc:       q.Get("dir") == "asc",
	}
	if c.SortBy == "" {
		c.SortBy = "value_proxy_num"
	}
	if len(q["toggle"]) > 0 {
		c.Engagement = map[string]bool{}
		for _, name := range q["toggle"] {
			c.Engagement[name] = true
		}
	}
	if viewer.IsManager() {
		c.OwnersOverride = q["owner"]
	}
	return c
}

// visibleRows loads the dataset and applies scope, skip, and filter rules for
// the viewer. Skipped entities never render regardless of filter.
func (s *Server) visibleRows(viewer *models.User, c filters.Criteria) ([]models.LeadRecord, string, error) {
	rows, err := s.loader.Load()
	if err != nil {
		return nil, "", err
	}
	visible, label := filters.Apply(rows, viewer, c)

	skipped, err := db.SkippedEntities(s.db)
	if err != nil {
		return nil, "", err
	}
	if len(skipped) > 0 {
		kept := visible[:0]
		for _, r := range visible {
			if !skipped[r.EntityID] {
				kept = append(kept, r)
			}
		}
		visible = kept
	}
	return visible, label, nil
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	c := criteriaFromQuery(r.URL.Query(), viewer)

	visible, label, err := s.visibleRows(viewer, c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	all, err := s.loader.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	opts := filters.Options(all)

	total := len(visible)
	if len(visible) > pageSize {
		visible = visible[:pageSize]
	}

	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           "Leads",
		"ContentTemplate": "leads-content",
		"User":            viewer,
		"Rows":            visible,
		"Total":           total,
		"Summary":         summaryLine(len(visible), total),
		"FilterLabel":     label,
		"Options":         opts,
		"Toggles":         filters.EngagementToggles,
		"Criteria":        c,
		"RawQuery":        r.URL.RawQuery,
		"SnapshotPath":    s.loader.CurrentPath(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.loader.Invalidate()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleBulkSMS sends the message to every visible row's primary phone under
// the filter set the list page was showing. Each send is logged per entity
// with a shared batch id so a batch can be reconstructed from the ledger.
func (s *Server) handleBulkSMS(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		http.Error(w, "Message body required", http.StatusBadRequest)
		return
	}

	saved, err := url.ParseQuery(r.FormValue("filters"))
	if err != nil {
		http.Error(w, "Invalid filter state", http.StatusBadRequest)
		return
	}
	c := criteriaFromQuery(saved, viewer)

	visible, label, err := s.visibleRows(viewer, c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(visible) > pageSize {
		visible = visible[:pageSize]
	}

	batchID := ulid.Make().String()
	sent, failed, skippedNoPhone := 0, 0, 0
	seen := map[string]bool{}
	for _, row := range visible {
		if row.PrimaryPhone == "" {
			skippedNoPhone++
			continue
		}
		if seen[row.PrimaryPhone] {
			continue
		}
		seen[row.PrimaryPhone] = true

		filled := fillForLead(body, &row, viewer)
		res := s.sms.Send(r.Context(), row.PrimaryPhone, filled, viewer.RepPhone)
		if res.Success {
			sent++
		} else {
			failed++
		}
		_, err := db.LogAction(s.db, viewer.Email, row.EntityID, models.ActionBulkSMS, map[string]any{
			"batch_id": batchID,
			"phone":    row.PrimaryPhone,
			"success":  res.Success,
			"reason":   res.Reason,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           "Bulk SMS sent",
		"ContentTemplate": "bulk-result-content",
		"User":            viewer,
		"BatchID":         batchID,
		"Sent":            sent,
		"Failed":          failed,
		"NoPhone":         skippedNoPhone,
		"FilterLabel":     label,
		"BackQuery":       r.FormValue("filters"),
	})
}

// fillForLead substitutes message placeholders for one recipient.
func fillForLead(body string, row *models.LeadRecord, viewer *models.User) string {
	first := "there"
	if parts := strings.Fields(row.DisplayName); len(parts) > 0 && row.DisplayName != "Unknown" {
		first = parts[0]
	}
	repName := viewer.DisplayName
	if repName == "" {
		repName = viewer.Email
	}
	return sms.Fill(body, first, repName, viewer.RepPhone)
}

// summaryLine is the count caption above the table.
func summaryLine(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("%d leads", total)
	}
	return fmt.Sprintf("showing %d of %d leads", shown, total)
}
