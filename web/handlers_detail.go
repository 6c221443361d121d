// ABOUTME: Lead detail handlers for notes, skip, readiness answers, calls, and one-off SMS
// ABOUTME: Every rep-visible action on a lead lands here and appends to the ledger
package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfcarports/salesdesk/db"
	"github.com/wolfcarports/salesdesk/models"
	"github.com/wolfcarports/salesdesk/readiness"
	"github.com/wolfcarports/salesdesk/sms"
)

// questionView pairs a question with its options and the stored answer for
// form rendering.
type questionView struct {
	Name    string
	Label   string
	Options []readiness.Option
	Answer  string
}

var questionLabels = map[string]string{
	readiness.QuestionLandStatus:       "Land / site prep status",
	readiness.QuestionSiteReady:        "Is the site ready?",
	readiness.QuestionPermitStatus:     "Permit status",
	readiness.QuestionLicenseStatus:    "Contractor's license",
	readiness.QuestionDrawingsStatus:   "Site-specific drawings",
	readiness.QuestionFinancingStatus:  "Financing",
	readiness.QuestionFinancingCompany: "Financing company",
	readiness.QuestionInstallTimeframe: "Install timeframe",
}

// findLead locates one visible row by entity id, enforcing the viewer's
// owner scope. Reps cannot reach leads outside their pool by URL.
func (s *Server) findLead(viewer *models.User, entityID string) (*models.LeadRecord, error) {
	rows, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].EntityID != entityID {
			continue
		}
		if !viewer.IsManager() {
			owner := rows[i].Owner
			if owner != viewer.OwnerValue && owner != models.SharedPoolOwner && owner != "" {
				return nil, nil
			}
		}
		return &rows[i], nil
	}
	return nil, nil
}

func (s *Server) handleLeadDetail(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	entityID := chi.URLParam(r, "entityID")

	lead, err := s.findLead(viewer, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}

	notes, err := db.NotesByEntity(s.db, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	actions, err := db.ActionsByEntity(s.db, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	state, err := db.GetEntityState(s.db, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stored, err := db.GetReadiness(s.db, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	answers := map[string]string{}
	if stored != nil {
		answers = stored.Answers
	}
	var questions []questionView
	for _, q := range readiness.Questions {
		questions = append(questions, questionView{
			Name:    q,
			Label:   questionLabels[q],
			Options: readiness.OptionsFor(q),
			Answer:  answers[q],
		})
	}

	skipped := state != nil && state.Skipped

	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           lead.DisplayName,
		"ContentTemplate": "lead-detail-content",
		"User":            viewer,
		"Lead":            lead,
		"Notes":           notes,
		"Actions":         actions,
		"Skipped":         skipped,
		"Readiness":       stored,
		"Questions":       questions,
		"DialerURL":       sms.DialerURL(lead.PrimaryPhone),
		"PreCallBody":     s.prefill("pre_call_sms", lead, viewer),
		"PostCallBody":    s.prefill("post_call_sms", lead, viewer),
		"FinanceBody":     s.prefill("finance_sms", lead, viewer),
	})
}

// prefill renders a named message template for this lead and rep.
func (s *Server) prefill(key string, lead *models.LeadRecord, viewer *models.User) string {
	return fillForLead(s.msgs.Get(key), lead, viewer)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	entityID := chi.URLParam(r, "entityID")

	text := strings.TrimSpace(r.FormValue("note_text"))
	if text == "" {
		http.Error(w, "Note text required", http.StatusBadRequest)
		return
	}
	followUp := strings.TrimSpace(r.FormValue("follow_up_date"))
	if followUp != "" {
		if _, err := time.Parse("2006-01-02", followUp); err != nil {
			http.Error(w, "Follow-up date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	if _, err := db.AppendNote(s.db, viewer.Email, entityID, text, followUp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/leads/"+entityID, http.StatusSeeOther)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	skipped := r.FormValue("skipped") == "true"

	if err := db.SetSkip(s.db, entityID, skipped); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if skipped {
		// Skipped leads leave the list, so land back there.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/leads/"+entityID, http.StatusSeeOther)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")

	answers := map[string]string{}
	for _, q := range readiness.Questions {
		if v := r.FormValue(q); v != "" {
			answers[q] = v
		}
	}

	score, level := readiness.Compute(answers)
	if err := db.SetReadiness(s.db, entityID, answers, score, level); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/leads/"+entityID, http.StatusSeeOther)
}

// handleCall logs the call in the ledger and bounces the browser to the
// JustCall dialer with the lead's number preloaded.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	entityID := chi.URLParam(r, "entityID")

	lead, err := s.findLead(viewer, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}
	if lead.PrimaryPhone == "" {
		http.Error(w, "Lead has no phone number", http.StatusBadRequest)
		return
	}

	_, err = db.LogAction(s.db, viewer.Email, entityID, models.ActionCall, map[string]any{
		"phone": lead.PrimaryPhone,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sms.DialerURL(lead.PrimaryPhone), http.StatusSeeOther)
}

func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r)
	entityID := chi.URLParam(r, "entityID")

	kind := r.FormValue("kind")
	var actionType string
	switch kind {
	case "pre_call":
		actionType = models.ActionPreCallSMS
	case "post_call":
		actionType = models.ActionPostCallSMS
	case "finance":
		actionType = models.ActionFinanceSMS
	default:
		http.Error(w, "Unknown SMS kind", http.StatusBadRequest)
		return
	}

	lead, err := s.findLead(viewer, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}
	if lead.PrimaryPhone == "" {
		http.Error(w, "Lead has no phone number", http.StatusBadRequest)
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		body = s.prefill(actionType, lead, viewer)
	}

	res := s.sms.Send(r.Context(), lead.PrimaryPhone, body, viewer.RepPhone)
	_, err = db.LogAction(s.db, viewer.Email, entityID, actionType, map[string]any{
		"phone":   lead.PrimaryPhone,
		"success": res.Success,
		"reason":  res.Reason,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !res.Success {
		http.Error(w, fmt.Sprintf("SMS failed: %s", res.Reason), http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/leads/"+entityID, http.StatusSeeOther)
}
