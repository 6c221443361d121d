// ABOUTME: Login, logout, and first-run setup handlers
// ABOUTME: First manager account is created through /setup when the user store is empty
package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/wolfcarports/salesdesk/models"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	all, err := s.users.ListUsers()
	if err == nil && len(all) == 0 {
		http.Redirect(w, r, "/setup", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           "Sign in",
		"ContentTemplate": "login-content",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	user, err := s.users.VerifyPassword(email, password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if user == nil {
		s.renderTemplate(w, "layout.html", map[string]interface{}{
			"Title":           "Sign in",
			"ContentTemplate": "login-content",
			"Error":           "Invalid email or password",
		})
		return
	}

	s.sessions.issue(w, user.Email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleSetupForm shows the first-run manager creation form. Once any user
// exists the route turns into a redirect so it cannot be used to add accounts.
func (s *Server) handleSetupForm(w http.ResponseWriter, r *http.Request) {
	all, err := s.users.ListUsers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(all) > 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "layout.html", map[string]interface{}{
		"Title":           "First-run setup",
		"ContentTemplate": "setup-content",
	})
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	all, err := s.users.ListUsers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(all) > 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	if email == "" || len(password) < 8 {
		s.renderTemplate(w, "layout.html", map[string]interface{}{
			"Title":           "First-run setup",
			"ContentTemplate": "setup-content",
			"Error":           "Email required and password must be at least 8 characters",
		})
		return
	}

	if err := s.users.SetPassword(email, password); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	user, err := s.users.GetUser(email)
	if err != nil || user == nil {
		http.Error(w, "failed to load created user", http.StatusInternalServerError)
		return
	}
	user.Role = models.RoleManager
	if err := s.users.UpsertUser(*user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("Created first manager account %s", email)

	s.sessions.issue(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
