// ABOUTME: Web dashboard server with embedded templates
// ABOUTME: Serves the lead list, lead detail, readiness questionnaire, and reports behind cookie auth
package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfcarports/salesdesk/auth"
	"github.com/wolfcarports/salesdesk/config"
	"github.com/wolfcarports/salesdesk/dataset"
	"github.com/wolfcarports/salesdesk/models"
	"github.com/wolfcarports/salesdesk/sms"
)

//go:embed templates/*
var templatesFS embed.FS

type contextKey string

const userKey contextKey = "user"

type Server struct {
	cfg       *config.Config
	db        *sql.DB
	users     *auth.Store
	loader    *dataset.Loader
	templates *template.Template
	sms       *sms.Client
	msgs      *sms.Templates
	sessions  *sessionSigner
}

func NewServer(cfg *config.Config, database *sql.DB, users *auth.Store, loader *dataset.Loader) (*Server, error) {
	funcMap := template.FuncMap{
		"firstName": func(name string) string {
			parts := strings.Fields(name)
			if len(parts) == 0 {
				return "there"
			}
			return parts[0]
		},
		"money": func(v float64) string {
			return fmt.Sprintf("$%.0f", v)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:       cfg,
		db:        database,
		users:     users,
		loader:    loader,
		templates: tmpl,
		sms:       sms.NewClient(cfg.JustCallKey, cfg.JustCallSecret),
		msgs:      sms.LoadTemplates(cfg.TemplatesPath),
		sessions:  newSessionSigner(cfg.SessionSecret),
	}, nil
}

func (s *Server) Start() error {
	log.Printf("Starting web server at http://localhost%s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.Routes())
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/setup", s.handleSetupForm)
	r.Post("/setup", s.handleSetup)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/", s.handleLeads)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/bulk-sms", s.handleBulkSMS)

		r.Route("/leads/{entityID}", func(r chi.Router) {
			r.Get("/", s.handleLeadDetail)
			r.Post("/notes", s.handleAddNote)
			r.Post("/skip", s.handleSkip)
			r.Post("/readiness", s.handleReadiness)
			r.Post("/call", s.handleCall)
			r.Post("/sms", s.handleSendSMS)
		})

		r.Get("/reports", s.handleReports)
		r.Post("/reports/export", s.handleReportsExport)
	})

	return r
}

// requireUser resolves the session cookie into a user and stashes it on the
// request context. Unauthenticated requests are sent to /login, or to /setup
// when no users exist yet.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := s.sessions.verify(r)
		if email != "" {
			user, err := s.users.GetUser(email)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if user != nil {
				ctx := context.WithValue(r.Context(), userKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		all, err := s.users.ListUsers()
		if err == nil && len(all) == 0 {
			http.Redirect(w, r, "/setup", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		log.Printf("Template error rendering %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
