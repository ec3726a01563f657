package main

// handlers.go these are the HTTP endpoints: page props, the contact form,
// cache revalidation and the admin API

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/config"
	"github.com/aTrapDeer/portfolio-site/internal/contact"
	"github.com/aTrapDeer/portfolio-site/internal/content"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

const maxContactBody = 64 << 10

type server struct {
	cfg     *config.Config
	log     *slog.Logger
	content *content.Service
	contact *contact.Pipeline
	// admin is the uncached write-mode client.
	admin store.Client
	// cache is flushed on revalidation. It may be nil.
	cache *store.Cached
	http  *http.Client
	now   func() time.Time
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("GET /api/home", s.handleHome)
	mux.HandleFunc("GET /api/hero", s.handleHero)
	mux.HandleFunc("GET /api/about", s.handleAbout)
	mux.HandleFunc("GET /api/skills", s.handleSkills)
	mux.HandleFunc("GET /api/experience", s.handleExperience)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/projects/search", s.handleSearchProjects)
	mux.HandleFunc("GET /api/projects/{slug}", s.handleProject)
	mux.HandleFunc("GET /api/contact-info", s.handleContactInfo)
	mux.HandleFunc("POST /api/revalidate", s.handleRevalidate)

	mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)
	mux.HandleFunc("GET /api/admin/contacts/count", requireJWT(s.cfg.JWTSecret, s.handleContactCount))
	mux.HandleFunc("DELETE /api/admin/contacts", requireJWT(s.cfg.JWTSecret, s.handlePurgeContacts))

	mux.Handle("/studio/", http.StripPrefix("/studio", studioFiles(s.cfg.Studio.Dir)))
	mux.HandleFunc("/studio", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/studio/", http.StatusMovedPermanently)
	})

	var handler http.Handler = mux
	handler = studioGate(s.cfg, s.log, handler)
	handler = withCORS(s.cfg, handler)
	handler = logRequests(s.log, handler)
	return handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleContact(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContactBody))
	if err != nil {
		s.log.Error("Contact Form Error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	id, err := s.contact.Submit(r.Context(), body)
	if err != nil {
		var (
			verr *contact.ValidationError
			perr *contact.PersistenceError
			nerr *contact.NotificationError
		)
		switch {
		case errors.As(err, &verr):
			s.log.Info("Contact form rejected", "reason", verr.Error())
			writeError(w, contact.StatusCode(err), "Missing fields")
			return
		case errors.As(err, &perr):
			s.log.Error("Contact Form Error: message not stored", "error", err)
		case errors.As(err, &nerr):
			s.log.Error("Contact Form Error: message stored, notification failed", "id", nerr.MessageID, "error", err)
		default:
			s.log.Error("Contact Form Error", "error", err)
		}
		writeError(w, contact.StatusCode(err), "Internal Server Error")
		return
	}

	s.log.Info("Contact message delivered", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Home(r.Context()))
}

func (s *server) handleHero(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Hero(r.Context()))
}

func (s *server) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.About(r.Context()))
}

func (s *server) handleSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Skills(r.Context()))
}

func (s *server) handleExperience(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Experience(r.Context()))
}

func (s *server) handleProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Projects(r.Context()))
}

func (s *server) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	results, err := s.content.SearchProjects(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.log.Warn("Error searching projects", "query", r.URL.Query().Get("q"), "error", err)
		writeError(w, http.StatusBadRequest, "Invalid search query")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *server) handleProject(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	project, err := s.content.Project(r.Context(), slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.log.Error("Error fetching project", "slug", slug, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Service Unavailable")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *server) handleContactInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.ContactInfo(r.Context()))
}

// handleRevalidate drops cached content so the next read goes to the store,
// then asks the frontend to rebuild its pages.
func (s *server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if s.cfg.RevalidationSecret == "" || payload.Secret != s.cfg.RevalidationSecret {
		writeError(w, http.StatusUnauthorized, "Invalid secret")
		return
	}

	if s.cache != nil {
		s.cache.Flush()
	}
	go s.triggerRevalidation()

	writeJSON(w, http.StatusOK, map[string]any{"revalidated": true, "now": s.now().UnixMilli()})
}

func (s *server) triggerRevalidation() {
	if s.cfg.RevalidationURL == "" {
		s.log.Debug("NEXT_REVALIDATION_URL is not set")
		return
	}

	jsonPayload, _ := json.Marshal(map[string]string{"secret": s.cfg.RevalidationSecret})

	resp, err := s.http.Post(s.cfg.RevalidationURL, "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		s.log.Error("Error triggering revalidation", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("Revalidation failed", "status", resp.StatusCode)
	} else {
		s.log.Info("Revalidation triggered successfully")
	}
}

func (s *server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWTSecret == "" || !s.cfg.StudioAuthConfigured() {
		writeError(w, http.StatusServiceUnavailable, "Admin API not configured")
		return
	}

	var loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginData); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !checkStudioCredentials(s.cfg, loginData.Username, loginData.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokenString, err := issueToken(s.cfg.JWTSecret, loginData.Username, s.now())
	if err != nil {
		s.log.Error("Error generating token", "error", err)
		writeError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

func (s *server) handleContactCount(w http.ResponseWriter, r *http.Request) {
	n, err := contact.Count(r.Context(), s.admin)
	if err != nil {
		s.log.Error("Error counting contact messages", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *server) handlePurgeContacts(w http.ResponseWriter, r *http.Request) {
	n, err := contact.Purge(r.Context(), s.admin)
	if err != nil {
		s.log.Error("Error deleting contact messages", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	s.log.Info("Contact messages deleted", "deleted", n)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// studioFiles serves the built studio bundle. Unknown paths get index.html
// so client-side routes work.
func studioFiles(dir string) http.Handler {
	if dir == "" {
		return http.NotFoundHandler()
	}
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		name := filepath.Join(dir, filepath.FromSlash(rel))
		if info, err := os.Stat(name); err != nil || info.IsDir() && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
