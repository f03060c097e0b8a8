package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/config"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/csvimport"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/repository"
)

type Server struct {
	cfg      config.Config
	store    *repository.Store
	redis    *redis.Client
	importer *csvimport.Importer
	logger   *slog.Logger
}

// NewServer wires the HTTP surface. redisClient may be nil; the token
// denylist is then disabled and logout only clears the cookie.
func NewServer(cfg config.Config, store *repository.Store, redisClient *redis.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		redis:    redisClient,
		importer: csvimport.NewImporter(store),
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.cfg.Production {
		r.Use(s.requireHTTPS)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.With(s.requireAuth).Get("/auth/me", s.handleGetMe)

		r.Route("/contacts", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListContacts)
			r.Post("/", s.handleCreateContact)
			r.Post("/bulk-delete", s.handleBulkDeleteContacts)
			r.Post("/import", s.handleImportContacts)
			r.Get("/{contactID}", s.handleGetContact)
			r.Put("/{contactID}", s.handleUpdateContact)
			r.Patch("/{contactID}/status", s.handleUpdateContactStatus)
			r.Post("/{contactID}/notes", s.handleAddNote)
			r.Get("/{contactID}/calls", s.handleListContactCalls)
			r.Post("/{contactID}/calls", s.handleLogCall)
		})

		r.With(s.requireAuth).Get("/call-logs", s.handleListUserCalls)
		r.With(s.requireAuth).Get("/settings", s.handleGetSettings)
		r.With(s.requireAuth).Patch("/settings", s.handleUpdateSettings)
	})

	return r
}

// requireHTTPS redirects plain-HTTP requests that arrive through a
// proxy. Only mounted in production.
func (s *Server) requireHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proto := r.Header.Get("X-Forwarded-Proto")
		if !strings.Contains(proto, "https") {
			http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
