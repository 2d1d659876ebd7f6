// Package web provides the HTTP server and handlers for the record
// service. It is the only layer aware of transport formats: the JSON API
// under /api and the form/redirect HTML pages share the same service.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"recordbook/internal/config"
	"recordbook/internal/core"
	"recordbook/internal/export"
)

//go:embed templates static
var embedded embed.FS

// Server is the HTTP server for the record application.
type Server struct {
	service   *core.Service
	files     *export.FileWriter
	cfg       *config.Config
	router    *chi.Mux
	templates *template.Template
	server    *http.Server
}

// NewServer creates a Server wired to the given service. The file writer
// may be nil when auto export is disabled.
func NewServer(service *core.Service, files *export.FileWriter, cfg *config.Config) (*Server, error) {
	tmpl, err := template.ParseFS(embedded, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		service:   service,
		files:     files,
		cfg:       cfg,
		router:    chi.NewRouter(),
		templates: tmpl,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(embedded, "static")
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages (form/redirect contract)
	s.router.Get("/", s.handleWelcome)
	s.router.Get("/main", s.handleMainPage)
	s.router.Post("/add", s.handleAddForm)
	s.router.Post("/update/{id}", s.handleUpdateForm)
	s.router.Post("/delete/{id}", s.handleDeleteForm)

	// JSON/REST contract
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/records", s.handleListRecords)
		r.Post("/records", s.handleCreateRecord)
		r.Put("/records/{id}", s.handleUpdateRecord)
		r.Delete("/records/{id}", s.handleDeleteRecord)

		r.Post("/search", s.handleSearchRecords)

		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/export/json", s.handleExportJSON)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")

		next.ServeHTTP(w, r)
	})
}
