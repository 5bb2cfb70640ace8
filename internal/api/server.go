// Package api provides the HTTP server and handlers for the UTub application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/utubapp/utub-server/internal/auth"
	"github.com/utubapp/utub-server/internal/http/response"
	"github.com/utubapp/utub-server/internal/service"
	"github.com/utubapp/utub-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions    *auth.Service
	utubService *service.UTubService
	urlService  *service.URLService
	tagService  *service.TagService
	validator   *validation.Validator
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(sessions *auth.Service, utubService *service.UTubService, urlService *service.URLService, tagService *service.TagService, logger *slog.Logger) *Server {
	s := &Server{
		sessions:    sessions,
		utubService: utubService,
		urlService:  urlService,
		tagService:  tagService,
		validator:   validation.New(),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRFToken", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/utubs", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Use(s.requireValidatedEmail)
		r.Use(s.requireCSRF)

		r.Post("/", s.handleCreateUTub)

		r.Route("/{utubID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteUTub)
			r.Post("/members", s.handleAddMember)

			r.Route("/urls", func(r chi.Router) {
				r.Post("/", s.handleAddURL)

				r.Route("/{utubUrlID}", func(r chi.Router) {
					r.Get("/", s.handleGetURL)
					r.Patch("/", s.handleUpdateURLString)
					r.Patch("/title", s.handleUpdateURLTitle)
					r.Delete("/", s.handleRemoveURL)

					r.Post("/tags", s.handleAttachTag)
					r.Delete("/tags/{utubUrlTagID}", s.handleDetachTag)
					r.Put("/tags/{utubTagID}", s.handleReplaceTag)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", s.handleCreateTag)
				r.Delete("/{utubTagID}", s.handleDeleteTag)
			})
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, "healthy", nil, s.logger)
}
