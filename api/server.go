package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/config"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/services"
)

// tokenVerifier checks a bearer token's signature and expiry.
type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// epochReader returns a user's current token epoch.
type epochReader interface {
	Current(ctx context.Context, userID uuid.UUID) (int, error)
}

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Database database.Database
	Tokens   tokenVerifier
	Epochs   epochReader
	Users    *services.UserService
	Blogs    *services.BlogService
	// Cache, when set, is checked by /health.
	Cache pinger
	// UploadDir, when set, is served read-only under /uploads.
	UploadDir string
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) (Server, error) {
	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps,
		withOrigins(cfg.Origins()),
		withMaxUploadBytes(cfg.MaxUploadBytes),
		withStartupTime(startupTime),
	)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	origins        []string
	maxUploadBytes int64
	startupTime    time.Time
}

func withOrigins(origins []string) func(*router) {
	return func(r *router) {
		r.origins = origins
	}
}

func withMaxUploadBytes(n int64) func(*router) {
	return func(r *router) {
		r.maxUploadBytes = n
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{
		maxUploadBytes: 10 << 20,
		startupTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(requestIDMiddleware)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware)

	if len(router.origins) > 0 {
		chiRouter.Use(corsMiddleware(router.origins))
	}

	// Initialize all handlers
	handlers := initializeHandlers(deps, router)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Tokens, deps.Epochs)

	setupPublicRoutes(chiRouter, handlers, deps.UploadDir)
	setupUserRoutes(chiRouter, handlers, authMiddleware)
	setupAdminRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
