// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This package is the composition root: main.go hands it a Config and a
// logger, and New wires the whole dependency chain in one place —
//
//	sqlite.DB → services (pool, guess, auth) → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services (never
// the database). Keeping the wiring out of main.go means tests can
// stand up the same server without running the binary.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rmaia/bolao/internal/auth"
	"github.com/rmaia/bolao/internal/handler"
	"github.com/rmaia/bolao/internal/middleware"
	sqliteRepo "github.com/rmaia/bolao/internal/repository/sqlite"
	"github.com/rmaia/bolao/internal/service"
)

// Config holds server configuration, loaded from the environment by
// main.go.
type Config struct {
	Port   int
	DBPath string

	// Auth. When JWTSecret is empty the server still starts, but every
	// route that needs an identity is left unregistered.
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown in Start, after in-flight requests
// have drained.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires all routes. On error the database is
// closed before returning, so a failed New leaks nothing.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route map:
//
//	POST /api/pools                                    create pool (auth optional)
//	POST /api/pools/join                               join by code
//	GET  /api/pools                                    caller's pools
//	GET  /api/pools/{id}                               one pool
//	GET  /api/pools/{id}/games                         games + caller's guesses
//	POST /api/pools/{poolId}/games/{gameId}/guesses    submit a guess
//	GET  /api/pools/count, /api/guesses/count,
//	     /api/users/count                              public counters
//	GET  /api/me                                       current user
//	GET  /auth/google/login, /auth/google/callback     OAuth flow
//	POST /auth/logout                                  clear the session cookie
//
// Middleware order matters: RequestID and RealIP run first so the
// logger and Recoverer see the enriched request.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	poolService := service.NewPoolService(s.db, s.logger)
	guessService := service.NewGuessService(s.db, s.db, s.logger)

	poolHandler := handler.NewPoolHandler(poolService, s.logger)
	guessHandler := handler.NewGuessHandler(guessService, s.logger)

	// Public counters — the landing page shows them before login.
	s.router.Get("/api/pools/count", poolHandler.HandleCount)
	s.router.Get("/api/guesses/count", guessHandler.HandleCount)

	if s.config.JWTSecret == "" {
		// Without a signing key there is no way to establish identity,
		// and almost every route needs one. Register nothing else.
		s.logger.Warn("JWT secret not configured — authenticated routes disabled")
		return nil
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, s.logger)
	authHandler := handler.NewAuthHandler(
		auth.NewGoogleProvider(s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL),
		authService,
		s.logger,
	)

	s.router.Get("/api/users/count", authHandler.HandleCountUsers)

	if s.config.GoogleClientID != "" && s.config.GoogleClientSecret != "" {
		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/google/login", authHandler.HandleGoogleLogin)
			r.Get("/google/callback", authHandler.HandleGoogleCallback)
			r.Post("/logout", authHandler.HandleLogout)
		})
	} else {
		s.logger.Warn("Google OAuth not configured — login routes disabled")
	}

	// Pool creation is special: it works for anonymous callers too, so
	// it takes OptionalAuth rather than RequireAuth.
	s.router.With(auth.OptionalAuth(tokens)).Post("/api/pools", poolHandler.HandleCreate)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/api/me", authHandler.HandleMe)

		r.Post("/api/pools/join", poolHandler.HandleJoin)
		r.Get("/api/pools", poolHandler.HandleList)
		r.Get("/api/pools/{id}", poolHandler.HandleGetByID)
		r.Get("/api/pools/{id}/games", guessHandler.HandleListGames)
		r.Post("/api/pools/{poolId}/games/{gameId}/guesses", guessHandler.HandleSubmit)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to finish, and close the database (flushing the WAL and
// releasing the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
