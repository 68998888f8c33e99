// Package server is the composition root: it wires the repositories,
// services, middleware and handlers together and owns the HTTP server's
// lifecycle.
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
	"github.com/go-chi/cors"

	"github.com/jdogcodey/blog-api-backend/internal/auth"
	"github.com/jdogcodey/blog-api-backend/internal/config"
	"github.com/jdogcodey/blog-api-backend/internal/handler"
	"github.com/jdogcodey/blog-api-backend/internal/middleware"
	sqliteRepo "github.com/jdogcodey/blog-api-backend/internal/repository/sqlite"
	"github.com/jdogcodey/blog-api-backend/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency graph. Each layer receives only the
// interfaces it needs: services get repositories, handlers get services,
// middleware gets the verifier — nothing reaches around its layer, and
// nothing is registered globally.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	users := s.db.Users()
	posts := s.db.Posts()
	comments := s.db.Comments()

	passwords := auth.NewPasswordService(s.config.BcryptCost)
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	verifier := auth.NewVerifier(users, passwords, tokens)
	guard := auth.NewMiddleware(verifier, posts, handler.WriteError)

	authService := service.NewAuthService(users, passwords, tokens, verifier, s.logger)
	blogService := service.NewBlogService(users, posts, comments, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	blogHandler := handler.NewBlogHandler(blogService, s.logger)

	s.router.Get("/", authHandler.HandleHome)
	s.router.Get("/login", authHandler.HandleLoginPage)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/signup", authHandler.HandleSignupPage)
	s.router.Post("/signup", authHandler.HandleSignup)

	s.router.With(guard.RequireAuth).Get("/user", blogHandler.HandleOwnProfile)
	s.router.With(guard.OptionalAuth).Get("/user/{id}", blogHandler.HandleProfile)

	s.router.Route("/posts", func(r chi.Router) {
		r.With(guard.RequireAuth).Get("/", blogHandler.HandleOwnPosts)
		r.With(guard.RequireAuth).Post("/new", blogHandler.HandleCreatePost)
		r.With(guard.OptionalAuth).Get("/{postId}", blogHandler.HandlePost)
		r.With(guard.RequireAuth, guard.RequirePostOwner).Put("/{postId}", blogHandler.HandleUpdatePost)
		r.With(guard.RequireAuth, guard.RequirePostOwner).Delete("/{postId}", blogHandler.HandleDeletePost)
		r.With(guard.RequireAuth).Post("/{postId}/comments/new", blogHandler.HandleCreateComment)
	})

	return nil
}

// Handler exposes the router, mainly for httptest in the handler tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Start does this
// itself; Close exists for tests and callers that never Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
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
