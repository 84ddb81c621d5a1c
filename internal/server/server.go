// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: handlers, middleware and routes are wired
// here and nowhere else.
//
//	config → OpenService (repository → persistence → WorkshopService)
//	       → handlers → chi router → http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/workshop/internal/config"
	"github.com/sakif/workshop/internal/handler"
	"github.com/sakif/workshop/internal/middleware"
	"github.com/sakif/workshop/internal/service"
)

// Server represents the HTTP server and its dependencies.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	svc    *service.WorkshopService
}

// New creates a Server around an already loaded service.
func New(cfg *config.Config, logger *slog.Logger, svc *service.WorkshopService) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		svc:    svc,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz
// *      /api/tools/...     tools, duplicate, card
// *      /api/themes/...    themes, sequence ops, prompt, card
// *      /api/vault/...     vault entries
// GET    /api/ui            PUT /api/ui
// GET    /api/backup        POST /api/backup?mode=merge|overwrite
// POST   /api/reset
//
// Middleware runs in the order it is added: RequestID first so the logger
// can report it, Recoverer last so it sees panics from every handler.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	tools := handler.NewToolHandler(s.svc, s.logger)
	themes := handler.NewThemeHandler(s.svc, s.logger)
	vault := handler.NewVaultHandler(s.svc, s.logger)
	workshop := handler.NewWorkshopHandler(s.svc, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/tools", tools.Routes)
		r.Route("/themes", themes.Routes)
		r.Route("/vault", vault.Routes)

		r.Get("/ui", workshop.HandleGetUI)
		r.Put("/ui", workshop.HandlePutUI)
		r.Get("/backup", workshop.HandleExport)
		r.Post("/backup", workshop.HandleImport)
		r.Post("/reset", workshop.HandleReset)
	})
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to ShutdownTimeout to finish.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.Storage),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		<-serverErrors
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
