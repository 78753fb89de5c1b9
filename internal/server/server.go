// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the whole
// dependency graph is assembled in one place:
//
//	config → sqlite.DB ─┬→ AuthService  → AuthHandler
//	                    ├→ EntryService → EntryHandler, AIHandler
//	                    └→ MediaService → UploadHandler
//	        DiskStore  ──┘
//	        Gemini, linkpreview.Client → their handlers
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services (never the
// database). main.go stays minimal — load config, build the Server, Start.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/daily-diary/internal/ai"
	"github.com/sakif/daily-diary/internal/auth"
	"github.com/sakif/daily-diary/internal/config"
	"github.com/sakif/daily-diary/internal/handler"
	"github.com/sakif/daily-diary/internal/linkpreview"
	"github.com/sakif/daily-diary/internal/middleware"
	sqliteRepo "github.com/sakif/daily-diary/internal/repository/sqlite"
	"github.com/sakif/daily-diary/internal/service"
	"github.com/sakif/daily-diary/internal/storage"
)

// Server owns the router, the database connection, and the blob store
// directory. The database is closed during graceful shutdown so the WAL is
// flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph and registers every route.
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

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register     → create account, start session
//	POST   /api/auth/login        → start session
//	POST   /api/auth/logout       → end session
//	GET    /api/auth/me           → current user                [auth]
//	GET    /api/entries           → all entries, keyed by date  [auth]
//	GET    /api/entries/{date}    → one entry                   [auth]
//	PUT    /api/entries/{date}    → create/replace one entry    [auth]
//	DELETE /api/entries/{date}    → delete one entry            [auth]
//	POST   /api/upload            → attach a media file         [auth]
//	DELETE /api/upload/{id}       → remove one media item       [auth]
//	POST   /api/ai/summary        → generate+store day summary  [auth]
//	POST   /api/ai/insight        → reflect on a day            [auth]
//	POST   /api/link-preview      → metadata for a URL          [auth]
//	GET    /api/health            → liveness probe
//	GET    /uploads/*             → stored media files
//
// MIDDLEWARE ORDER MATTERS — middleware executes in the order it's added:
// RequestID first so the logger can include it, Recoverer before the logger
// so a panic still produces a request log line with a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500
	s.router.Use(middleware.Logger(s.logger))

	// === Shared infrastructure ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	blobs, err := storage.New(s.config.UploadDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	generator := ai.NewGemini(s.config.GeminiAPIKey, s.config.GeminiModel, "", s.logger)
	previews := linkpreview.New(s.logger)

	// === Services ===
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	entryService := service.NewEntryService(s.db, generator, s.logger)
	mediaService := service.NewMediaService(s.db, s.db, blobs, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	entryHandler := handler.NewEntryHandler(entryService, s.logger)
	uploadHandler := handler.NewUploadHandler(mediaService, s.logger)
	aiHandler := handler.NewAIHandler(entryService, s.logger)
	previewHandler := handler.NewLinkPreviewHandler(previews, s.logger)

	// === Uploaded files ===
	// GET /uploads/abc.png → serves {UploadDir}/abc.png. The media rows'
	// url fields point here.
	fileServer := http.FileServer(http.Dir(blobs.Dir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Public auth routes — these CREATE the session.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Everything else requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/entries", entryHandler.HandleGetAll)
			r.Get("/entries/{date}", entryHandler.HandleGetByDate)
			r.Put("/entries/{date}", entryHandler.HandleSave)
			r.Delete("/entries/{date}", entryHandler.HandleDelete)

			r.Post("/upload", uploadHandler.HandleUpload)
			r.Delete("/upload/{id}", uploadHandler.HandleDelete)

			r.Post("/ai/summary", aiHandler.HandleSummary)
			r.Post("/ai/insight", aiHandler.HandleReflect)

			r.Post("/link-preview", previewHandler.HandlePreview)
		})
	})

	return nil
}

// Handler exposes the assembled router, mainly so tests can drive the full
// middleware+routing stack through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// signal loop. Safe to call after a failed Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully:
//
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests to finish
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads and AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
			slog.Bool("aiEnabled", s.config.GeminiAPIKey != ""),
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
