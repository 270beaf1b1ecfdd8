// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (server_test drives the whole app through Handler())
// - Clean (main.go stays minimal — read env, start the server)
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	Config (env) + logger → passed to Server
//	Server.New() creates: sqlite.DB → services → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
// Nothing in the app is a package-level global: the database pool and the
// session signing key both live on the Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/handler"
	"github.com/sakif/todolist/internal/middleware"
	sqliteRepo "github.com/sakif/todolist/internal/repository/sqlite"
	"github.com/sakif/todolist/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from env vars in one place (cmd/server)
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	// SessionSecret signs session tokens. Empty means "generate a random key
	// at startup", which logs everyone out on every restart.
	SessionSecret string

	// StrictOwnership makes by-id list and task routes answer 404 for lists
	// the signed-in user did not create.
	StrictOwnership bool

	// PasswordIterations overrides the PBKDF2 work factor. Zero means the
	// production default; tests set it low.
	PasswordIterations int
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown, or by Close().
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
//  1. Open the database (sqlite.New)
//  2. Create the session signing key and token/password services
//  3. Create the service layer with the repository interfaces
//  4. Create the handlers with the services
//  5. Wire handlers to routes
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
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
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the router. Tests serve it with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown; tests that never
// call Start close the server themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	public:
//	GET  /static/*                 → static files (CSS)
//	GET  /register                 → registration form
//	POST /register                 → create account
//	GET  /                         → login form
//	POST /                         → log in
//	GET  /logout                   → clear session
//	behind auth.RequireSession:
//	GET  /home                     → the user's lists
//	GET  /new_list                 → new-list form
//	POST /new_list                 → create list
//	GET  /delete_list/{listID}     → delete list (and its tasks)
//	GET  /delete_task/{taskID}     → delete task
//	GET  /{listID}                 → show list
//	GET  /{listName}/{listID}      → new-task form
//	POST /{listName}/{listID}      → create task
//
// ROUTE MATCHING:
// chi tries static segments before parameters, so /home, /new_list and
// /register never fall into /{listID}. The {listID} patterns only accept
// digits; anything else is a 404 rather than a handler call with a bad id.
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Logger — logs each request with timing info and the request ID
// 4. Recoverer — catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Static Files ===
	// So GET /static/css/style.css → serves {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Sessions ===
	secret := s.config.SessionSecret
	if secret == "" {
		var err error
		secret, err = auth.GenerateSecret()
		if err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		s.logger.Info("using a random session secret; sessions end when the server restarts")
	}
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()
	if s.config.PasswordIterations > 0 {
		passwords = auth.NewPasswordServiceForTest(s.config.PasswordIterations)
	}

	// === Services ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → implements all three repository interfaces
	//   services receive the interfaces, handlers receive the services.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	listService := service.NewListService(s.db, s.config.StrictOwnership, s.logger)
	taskService := service.NewTaskService(s.db, listService, s.logger)

	// === Handlers ===
	renderer, err := handler.NewTemplateRenderer(s.config.TemplateDir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	pages := handler.NewPages(renderer, listService, s.logger)

	authHandler := handler.NewAuthHandler(authService, pages, s.logger)
	listHandler := handler.NewListHandler(listService, taskService, pages, s.logger)
	taskHandler := handler.NewTaskHandler(listService, taskService, pages, s.logger)

	s.router.NotFound(pages.HandleNotFound)

	// === Public Routes ===
	s.router.Get("/register", authHandler.HandleRegisterForm)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Get("/", authHandler.HandleLoginForm)
	s.router.Post("/", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === Protected Routes ===
	// Group shares the router's tree but adds middleware only for the routes
	// registered inside it.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(tokens, authService, s.logger))

		r.Get("/home", listHandler.HandleHome)
		r.Get("/new_list", listHandler.HandleNewListForm)
		r.Post("/new_list", listHandler.HandleNewList)
		r.Get("/delete_list/{listID}", listHandler.HandleDeleteList)
		r.Get("/delete_task/{taskID}", taskHandler.HandleDeleteTask)
		r.Get("/{listID:[0-9]+}", listHandler.HandleShowList)
		r.Get("/{listName}/{listID:[0-9]+}", taskHandler.HandleNewTaskForm)
		r.Post("/{listName}/{listID:[0-9]+}", taskHandler.HandleNewTask)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
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

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("strictOwnership", s.config.StrictOwnership),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
