package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/usersvc/apiserver/config"
	"github.com/usersvc/apiserver/internal/db"
	"github.com/usersvc/apiserver/internal/handlers"
	"github.com/usersvc/apiserver/internal/logger"
	"github.com/usersvc/apiserver/internal/mq"
	"github.com/usersvc/apiserver/internal/services"
	"github.com/usersvc/apiserver/internal/store"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
}

// New opens the database and event backend and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, dialect, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := mq.Open(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var publisher services.EventPublisher
	if events != nil {
		publisher = mq.NewUserEventPublisher(events, cfg.Events.Channel)
	}

	userRepo := store.NewUserRepository(dbConn, dialect)
	userService := services.NewUserService(userRepo, publisher)

	srv := NewWithHandler(cfg, Routes(cfg.CORS, userRepo, userService))
	srv.db = dbConn
	srv.events = events
	return srv, nil
}

// Routes builds the router serving the users API.
func Routes(corsCfg config.CORSConfig, health handlers.Pinger, userService handlers.UserService) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		corsHandler(corsCfg),
		middleware.Recoverer,
		logger.RequestLogger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(health))
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService)
	})
	return router
}

func corsHandler(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}

// NewWithHandler wraps router in an http.Server configured from cfg.
func NewWithHandler(cfg config.Config, router *chi.Mux) *Server {
	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router}
}

// Router exposes the chi router.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the event backend and
// the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		if closeErr := s.events.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("close events backend")
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("close database")
		}
	}
	return err
}
