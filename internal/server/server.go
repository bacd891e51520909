package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"bank-portal/internal/api"
	"bank-portal/internal/auth"
	"bank-portal/internal/config"
	"bank-portal/internal/domain"
	"bank-portal/internal/handler"
	"bank-portal/internal/repository"
	"bank-portal/internal/router"
	"bank-portal/internal/session"
	"bank-portal/internal/signing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
)

// Server represents the portal HTTP server
type Server struct {
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	db      *sql.DB
	logger  *slog.Logger
	port    string
}

// NewServer creates a new server instance with the session backend named
// in the configuration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, db, err := openSessionStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	return newServer(cfg, store, db, logger), nil
}

func openSessionStore(cfg *config.Config, logger *slog.Logger) (domain.SessionStore, *sql.DB, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendFile:
		logger.Info("Using file session store", "path", cfg.SessionFile)
		return session.NewFileStore(cfg.SessionFile), nil, nil

	case config.SessionBackendPostgres:
		db, err := sql.Open("postgres", cfg.GetDBConnectionString())
		if err != nil {
			return nil, nil, err
		}

		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := repository.Migrate(db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}

		logger.Info("Successfully connected to database")
		return repository.NewStore(db, logger).Session(), db, nil

	default:
		logger.Info("Using in-memory session store")
		return session.NewMemoryStore(), nil, nil
	}
}

func newServer(cfg *config.Config, store domain.SessionStore, db *sql.DB, logger *slog.Logger) *Server {
	endpoints := api.NewEndpoints(cfg.APIBaseURL)
	signer := signing.NewSigner(signing.StaticSecret(cfg.HMACSecret))

	authClient := auth.NewClient(auth.ClientConfig{
		LoginURL:   endpoints.Auth.Login,
		SignLogin:  cfg.SignLogin,
		DefaultTTL: cfg.SessionTTL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, store, signer, logger)

	checker := session.NewChecker(store, logger)
	guard := router.NewGuard(router.Routes, checker, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authClient, checker)
	balanceHandler := handler.NewBalanceHandler()
	viewHandler := handler.NewViewHandler(guard)

	// Setup router
	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger))

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/auth/status", authHandler.Status).Methods("GET")
	r.HandleFunc("/accounts/balance-preview", balanceHandler.Preview).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	// Everything else is a portal page.
	r.PathPrefix("/").HandlerFunc(viewHandler.Navigate).Methods("GET")

	// rs/cors treats an empty origin list as "*", so only enable it when
	// origins are configured.
	var h http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}).Handler(r)
	}

	return &Server{
		router:  r,
		handler: h,
		db:      db,
		logger:  logger,
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			// Create response wrapper to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
				"request_id", requestID,
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	// Close the database after in-flight requests are done with it.
	if s.db != nil {
		s.db.Close()
	}
	return err
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// Handler returns the full handler chain for testing purposes
func (s *Server) Handler() http.Handler {
	return s.handler
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		// Test environment - use discard logger
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := launch(server, cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}

// launch starts s on port and releases its database if the listener
// cannot be opened.
func launch(s *Server, port string) (string, error) {
	bound, err := s.Start(port)
	if err != nil {
		s.Stop(context.Background())
		return "", err
	}
	return bound, nil
}
