package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanctumfront/internal/config"
	"github.com/sanctumfront/internal/gateway"
	"github.com/sanctumfront/internal/session"
	"github.com/sanctumfront/internal/visitor"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wraps the HTTP server
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	forwarder  *gateway.Forwarder
	sessions   *session.Store
	visitors   *visitor.Signer
	httpServer *http.Server
}

// NewServer creates a new HTTP server. Paths without a page route fall through to the forwarder.
func NewServer(cfg *config.Config, forwarder *gateway.Forwarder, sessions *session.Store, visitors *visitor.Signer) (*Server, error) {
	// Set Gin mode based on environment
	if cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware())
	engine.SetHTMLTemplate(tmpl)

	server := &Server{
		config:    cfg,
		engine:    engine,
		forwarder: forwarder,
		sessions:  sessions,
		visitors:  visitors,
	}

	server.setupRoutes()

	return server, nil
}

// Handler exposes the engine, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

const (
	readTimeout     = 30 * time.Second  // 30s for reading request
	writeTimeout    = 120 * time.Second // forwarded calls may be slow
	idleTimeout     = 120 * time.Second // 2 minutes idle
	shutdownTimeout = 30 * time.Second
)

// Run starts the HTTP server and blocks until it stops.
// A graceful Shutdown makes Run return nil.
func (s *Server) Run() error {
	addr := s.config.ServerAddress
	if addr == "" {
		addr = ":3000"
	}

	// Configure server with timeouts
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	slog.Info("frontend listening",
		"address", addr,
		"backend_url", s.config.BackendURL,
		"frontend_url", s.config.FrontendURL,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
