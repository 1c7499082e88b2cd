package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sanctumfront/internal/config"
	"github.com/sanctumfront/internal/gateway"
	"github.com/sanctumfront/internal/http"
	"github.com/sanctumfront/internal/logger"
	"github.com/sanctumfront/internal/session"
	"github.com/sanctumfront/internal/visitor"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Optional; missing file is fine
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		logger.InitLogger("production", true).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	appLogger := logger.InitLogger(cfg.Environment, cfg.LogJSON)

	if cfg.Session.Secret == config.DefaultSessionSecret {
		appLogger.Warn("SESSION_SECRET is not set, using the built-in development secret")
	}

	routes, err := gateway.LoadRoutes(cfg.RoutesFile)
	if err != nil {
		appLogger.Error("failed to load routes", "routes_file", cfg.RoutesFile, "error", err)
		os.Exit(1)
	}

	forwarder, err := gateway.NewForwarder(&gateway.Config{
		BackendURL:   cfg.BackendURL,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Routes:       routes,
	}, appLogger)
	if err != nil {
		appLogger.Error("failed to create forwarder", "error", err)
		os.Exit(1)
	}

	signer, err := visitor.NewSigner(cfg.Session.Secret, visitor.DefaultTTL)
	if err != nil {
		appLogger.Error("failed to create visitor signer", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(session.ClientFactory(cfg.FrontendURL, appLogger), appLogger)
	if err := sessions.StartSweeper(cfg.Session.SweepSchedule, cfg.Session.IdleTimeout); err != nil {
		appLogger.Error("failed to start session sweeper", "error", err)
		os.Exit(1)
	}
	defer sessions.Stop()

	appLogger.Info("configuration loaded",
		"environment", cfg.Environment,
		"server_address", cfg.ServerAddress,
		"backend_url", cfg.BackendURL,
		"frontend_url", cfg.FrontendURL,
		"routes", len(routes),
		"session_idle_timeout", cfg.Session.IdleTimeout,
	)

	server, err := http.NewServer(cfg, forwarder, sessions, signer)
	if err != nil {
		appLogger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error("server error", "error", err)
			sessions.Stop()
			os.Exit(1)
		}
	case <-quit:
		appLogger.Info("shutting down frontend...")
		if err := server.Shutdown(context.Background()); err != nil {
			appLogger.Error("shutdown error", "error", err)
		}
		<-errCh
	}
	appLogger.Info("frontend stopped")
}
