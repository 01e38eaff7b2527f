package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/api"
	"github.com/yourusername/bookqueue-go/internal/app"
	"github.com/yourusername/bookqueue-go/internal/infrastructure"
	"github.com/yourusername/bookqueue-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: search standard locations)")

func main() {
	flag.Parse()

	// Load configuration
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create state and logs directories
	if err := os.MkdirAll(filepath.Dir(config.Queue.DatabasePath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create state directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(config.Logging.LogsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logs directory: %v\n", err)
		os.Exit(1)
	}

	// Initialize main logger
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize multi-logger (poll and error event files)
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.LogsDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize event logger: %v\n", err)
		os.Exit(1)
	}
	defer multiLog.Close()

	log.Info("Starting bookqueue server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("remote", config.Remote.BaseURL),
		zap.Duration("poll_interval", config.Remote.PollInterval))

	// Initialize repository
	repo, err := infrastructure.NewSQLiteStateRepository(config.Queue.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Initialize store (restores history and notifications from repository)
	store := app.NewStore(&config.Queue, repo, log)

	// Initialize remote client
	remote := infrastructure.NewRemoteClient(&config.Remote, log)

	// Desktop notifications are optional
	var announcer app.Announcer
	if config.Notification.Enabled {
		announcer = infrastructure.NewDesktopNotifier(&config.Notification, log)
	}

	// Wire the poll pipeline
	reconciler := app.NewReconciler(store, log)
	engine := app.NewNotificationEngine(store, announcer, config.Queue.TickInterval, multiLog, log)
	poller := app.NewPoller(remote, reconciler, engine, config.Remote.PollInterval, multiLog, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		log.Fatal("Failed to start poller", zap.Error(err))
	}

	// Expiry ticker for visible notifications
	go engine.Run(ctx)

	// Command service for the HTTP API
	commands := app.NewCommandService(remote, store, log)

	// Setup HTTP router
	router := api.SetupRouter(store, commands, poller, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop poller
	if err := poller.Stop(); err != nil {
		log.Error("Error stopping poller", zap.Error(err))
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
