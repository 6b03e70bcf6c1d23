/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the workshop POS server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags override environment)
  2. Initialize structured logger
  3. Initialize SQLite store and seed the default catalog on first run
  4. Build ledgers, settings registry, and API handler
  5. Start low-stock digest scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: POS_PORT or 8080)
  -db      SQLite database path (default: POS_DB or workshop.db)
           Use ":memory:" for an in-memory database
  -env     Optional .env file to load

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/workshop.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workshop-pos/api"
	"github.com/warp/workshop-pos/config"
	"github.com/warp/workshop-pos/pkg/logger"
	"github.com/warp/workshop-pos/pos"
	"github.com/warp/workshop-pos/store/sqlite"
)

func main() {
	// Flags
	port := flag.String("port", "", "HTTP server port (overrides POS_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides POS_DB)")
	envFile := flag.String("env", "", "Optional .env file to load")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.Store.Path, logger.Named(log, "store"))
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()

	// Build ledgers and registries
	inventory, err := pos.NewInventory(ctx, store)
	if err != nil {
		log.Fatal("failed to load inventory", zap.Error(err))
	}
	if err := inventory.Seed(ctx); err != nil {
		log.Fatal("failed to seed default catalog", zap.Error(err))
	}

	sales, err := pos.NewSalesLedger(ctx, store)
	if err != nil {
		log.Fatal("failed to load sales ledger", zap.Error(err))
	}
	settings := pos.NewSettingsRegistry(store)

	// API handler and router
	handler := api.NewHandler(store, inventory, sales, settings, logger.Named(log, "api"))
	router := api.NewRouter(handler)

	// Low-stock digest
	var scheduler *api.StockAlertScheduler
	if cfg.Alerts.Enabled {
		scheduler = api.NewStockAlertScheduler(inventory, cfg.Alerts.CronSchedule, logger.Named(log, "alerts"))
		if err := scheduler.Start(); err != nil {
			log.Fatal("failed to start stock alert scheduler", zap.Error(err))
		}
	}

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.String("addr", "http://localhost:"+cfg.Server.Port),
			zap.String("db", cfg.Store.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info("server stopped")
}
