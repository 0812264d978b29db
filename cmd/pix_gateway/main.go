package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/data/postgres"
	"github.com/pix-transfer-service/internal/logger"
	"github.com/pix-transfer-service/internal/pix_gateway"
	"github.com/pix-transfer-service/internal/pix_gateway/service"
	"github.com/pix-transfer-service/internal/platform/fraudclient"
	"github.com/pix-transfer-service/internal/platform/ledgerclient"
	"github.com/pix-transfer-service/internal/platform/persistence"
	"github.com/pix-transfer-service/internal/saga"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("pix_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB, cfg.Outbox.MaxRetryAttempts)
	boletoRepo := postgres.NewBoletoRepository(log, postgresDB)

	// Initialize external clients
	ledgerClient := ledgerclient.NewClient(log, &cfg.Ledger)

	var fraudAnalyzer fraudclient.Analyzer
	if cfg.Fraud.Enabled {
		fraudAnalyzer = fraudclient.NewClient(log, &cfg.Fraud)
		log.Info("Fraud analysis enabled", "base_url", cfg.Fraud.BaseURL)
	}

	// Initialize the transfer orchestrator and services
	orchestrator := saga.NewOrchestrator(log, postgresDB, transactionRepo, outboxRepo, ledgerClient, fraudAnalyzer)
	transferService := service.NewTransferService(log, orchestrator, transactionRepo)
	boletoService := service.NewBoletoService(log, boletoRepo)

	// Initialize REST server
	server := pix_gateway.NewServer(log, cfg, transferService, boletoService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
