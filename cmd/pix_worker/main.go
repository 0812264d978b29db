package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/data/postgres"
	"github.com/pix-transfer-service/internal/logger"
	"github.com/pix-transfer-service/internal/platform/messaging/producers"
	"github.com/pix-transfer-service/internal/platform/persistence"
	"github.com/pix-transfer-service/internal/worker"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("pix_worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting PIX worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB, cfg.Outbox.MaxRetryAttempts)
	boletoRepo := postgres.NewBoletoRepository(log, postgresDB)

	// Initialize Kafka producers
	eventProducer, err := producers.NewTransferEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize transfer event producer", "error", err)
		os.Exit(1)
	}

	alertProducer, err := producers.NewAlertProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize alert producer", "error", err)
		os.Exit(1)
	}
	// alertProducer is nil when the alert topic is not configured

	// Initialize the outbox relay
	var alertPublisher producers.AlertPublisher
	if alertProducer != nil {
		alertPublisher = alertProducer
	}
	relay := worker.NewOutboxRelay(&cfg.Outbox, outboxRepo, eventProducer, alertPublisher, log)

	// Initialize the settlement worker with its webhook notifier
	notifier, err := worker.NewWebhookNotifier(log, cfg.Settlement.NotifierPoolSize, cfg.Settlement.WebhookTimeout)
	if err != nil {
		log.Error("Failed to initialize webhook notifier", "error", err)
		os.Exit(1)
	}
	settlementWorker := worker.NewSettlementWorker(&cfg.Settlement, postgresDB, boletoRepo, notifier, log)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start the outbox relay in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Start(appCtx)
	}()

	// Start the settlement worker in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		settlementWorker.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal
	<-quit
	log.Info("Shutdown signal received")

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Shutdown the webhook notifier pool
	notifier.Shutdown()

	// Close Kafka producers
	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing transfer event producer", "error", err)
	}
	if alertProducer != nil {
		if err = alertProducer.Close(); err != nil {
			log.Error("Error closing alert producer", "error", err)
		}
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err != nil {
		log.Error("PIX worker shutdown completed with errors")
	} else {
		log.Info("PIX worker shutdown completed successfully")
	}
}
