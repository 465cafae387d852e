package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"clanhall/application"
	"clanhall/config"
	"clanhall/database"
	"clanhall/infrastructure"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting clanhall service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize NATS
	log.Printf("Connecting to NATS at %s...", cfg.NATSServers)
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		natsClient.Close()
		db.Close()
		return fmt.Errorf("failed to ensure domain event stream: %w", err)
	}
	log.Println("NATS connection established successfully")

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)

	// Start the lot closer worker
	lotCloser := application.NewLotCloserWorker(uowFactory, cfg.LotDuration)
	stopLotCloser := lotCloser.Start(ctx)

	// Wait for context cancellation
	log.Printf("Service is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down service...")

	stopLotCloser()
	natsClient.Close()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
