/**
 * @description
 * Entry point for the account service. It owns the account records and the
 * balance state machine, publishes account-overdrawn events with publisher
 * confirms, and consumes overdraft-update events that feed new overdraft
 * limits back into accounts.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Uses Postgres when DATABASE_URL is set, otherwise the in-memory store.
 * - Wires the ledger with the confirmed overdrawn publisher.
 * - Starts the overdraft-update consumer and implements graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/acmebank/overdraft-pipeline/internal/account/api"
	"github.com/acmebank/overdraft-pipeline/internal/account/app"
	"github.com/acmebank/overdraft-pipeline/internal/account/config"
	"github.com/acmebank/overdraft-pipeline/internal/account/store"
	"github.com/acmebank/overdraft-pipeline/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Pick the account store: Postgres when configured, in-memory otherwise.
	var repo store.AccountRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer dbpool.Close()
		repo = store.NewPostgresAccountRepository(dbpool)
		log.Println("Database connection established")
	} else {
		repo = store.NewMemoryAccountRepository()
		log.Println("DATABASE_URL not set; using in-memory account store")
	}

	// The producer runs in confirm mode: withdrawal responses gate on the
	// broker's ack, so a broker connection is required at startup.
	producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ producer: %v", err)
	}
	defer producer.Close()

	publisher := app.NewConfirmedOverdrawnPublisher(producer)
	ledger := app.NewLedger(repo, publisher)
	limitConsumer := app.NewLimitUpdateConsumer(ledger)

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ consumer: %v", err)
	}
	defer consumer.Close()

	go func() {
		log.Printf("Starting consumer for '%s'...", app.ExchangeOverdraftUpdate)
		err := consumer.Consume(app.ExchangeOverdraftUpdate, "account_service_overdraft_update",
			app.RoutingKeyOverdraftUpdate, limitConsumer.HandleMessage)
		if err != nil {
			log.Printf("Consumer error: %v", err)
		}
	}()

	router := api.NewRouter(api.NewHandler(ledger, publisher), cfg.InternalAPIKey)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	log.Println("Account service is running with API and event consumer.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down account-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
