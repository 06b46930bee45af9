/**
 * @description
 * Entry point for the overdraft service. It consumes account-overdrawn
 * events, aggregates overdraft history per customer and account in process
 * memory, assesses fees, and publishes administrative overdraft-limit
 * updates back to the account service.
 *
 * Key features:
 * - Optional Redis-backed deduplication of redelivered events.
 * - Aggregation state is volatile: empty at startup, gone at shutdown.
 * - Graceful shutdown of the HTTP server and broker connections.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/acmebank/overdraft-pipeline/internal/overdraft/api"
	"github.com/acmebank/overdraft-pipeline/internal/overdraft/app"
	"github.com/acmebank/overdraft-pipeline/internal/overdraft/config"
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

	producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ producer: %v", err)
	}
	defer producer.Close()

	// Optional idempotency barrier for redelivered events.
	var dedup app.Deduplicator
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		dedup = app.NewRedisDeduplicator(client)
		log.Println("Redis deduplication enabled")
	} else {
		log.Println("REDIS_URL not set; redelivered events are counted again")
	}

	aggregator := app.NewAggregator()
	overdrawnConsumer := app.NewOverdrawnConsumer(aggregator, producer, dedup)
	service := app.NewService(aggregator, producer)

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ consumer: %v", err)
	}
	defer consumer.Close()

	go func() {
		log.Printf("Starting consumer for '%s'...", app.ExchangeAccountOverdrawn)
		err := consumer.Consume(app.ExchangeAccountOverdrawn, app.QueueAccountOverdrawn,
			app.RoutingKeyAccountOverdrawn, overdrawnConsumer.HandleOverdrawn)
		if err != nil {
			log.Printf("Consumer error: %v", err)
		}
	}()

	router := api.NewRouter(api.NewHandler(service))
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

	log.Println("Overdraft service is running with API and event consumer.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down overdraft-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
