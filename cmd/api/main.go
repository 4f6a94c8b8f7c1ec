package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/personality-engine/internal/config"
	"github.com/jwebster45206/personality-engine/internal/handlers"
	"github.com/jwebster45206/personality-engine/internal/logger"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Personality API",
		"port", cfg.Port,
		"environment", cfg.Environment)

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	eventQueue := queue.NewEventQueue(queueClient, log)
	broadcaster := events.NewBroadcaster(queueClient.GetRedisClient(), log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(queueClient, log))
	mux.Handle("/v1/characters/", handlers.NewCharacterHandler(eventQueue, broadcaster, log))
	mux.Handle("/v1/events/", handlers.NewEventsHandler(broadcaster, log))

	// Cancelled on shutdown so open SSE streams return.
	baseCtx, cancelStreams := context.WithCancel(context.Background())

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE stream stays open
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	cancelStreams()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	log.Info("Server exited")
}
