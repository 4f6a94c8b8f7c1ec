package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/personality-engine/internal/config"
	"github.com/jwebster45206/personality-engine/internal/logger"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
	"github.com/jwebster45206/personality-engine/internal/worker"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

func main() {
	// run returns before exiting so its deferred cleanup happens.
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.WithCharacter(logger.Setup(cfg), cfg.CharacterID)

	log.Info("Starting Personality Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"decay_interval", cfg.DecayInterval.String())

	// Initialize queue service
	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		return 1
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	eventQueue := queue.NewEventQueue(queueClient, log)
	broadcaster := events.NewBroadcaster(queueClient.GetRedisClient(), log)
	log.Info("Queue service initialized successfully")

	// No model transport ships with the worker, so the bridge stays off.
	if cfg.Bridge() != personality.BridgeDisabled {
		log.Warn("BRIDGE_MODE is set but no model completer is available, using local strategy",
			"bridge_mode", cfg.BridgeMode)
	}

	engine, err := worker.BuildEngine(cfg, nil, log)
	if err != nil {
		log.Error("Failed to build personality engine", "error", err)
		return 1
	}

	vitals, err := worker.BuildVitals(cfg, engine, log)
	if err != nil {
		log.Error("Failed to build vitals", "error", err)
		return 1
	}

	characterID := cfg.CharacterUUID()
	processor := worker.NewProcessor(characterID, engine, vitals, broadcaster, log)
	w := worker.New(characterID, eventQueue, processor, queueClient.GetRedisClient(), log, os.Getenv("WORKER_ID"), cfg.DecayInterval)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	var workerErr error
	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		select {
		case workerErr = <-done:
		case <-time.After(5 * time.Second):
			log.Warn("Worker did not stop in time")
		}
	case workerErr = <-done:
	}

	if workerErr != nil {
		log.Error("Worker error", "error", workerErr)
		return 1
	}
	log.Info("Worker exited")
	return 0
}
