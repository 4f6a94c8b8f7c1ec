package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/personality-engine/internal/config"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout.
	log := slog.New(slog.DiscardHandler)

	client, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s: %v\nTry: docker-compose up -d\n", cfg.RedisURL, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	characterID := cfg.CharacterUUID()
	broadcaster := events.NewBroadcaster(client.GetRedisClient(), log)
	sub := broadcaster.Subscribe(ctx, characterID)
	defer sub.Close()

	ui := NewConsoleUI(ctx, ConsoleDeps{
		CharacterID: characterID,
		Queue:       queue.NewEventQueue(client, log),
		Broadcaster: broadcaster,
		Feed:        sub.Channel(),
	})

	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running console: %v\n", err)
		os.Exit(1)
	}
}
