package worker

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/personality-engine/internal/config"
	"github.com/jwebster45206/personality-engine/internal/services/llm"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// BuildBridge wraps completer in an LLM bridge using the configured call
// timeout and per-minute budget.
func BuildBridge(cfg *config.Config, completer llm.Completer, logger *slog.Logger) *llm.Bridge {
	return llm.NewBridge(completer, logger).
		WithTimeout(cfg.BridgeTimeout).
		WithRateLimit(cfg.BridgeRatePerMinute)
}

// BuildEngine assembles an engine from configuration. With a nil completer
// or BRIDGE_MODE=disabled the engine runs on local strategies only.
func BuildEngine(cfg *config.Config, completer llm.Completer, logger *slog.Logger) (*personality.Engine, error) {
	pc := cfg.PersonalityConfig()

	if cfg.RoutingFile != "" {
		routing, err := personality.LoadRouting(cfg.RoutingFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load routing: %w", err)
		}
		pc.Routing = &routing
		logger.Info("Loaded bias routing", "path", cfg.RoutingFile)
	}

	engine := personality.NewEngine(pc, logger)

	if cfg.NetworkWeights != "" {
		nc, err := personality.LoadNetworkConfig(cfg.NetworkWeights)
		if err != nil {
			return nil, fmt.Errorf("failed to load network weights: %w", err)
		}
		engine.WithNetwork(nc)
	}

	if completer != nil && cfg.Bridge() != personality.BridgeDisabled {
		engine.WithBridge(BuildBridge(cfg, completer, logger), cfg.Bridge(), cfg.BridgeWeight)
		logger.Info("LLM bridge enabled",
			"mode", cfg.BridgeMode,
			"timeout", cfg.BridgeTimeout.String(),
			"rate_per_minute", cfg.BridgeRatePerMinute)
	}

	logger.Info("Personality engine ready", "strategy", engine.StrategyName())
	return engine, nil
}

// BuildVitals creates the body model and connects it to engine.
func BuildVitals(cfg *config.Config, engine *personality.Engine, logger *slog.Logger) (*health.Vitals, error) {
	vitals, err := health.NewVitals(health.VitalsSpec{
		ID:    cfg.CharacterID,
		MaxHP: cfg.VitalsMaxHP,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create vitals: %w", err)
	}
	vitals.
		WithListener(health.NewBridge(engine, health.DefaultThresholds(), logger)).
		WithLifeline(engine)
	return vitals, nil
}
