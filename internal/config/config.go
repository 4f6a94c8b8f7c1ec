package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	Port          string        `env:"PORT" envDefault:"8080"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	CharacterID   string        `env:"CHARACTER_ID" envDefault:"00000000-0000-0000-0000-000000000001"`
	DecayInterval time.Duration `env:"DECAY_INTERVAL" envDefault:"10s"`

	NetworkWeights string `env:"NETWORK_WEIGHTS"`
	RoutingFile    string `env:"ROUTING_FILE"`
	VitalsMaxHP    int    `env:"VITALS_MAX_HP" envDefault:"20"`

	BridgeMode          string        `env:"BRIDGE_MODE" envDefault:"disabled"`
	BridgeWeight        float64       `env:"BRIDGE_WEIGHT" envDefault:"0.5"`
	BridgeTimeout       time.Duration `env:"BRIDGE_TIMEOUT" envDefault:"3s"`
	BridgeRatePerMinute int           `env:"BRIDGE_RATE_PER_MINUTE" envDefault:"20"`

	EmotionInertia      float64       `env:"EMOTION_INERTIA" envDefault:"0.7"`
	NoiseAmplitude      float64       `env:"NOISE_AMPLITUDE" envDefault:"0.02"`
	GuiltDecayPerMinute float64       `env:"GUILT_DECAY_PER_MINUTE" envDefault:"0.05"`
	EpisodicCapacity    int           `env:"EPISODIC_CAPACITY" envDefault:"32"`
	ShortTermWindow     time.Duration `env:"SHORT_TERM_WINDOW" envDefault:"5m"`
	ShortTermWeight     float64       `env:"SHORT_TERM_WEIGHT" envDefault:"0.6"`
	LongTermWeight      float64       `env:"LONG_TERM_WEIGHT" envDefault:"0.4"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if _, err := personality.ParseBridgeMode(cfg.BridgeMode); err != nil {
		return nil, fmt.Errorf("invalid BRIDGE_MODE: %w", err)
	}
	if _, err := uuid.Parse(cfg.CharacterID); err != nil {
		return nil, fmt.Errorf("invalid CHARACTER_ID: %w", err)
	}
	return cfg, nil
}

// CharacterUUID returns the parsed character id. Load has already validated it.
func (c *Config) CharacterUUID() uuid.UUID {
	return uuid.MustParse(c.CharacterID)
}

// Bridge returns the parsed bridge mode, falling back to disabled.
func (c *Config) Bridge() personality.BridgeMode {
	mode, err := personality.ParseBridgeMode(c.BridgeMode)
	if err != nil {
		return personality.BridgeDisabled
	}
	return mode
}

// PersonalityConfig maps the environment onto engine tuning. Values not
// exposed as variables keep the engine defaults.
func (c *Config) PersonalityConfig() personality.Config {
	pc := personality.DefaultConfig()
	pc.Inertia = c.EmotionInertia
	pc.NoiseAmplitude = c.NoiseAmplitude
	pc.GuiltDecayPerMinute = c.GuiltDecayPerMinute
	pc.EpisodicCapacity = c.EpisodicCapacity
	pc.ShortTermWindow = c.ShortTermWindow
	pc.ShortTermWeight = c.ShortTermWeight
	pc.LongTermWeight = c.LongTermWeight
	return pc
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
