package config

import (
	"os"
	"strconv"

	"github.com/charlerive/pricing/compare"
	"github.com/charlerive/pricing/montecarlo"
	"github.com/charlerive/pricing/option"
	"github.com/joho/godotenv"
)

type Config struct {
	Spot     float64
	Strike   float64
	Expiry   float64 // years
	Rate     float64
	Vol      float64
	Type     string // call or put
	Steps    int    // binomial tree steps
	Paths    int    // monte carlo paths
	Seed     uint64
	LogLevel string
}

func Default() Config {
	return Config{
		Spot:     100,
		Strike:   100,
		Expiry:   1,
		Rate:     0.05,
		Vol:      0.2,
		Type:     "call",
		Steps:    300,
		Paths:    montecarlo.DefaultPaths,
		Seed:     42,
		LogLevel: "info",
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	floatEnv("PRICING_SPOT", &cfg.Spot)
	floatEnv("PRICING_STRIKE", &cfg.Strike)
	floatEnv("PRICING_EXPIRY", &cfg.Expiry)
	floatEnv("PRICING_RATE", &cfg.Rate)
	floatEnv("PRICING_VOL", &cfg.Vol)

	if typ := os.Getenv("PRICING_TYPE"); typ != "" {
		cfg.Type = typ
	}
	if steps := os.Getenv("PRICING_STEPS"); steps != "" {
		if n, err := strconv.Atoi(steps); err == nil {
			cfg.Steps = n
		}
	}
	if paths := os.Getenv("PRICING_PATHS"); paths != "" {
		if n, err := strconv.Atoi(paths); err == nil {
			cfg.Paths = n
		}
	}
	if seed := os.Getenv("PRICING_SEED"); seed != "" {
		if n, err := strconv.ParseUint(seed, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	cfg.LogLevel = getEnv("PRICING_LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Params option inputs of the scenario. Only the type is checked here, the engines
// validate the rest.
func (c Config) Params() (option.Params, error) {
	typ, err := option.ParseType(c.Type)
	if err != nil {
		return option.Params{}, err
	}
	return option.Params{
		Spot:   c.Spot,
		Strike: c.Strike,
		Expiry: c.Expiry,
		Rate:   c.Rate,
		Vol:    c.Vol,
		Type:   typ,
	}, nil
}

func (c Config) Settings() compare.Settings {
	return compare.Settings{
		Steps: c.Steps,
		Paths: c.Paths,
		Seed:  c.Seed,
	}
}

func floatEnv(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
