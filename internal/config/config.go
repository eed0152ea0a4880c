package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the runtime configuration for the deckforge service. All
// values come from the environment (optionally seeded from a .env file next
// to go.mod); review thresholds live in a separate yaml file, see
// internal/review.
type Config struct {
	HTTPAddr     string
	DatabasePath string

	// RedisAddr is optional: when empty the ephemeral store and the event
	// bus fall back to their in-process implementations.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string

	// GenerationCost is the flat number of credits reserved per run.
	GenerationCost int

	// Slide-count caps applied during preflight, keyed by user tier.
	FreeTierSlideCap int
	ProTierSlideCap  int

	DefaultThemeID string

	PendingValidationTTL time.Duration
	AutoApproveTTL       time.Duration

	// ReviewConfigPath points at the yaml file with per-archetype review
	// threshold overrides. Empty means built-in defaults only.
	ReviewConfigPath string

	LogDir  string
	LogMode string
}

// Load reads .env (when present) and materializes the config. Missing
// optional values fall back to defaults suitable for local development.
func Load() (*Config, error) {
	_ = loadDotEnv()

	cfg := &Config{
		HTTPAddr:             getEnv("DECKFORGE_HTTP_ADDR", ":8080"),
		DatabasePath:         getEnv("DECKFORGE_DB_PATH", "deckforge.db"),
		RedisAddr:            os.Getenv("DECKFORGE_REDIS_ADDR"),
		RedisPassword:        os.Getenv("DECKFORGE_REDIS_PASSWORD"),
		RedisDB:              getEnvInt("DECKFORGE_REDIS_DB", 0),
		AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GenerationCost:       getEnvInt("DECKFORGE_GENERATION_COST", 2),
		FreeTierSlideCap:     getEnvInt("DECKFORGE_FREE_SLIDE_CAP", 10),
		ProTierSlideCap:      getEnvInt("DECKFORGE_PRO_SLIDE_CAP", 30),
		DefaultThemeID:       getEnv("DECKFORGE_DEFAULT_THEME", "classic-light"),
		PendingValidationTTL: getEnvDuration("DECKFORGE_PENDING_TTL", 30*time.Minute),
		AutoApproveTTL:       getEnvDuration("DECKFORGE_AUTO_APPROVE_TTL", 24*time.Hour),
		ReviewConfigPath:     os.Getenv("DECKFORGE_REVIEW_CONFIG"),
		LogDir:               getEnv("DECKFORGE_LOG_DIR", "./logs"),
		LogMode:              getEnv("DECKFORGE_LOG_MODE", "dev"),
	}

	if cfg.GenerationCost <= 0 {
		return nil, fmt.Errorf("generation cost must be positive, got %d", cfg.GenerationCost)
	}
	return cfg, nil
}

// loadDotEnv walks up from the working directory looking for go.mod and loads
// the .env sitting next to it, if any.
func loadDotEnv() error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	return godotenv.Load(filepath.Join(root, ".env"))
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
