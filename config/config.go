package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Race      RaceConfig
	Costs     CostConfig
	Antibot   AntibotConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	LLM       LLMConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser used by the browser strategy.
type BrowserConfig struct {
	// Enabled toggles the browser strategy entirely (Chrome is only
	// launched when true).
	Enabled bool // default: true

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 10

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// BlockedResourceTypes lists resource types the browser strategy blocks.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// RaceConfig controls the race orchestrator.
type RaceConfig struct {
	// StrategyTimeout is the orchestration-level deadline per strategy,
	// enforced independently of the strategies' internal timeouts.
	StrategyTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum per-strategy timeout a client may request.
	MaxTimeout time.Duration // default: 120s

	// WinnerMemoryTTL is how long a domain's last winner is remembered.
	WinnerMemoryTTL time.Duration // default: 24h
}

// CostConfig declares the relative resource cost weight of each strategy
// (arbitrary units, must be positive). These feed the cost-benefit view;
// the benchmark engine never computes them.
type CostConfig struct {
	Lightweight float64 // default: 1
	Browser     float64 // default: 5
	AI          float64 // default: 10
}

// Weights returns the costs keyed by strategy name.
func (c CostConfig) Weights() map[string]float64 {
	return map[string]float64{
		"lightweight": c.Lightweight,
		"browser":     c.Browser,
		"ai":          c.AI,
	}
}

// AntibotConfig controls request decoration.
type AntibotConfig struct {
	// Proxies is the rotation list ("scheme://host:port" entries).
	Proxies []string

	// UserAgents overrides the built-in user-agent pools when non-empty.
	UserAgents []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the race report cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached reports.
	MaxEntries int // default: 1000
}

// WebhookConfig controls race.completed event delivery.
type WebhookConfig struct {
	// URL is the endpoint to notify after each race. Empty disables delivery.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string
}

// LLMConfig controls the AI strategy's digest step (OpenAI-compatible).
type LLMConfig struct {
	// APIKey enables the structured JSON digest when non-empty.
	APIKey string

	// Model is the chat model to use.
	Model string // default: "gpt-4o-mini"

	// BaseURL is the API base, any OpenAI-compatible endpoint works.
	BaseURL string // default: "https://api.openai.com/v1"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DUEL_HOST", "0.0.0.0"),
			Port: envIntOr("DUEL_PORT", 8080),
			Mode: envOr("DUEL_MODE", "release"),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("DUEL_BROWSER_ENABLED", true),
			Headless:   envBoolOr("DUEL_HEADLESS", true),
			MaxPages:   envIntOr("DUEL_MAX_PAGES", 10),
			NoSandbox:  envBoolOr("DUEL_NO_SANDBOX", false),
			BrowserBin: os.Getenv("DUEL_BROWSER_BIN"),
			BlockedResourceTypes: envSliceOr("DUEL_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Race: RaceConfig{
			StrategyTimeout: envDurationOr("DUEL_STRATEGY_TIMEOUT", 30*time.Second),
			MaxTimeout:      envDurationOr("DUEL_MAX_TIMEOUT", 120*time.Second),
			WinnerMemoryTTL: envDurationOr("DUEL_WINNER_MEMORY_TTL", 24*time.Hour),
		},
		Costs: CostConfig{
			Lightweight: envFloatOr("DUEL_COST_LIGHTWEIGHT", 1),
			Browser:     envFloatOr("DUEL_COST_BROWSER", 5),
			AI:          envFloatOr("DUEL_COST_AI", 10),
		},
		Antibot: AntibotConfig{
			Proxies:    envSliceOr("DUEL_PROXIES", nil),
			UserAgents: envSliceOr("DUEL_USER_AGENTS", nil),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DUEL_AUTH_ENABLED", true),
			APIKeys: envSliceOr("DUEL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DUEL_RATE_RPS", 5.0),
			Burst:             envIntOr("DUEL_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("DUEL_CACHE_MAX_ENTRIES", 1000),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("DUEL_WEBHOOK_URL"),
			Secret: os.Getenv("DUEL_WEBHOOK_SECRET"),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("DUEL_LLM_API_KEY"),
			Model:   envOr("DUEL_LLM_MODEL", "gpt-4o-mini"),
			BaseURL: envOr("DUEL_LLM_BASE_URL", "https://api.openai.com/v1"),
		},
		Log: LogConfig{
			Level:  envOr("DUEL_LOG_LEVEL", "info"),
			Format: envOr("DUEL_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
