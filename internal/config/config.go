package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	APIKey            string
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxInFlight    int

	StoragePath  string
	MaxUploadMB  int
	WorkspaceTTL time.Duration

	Provider         string
	ProviderAPIKey   string
	ProviderModel    string
	ProviderEndpoint string
	OpenAIBaseURL    string
	AnthropicBaseURL string
	ProviderTimeout  time.Duration
	AnalysisDelay    time.Duration

	BreakerEnabled      bool
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	NATSURL     string
	NATSSubject string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		APIKey:            mustEnv("API_KEY", ""),
		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 64),

		StoragePath:  mustEnv("STORAGE_PATH", "./data/uploads"),
		MaxUploadMB:  mustEnvInt("MAX_UPLOAD_MB", 25),
		WorkspaceTTL: mustEnvDuration("WORKSPACE_TTL", 2*time.Hour),

		Provider:         mustEnv("PROVIDER", ""),
		ProviderAPIKey:   mustEnv("PROVIDER_API_KEY", ""),
		ProviderModel:    mustEnv("PROVIDER_MODEL", ""),
		ProviderEndpoint: mustEnv("PROVIDER_ENDPOINT", ""),
		OpenAIBaseURL:    mustEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		AnthropicBaseURL: mustEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		ProviderTimeout:  mustEnvDuration("PROVIDER_TIMEOUT", 120*time.Second),
		AnalysisDelay:    mustEnvDuration("ANALYSIS_DELAY", time.Second),

		BreakerEnabled:      mustEnvBool("BREAKER_ENABLED", true),
		BreakerMinRequests:  mustEnvInt("BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio: mustEnvFloat("BREAKER_FAILURE_RATIO", 0.6),
		BreakerOpenTimeout:  mustEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "coding.runs"),
	}
}

// DefaultProvider returns the provider configuration from the environment,
// or false when PROVIDER is unset. New workspaces start with it.
func (c Config) DefaultProvider() (domain.ProviderConfig, bool, error) {
	if strings.TrimSpace(c.Provider) == "" {
		return domain.ProviderConfig{}, false, nil
	}
	provider, err := domain.ParseProvider(c.Provider)
	if err != nil {
		return domain.ProviderConfig{}, false, err
	}
	cfg := domain.ProviderConfig{
		APIKey:   strings.TrimSpace(c.ProviderAPIKey),
		Provider: provider,
		Model:    strings.TrimSpace(c.ProviderModel),
		Endpoint: strings.TrimSpace(c.ProviderEndpoint),
	}
	if err := cfg.Validate(); err != nil {
		return domain.ProviderConfig{}, false, err
	}
	return cfg, true, nil
}

func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 25 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
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

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
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
