// Package config loads runtime configuration from environment variables.
// Configuration errors are fatal at startup and only at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider names accepted for LLM_PROVIDER. "local" disables the external
// provider path entirely; enrichment runs heuristics only.
const (
	ProviderLocal  = "local"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config is the full runtime configuration.
type Config struct {
	// Elasticsearch connection.
	ESHost      string
	ESPort      int
	ESUser      string
	ESPassword  string
	ESIndexName string

	// LogSources are the file paths monitored at startup.
	LogSources []string

	// AnomalyThreshold is the score below which an anomaly alert is
	// emitted. More negative is more anomalous.
	AnomalyThreshold float64
	// TrainingDays bounds the historical window loaded for scorer training.
	TrainingDays int

	// Alert delivery.
	AlertWebhook string
	AlertEmail   string
	SlackToken   string
	SlackChannel string

	// APIKey protects every admin endpoint except /health.
	APIKey string

	// LLMProvider selects the enrichment provider: local, ollama or gemini.
	LLMProvider  string
	OllamaHost   string
	OllamaModel  string
	GeminiAPIKey string
	GeminiModel  string

	// RulesFile optionally points at a YAML file with extra rules.
	RulesFile string

	// HTTPPort is the admin API listen port.
	HTTPPort string
}

// LoadFromEnv loads configuration from environment variables and validates
// it.
func LoadFromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("ES_PORT", "9200"))
	if err != nil {
		return nil, fmt.Errorf("invalid ES_PORT: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnvOrDefault("ANOMALY_THRESHOLD", "-0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ANOMALY_THRESHOLD: %w", err)
	}

	trainingDays, err := strconv.Atoi(getEnvOrDefault("TRAINING_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRAINING_DAYS: %w", err)
	}

	cfg := &Config{
		ESHost:      getEnvOrDefault("ES_HOST", "localhost"),
		ESPort:      port,
		ESUser:      getEnvOrDefault("ES_USER", "elastic"),
		ESPassword:  os.Getenv("ES_PASSWORD"),
		ESIndexName: getEnvOrDefault("ES_INDEX_NAME", "siem_logs"),

		LogSources: splitSources(getEnvOrDefault("LOG_SOURCES", "/var/log/syslog,/var/log/auth.log")),

		AnomalyThreshold: threshold,
		TrainingDays:     trainingDays,

		AlertWebhook: os.Getenv("ALERT_WEBHOOK"),
		AlertEmail:   os.Getenv("ALERT_EMAIL"),
		SlackToken:   os.Getenv("SLACK_TOKEN"),
		SlackChannel: os.Getenv("SLACK_CHANNEL"),

		APIKey: os.Getenv("API_KEY"),

		LLMProvider:  getEnvOrDefault("LLM_PROVIDER", ProviderLocal),
		OllamaHost:   os.Getenv("OLLAMA_HOST"),
		OllamaModel:  getEnvOrDefault("OLLAMA_MODEL", "llama3"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		RulesFile: os.Getenv("RULES_FILE"),

		HTTPPort: getEnvOrDefault("HTTP_PORT", "8000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for startup-fatal errors.
func (c *Config) Validate() error {
	if c.TrainingDays <= 0 {
		return fmt.Errorf("TRAINING_DAYS must be positive, got %d", c.TrainingDays)
	}
	switch c.LLMProvider {
	case ProviderLocal, ProviderOllama, ProviderGemini:
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of local, ollama, gemini; got %q", c.LLMProvider)
	}
	if c.LLMProvider == ProviderGemini && c.GeminiAPIKey == "" {
		return fmt.Errorf("LLM_PROVIDER=gemini requires GEMINI_API_KEY")
	}
	return nil
}

func splitSources(raw string) []string {
	var sources []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
