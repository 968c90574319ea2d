package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/helmcode/pestscan/pkg/llm"
	"github.com/helmcode/pestscan/pkg/prompts"
	"github.com/joho/godotenv"
	"k8s.io/apimachinery/pkg/api/resource"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/util/homedir"
)

const (
	DefaultMaxImageSize = "8Mi"
	// A base64 data URL is about 4/3 of the image plus the JSON envelope.
	DefaultMaxBodySize = "12Mi"
	DefaultBridgeURL   = "http://localhost:8080/api/analyze"
	userEnvFile        = ".pestscan.env"
)

// Config holds all configuration for the bridge and the uploader CLI
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins []string

	// Provider configuration
	LLM            llm.Settings
	ReportLanguage string

	// Upload limits
	MaxImageSize resource.Quantity
	MaxBodySize  resource.Quantity

	// Logging
	LogLevel  string
	LogFormat string

	// Client side
	BridgeURL string
}

// LoadEnvFiles loads ./.env and ~/.pestscan.env into the process environment
// without overriding variables that are already set. It returns the files
// that were loaded.
func LoadEnvFiles() ([]string, error) {
	candidates := []string{".env"}
	if home := homedir.HomeDir(); home != "" {
		candidates = append(candidates, filepath.Join(home, userEnvFile))
	}

	var loaded []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Load loads configuration from environment variables. A missing provider
// API key is not an error here; it fails each analysis request instead.
func Load() (*Config, error) {
	var errs []error

	provider, err := llm.ParseProvider(getEnv("LLM_PROVIDER", string(llm.ProviderOpenAI)))
	if err != nil {
		errs = append(errs, err)
	}
	maxImage, err := getQuantityEnv("MAX_IMAGE_SIZE", DefaultMaxImageSize)
	if err != nil {
		errs = append(errs, err)
	}
	maxBody, err := getQuantityEnv("MAX_BODY_SIZE", DefaultMaxBodySize)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", "*"),

		LLM: llm.Settings{
			Provider:         provider,
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", llm.DefaultOpenAIModel),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", llm.DefaultOpenAIBaseURL),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			ClaudeModel:      getEnv("CLAUDE_MODEL", llm.DefaultClaudeModel),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", llm.DefaultClaudeBaseURL),
		},
		ReportLanguage: getEnv("REPORT_LANGUAGE", prompts.DefaultLanguage),

		MaxImageSize: maxImage,
		MaxBodySize:  maxBody,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		BridgeURL: getEnv("PESTSCAN_BRIDGE_URL", DefaultBridgeURL),
	}

	if len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Port))
	}
	if c.MaxImageSize.Sign() <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %s", c.MaxImageSize.String()))
	}
	if c.MaxBodySize.Cmp(c.MaxImageSize) <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_SIZE (%s) must exceed MAX_IMAGE_SIZE (%s)", c.MaxBodySize.String(), c.MaxImageSize.String()))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q (supported: text, json)", c.LogFormat))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("ALLOWED_ORIGINS must not be empty"))
	}

	return utilerrors.NewAggregate(errs)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getQuantityEnv parses a size such as 8Mi or 10M.
func getQuantityEnv(key, defaultValue string) (resource.Quantity, error) {
	value := getEnv(key, defaultValue)
	q, err := resource.ParseQuantity(value)
	if err != nil {
		return resource.Quantity{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return q, nil
}

// getStringSliceEnv gets a comma-separated environment variable as a slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
