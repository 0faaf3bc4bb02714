package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "catalogsync/pkg/errors"
)

type Environment string

const (
	Production Environment = "production"
	Sandbox    Environment = "sandbox"
)

const (
	DefaultAPIVersion = "2024-08-21"
	DefaultOutputPath = "data/products.json"
	DefaultEnvFile    = ".env"

	tokenPrefix = "EAAA"
)

var baseURLs = map[Environment]string{
	Production: "https://connect.squareup.com",
	Sandbox:    "https://connect.squareupsandbox.com",
}

type Config struct {
	Square SquareConfig
	Sync   SyncConfig
	Kafka  KafkaConfig
	API    APIConfig

	// Environment
	EnvFile  string
	LogLevel string

	// Warnings collected while loading (e.g. an unreadable defaults file,
	// a token that does not look like a Square token).
	Warnings []string
}

type SquareConfig struct {
	AccessToken string
	LocationID  string
	Environment Environment
	APIVersion  string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
}

type SyncConfig struct {
	Strict               bool
	IncludeOutOfStock    bool
	Outputs              []string
	InventoryConcurrency int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type APIConfig struct {
	Host string
	Port string
}

// Options tune a single Load call.
type Options struct {
	// EnvFile overrides ENV_FILE. Empty means ENV_FILE or ".env".
	EnvFile string
	// Outputs are appended to the destinations named by the environment,
	// typically from repeated --out flags.
	Outputs []string
	// StrictToken turns a malformed access token into a violation instead
	// of a warning.
	StrictToken bool
}

// Load resolves the run configuration. Values from the defaults file never
// replace variables already present in the process environment. Every
// violation is reported at once in a ConfigurationError.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = getEnv("ENV_FILE", DefaultEnvFile)
	}

	cfg := &Config{EnvFile: envFile}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("could not load %s: %v", envFile, err))
	}

	var violations []string
	intVar := func(key string, def int) int {
		v, err := getEnvAsInt(key, def)
		if err != nil {
			violations = append(violations, err.Error())
		}
		return v
	}

	cfg.Square = SquareConfig{
		AccessToken: strings.TrimSpace(os.Getenv("SQUARE_ACCESS_TOKEN")),
		LocationID:  strings.TrimSpace(os.Getenv("SQUARE_LOCATION_ID")),
		Environment: Environment(strings.ToLower(strings.TrimSpace(os.Getenv("SQUARE_ENVIRONMENT")))),
		APIVersion:  getEnv("SQUARE_API_VERSION", DefaultAPIVersion),
		BaseURL:     strings.TrimSuffix(strings.TrimSpace(os.Getenv("SQUARE_BASE_URL")), "/"),
		Timeout:     time.Duration(intVar("SQUARE_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:  intVar("SQUARE_MAX_RETRIES", 3),
	}
	if cfg.Square.BaseURL == "" {
		cfg.Square.BaseURL = baseURLs[cfg.Square.Environment]
	}

	cfg.Sync = SyncConfig{
		Strict:               getEnvAsBool("STRICT", true),
		IncludeOutOfStock:    getEnvAsBool("INCLUDE_OUT_OF_STOCK", false),
		Outputs:              collectOutputs(opts.Outputs),
		InventoryConcurrency: intVar("INVENTORY_CONCURRENCY", 4),
	}

	cfg.Kafka = KafkaConfig{
		Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
		Topic:   getEnv("KAFKA_TOPIC", "catalog-events"),
	}
	cfg.API = APIConfig{
		Host: getEnv("API_HOST", "0.0.0.0"),
		Port: getEnv("API_PORT", "8080"),
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	v, warnings := cfg.Validate(opts.StrictToken)
	violations = append(violations, v...)
	cfg.Warnings = append(cfg.Warnings, warnings...)

	if len(violations) > 0 {
		return cfg, &apperrors.ConfigurationError{Violations: violations}
	}
	return cfg, nil
}

// Validate checks required settings. A token format mismatch is a violation
// when strictToken is set and a warning otherwise.
func (c *Config) Validate(strictToken bool) (violations, warnings []string) {
	if c.Square.AccessToken == "" {
		violations = append(violations, "missing SQUARE_ACCESS_TOKEN")
	}
	if c.Square.LocationID == "" {
		violations = append(violations, "missing SQUARE_LOCATION_ID")
	}
	switch c.Square.Environment {
	case Production, Sandbox:
	case "":
		violations = append(violations, "missing SQUARE_ENVIRONMENT (use 'production' or 'sandbox')")
	default:
		violations = append(violations, fmt.Sprintf("SQUARE_ENVIRONMENT must be 'production' or 'sandbox' (got '%s')", c.Square.Environment))
	}

	if c.Square.AccessToken != "" && !strings.HasPrefix(strings.ToUpper(c.Square.AccessToken), tokenPrefix) {
		msg := fmt.Sprintf("SQUARE_ACCESS_TOKEN does not look like a Square token (should start with '%s')", tokenPrefix)
		if strictToken {
			violations = append(violations, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	if c.Square.Timeout <= 0 {
		violations = append(violations, "SQUARE_TIMEOUT_SECONDS must be positive")
	}
	if c.Square.MaxRetries < 0 {
		violations = append(violations, "SQUARE_MAX_RETRIES must not be negative")
	}
	if c.Sync.InventoryConcurrency < 1 {
		violations = append(violations, "INVENTORY_CONCURRENCY must be at least 1")
	}
	if len(c.Sync.Outputs) == 0 {
		violations = append(violations, "no output destinations")
	}
	return violations, warnings
}

// RedactedToken shows a short prefix and the length of the access token.
func (c *Config) RedactedToken() string {
	token := []rune(c.Square.AccessToken)
	prefix := token
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s… (len=%d)", string(prefix), len(token))
}

// collectOutputs merges OUTPUT_PATHS (or OUTPUT_PATH) with extra paths,
// dropping blanks and duplicates while keeping first-seen order.
func collectOutputs(extra []string) []string {
	raw := os.Getenv("OUTPUT_PATHS")
	if raw == "" {
		raw = os.Getenv("OUTPUT_PATH")
	}

	seen := make(map[string]bool)
	var outputs []string
	for _, p := range append(splitList(raw), extra...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		outputs = append(outputs, p)
	}
	if len(outputs) == 0 {
		outputs = []string{DefaultOutputPath}
	}
	return outputs
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer (got '%s')", key, value)
	}
	return intValue, nil
}

// getEnvAsBool treats only a case-insensitive "true" as true once set.
func getEnvAsBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true")
}
