package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catalogsync/pkg/errors"
)

var managedKeys = []string{
	"ENV_FILE", "SQUARE_ACCESS_TOKEN", "SQUARE_LOCATION_ID", "SQUARE_ENVIRONMENT",
	"SQUARE_API_VERSION", "SQUARE_BASE_URL", "SQUARE_TIMEOUT_SECONDS", "SQUARE_MAX_RETRIES",
	"STRICT", "INCLUDE_OUT_OF_STOCK", "OUTPUT_PATHS", "OUTPUT_PATH", "INVENTORY_CONCURRENCY",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "API_HOST", "API_PORT", "LOG_LEVEL",
}

// clearEnv unsets every key Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func setValid(t *testing.T) {
	t.Helper()
	t.Setenv("SQUARE_ACCESS_TOKEN", "EAAAtoken123456")
	t.Setenv("SQUARE_LOCATION_ID", "LOC1")
	t.Setenv("SQUARE_ENVIRONMENT", "sandbox")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setValid(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, Sandbox, cfg.Square.Environment)
	assert.Equal(t, DefaultAPIVersion, cfg.Square.APIVersion)
	assert.Equal(t, "https://connect.squareupsandbox.com", cfg.Square.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Square.Timeout)
	assert.Equal(t, 3, cfg.Square.MaxRetries)
	assert.True(t, cfg.Sync.Strict)
	assert.False(t, cfg.Sync.IncludeOutOfStock)
	assert.Equal(t, []string{DefaultOutputPath}, cfg.Sync.Outputs)
	assert.Equal(t, 4, cfg.Sync.InventoryConcurrency)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadEnumeratesEveryViolation(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQUARE_ENVIRONMENT", "staging")
	t.Setenv("SQUARE_TIMEOUT_SECONDS", "soon")

	_, err := Load(Options{})
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Violations, 4)
	assert.Contains(t, err.Error(), "missing SQUARE_ACCESS_TOKEN")
	assert.Contains(t, err.Error(), "missing SQUARE_LOCATION_ID")
	assert.Contains(t, err.Error(), "got 'staging'")
	assert.Contains(t, err.Error(), "SQUARE_TIMEOUT_SECONDS must be an integer")
}

func TestLoadTokenFormat(t *testing.T) {
	clearEnv(t)
	setValid(t)
	t.Setenv("SQUARE_ACCESS_TOKEN", "sq0abc")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "EAAA")

	_, err = Load(Options{StrictToken: true})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Violations, 1)
}

func TestLoadFlags(t *testing.T) {
	clearEnv(t)
	setValid(t)
	t.Setenv("STRICT", "false")
	t.Setenv("INCLUDE_OUT_OF_STOCK", "TRUE")
	t.Setenv("SQUARE_ENVIRONMENT", " Production ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.False(t, cfg.Sync.Strict)
	assert.True(t, cfg.Sync.IncludeOutOfStock)
	assert.Equal(t, Production, cfg.Square.Environment)
	assert.Equal(t, "https://connect.squareup.com", cfg.Square.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadOutputs(t *testing.T) {
	clearEnv(t)
	setValid(t)
	t.Setenv("OUTPUT_PATHS", "a.json, b.json,,a.json")
	t.Setenv("OUTPUT_PATH", "ignored.json")

	cfg, err := Load(Options{Outputs: []string{"c.json", "b.json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, cfg.Sync.Outputs)
}

func TestLoadEnvFileNeverOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "defaults.env")
	content := "SQUARE_ACCESS_TOKEN=EAAAfromfile\nSQUARE_LOCATION_ID=FILELOC\nSQUARE_ENVIRONMENT=sandbox\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SQUARE_LOCATION_ID", "EXPLICIT")

	cfg, err := Load(Options{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "EXPLICIT", cfg.Square.LocationID)
	assert.Equal(t, "EAAAfromfile", cfg.Square.AccessToken)
	assert.Equal(t, path, cfg.EnvFile)
}

func TestRedactedToken(t *testing.T) {
	cfg := &Config{Square: SquareConfig{AccessToken: "EAAAabcdefghij"}}
	assert.Equal(t, "EAAAab… (len=14)", cfg.RedactedToken())

	cfg.Square.AccessToken = "EAAAéécret"
	assert.Equal(t, "EAAAéé… (len=10)", cfg.RedactedToken())

	cfg.Square.AccessToken = "EAA"
	assert.Equal(t, "EAA… (len=3)", cfg.RedactedToken())
}
