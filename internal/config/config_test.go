package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/chile_quakes.csv", cfg.Dataset.Path)
	assert.Equal(t, "es-CL", cfg.Dataset.Locale)
	assert.Empty(t, cfg.Dataset.Encoding)
	assert.Equal(t, ",", cfg.Dataset.Delimiter)
	assert.Empty(t, cfg.Dataset.Comment)
	assert.Zero(t, cfg.Dataset.SheetIndex)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "quakeboard.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 256, cfg.Server.CacheEntries)
	assert.Equal(t, 10*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 3, cfg.Grid.PinnedTop)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
dataset:
  path: /srv/quakes.xlsx
store:
  driver: postgres
  database_url: postgres://localhost/quakes
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - https://dash.example.cl
  cache_ttl: 90s
grid:
  pinned_top: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/quakes.xlsx", cfg.Dataset.Path)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/quakes", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://dash.example.cl"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, 5, cfg.Grid.PinnedTop)
	// Defaults still apply for unset values
	assert.Equal(t, "es-CL", cfg.Dataset.Locale)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("QUAKEBOARD_STORE_DRIVER", "sqlite")
	t.Setenv("QUAKEBOARD_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("QUAKEBOARD_SERVER_PORT", "3000")
	t.Setenv("QUAKEBOARD_DATASET_PATH", "/tmp/other.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.csv", cfg.Dataset.Path)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Dataset.Path = "data/chile_quakes.csv"
	cfg.Dataset.Locale = "es-CL"
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "quakeboard.db"
	cfg.Server.Port = 8050
	cfg.Server.CacheEntries = 256
	cfg.Server.CacheTTL = 10 * time.Minute
	cfg.Grid.PinnedTop = 3
	return cfg
}

func TestValidateServe_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be between 1 and 65535")
}

func TestValidateServe_CollectsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Dataset.Path = ""
	cfg.Store.Driver = "mysql"
	cfg.Grid.PinnedTop = -1

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.path is required")
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	assert.Contains(t, err.Error(), "grid.pinned_top must be >= 0")
}

func TestValidateServe_Cache(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.CacheEntries = -1
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.cache_entries must be >= 0")

	cfg.Server.CacheEntries = 10
	cfg.Server.CacheTTL = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.cache_ttl must be positive")

	cfg.Server.CacheEntries = 0
	assert.NoError(t, cfg.Validate("serve"), "a disabled cache needs no ttl")
}

func TestValidateQuery_BadLocale(t *testing.T) {
	cfg := validDefaults()
	cfg.Dataset.Locale = "not a locale!"

	err := cfg.Validate("query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.locale")
}

func TestValidateQuery_BadEncoding(t *testing.T) {
	cfg := validDefaults()
	cfg.Dataset.Encoding = "klingon"

	err := cfg.Validate("query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.encoding is not a known charset")

	cfg.Dataset.Encoding = "windows-1252"
	assert.NoError(t, cfg.Validate("query"))
}

func TestValidateQuery_CSVAndSheetOptions(t *testing.T) {
	cfg := validDefaults()
	cfg.Dataset.Delimiter = ";;"
	cfg.Dataset.Comment = "##"
	cfg.Dataset.SheetIndex = -1

	err := cfg.Validate("query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.delimiter must be a single character")
	assert.Contains(t, err.Error(), "dataset.comment must be a single character")
	assert.Contains(t, err.Error(), "dataset.sheet_index must be >= 0")

	cfg.Dataset.Delimiter = ";"
	cfg.Dataset.Comment = ";"
	cfg.Dataset.SheetIndex = 1
	err = cfg.Validate("query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.comment must differ")

	cfg.Dataset.Comment = "#"
	assert.NoError(t, cfg.Validate("query"))
}

func TestValidateQuery_IgnoresStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	assert.NoError(t, cfg.Validate("query"))
}

func TestValidateViews_MissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("views")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
