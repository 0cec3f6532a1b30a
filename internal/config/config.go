package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Grid    GridConfig    `yaml:"grid" mapstructure:"grid"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig points at the earthquake table loaded at startup.
type DatasetConfig struct {
	Path     string `yaml:"path" mapstructure:"path"` // local file or http(s) URL
	Locale   string `yaml:"locale" mapstructure:"locale"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
	Sheet    string `yaml:"sheet" mapstructure:"sheet"`
	// SheetIndex picks the XLSX worksheet when Sheet is empty.
	SheetIndex int    `yaml:"sheet_index" mapstructure:"sheet_index"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	Comment    string `yaml:"comment" mapstructure:"comment"`
}

// StoreConfig configures the saved-views database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	// CacheEntries bounds the query response cache. Zero disables it.
	CacheEntries int           `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// GridConfig configures the grid view.
type GridConfig struct {
	PinnedTop int `yaml:"pinned_top" mapstructure:"pinned_top"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QUAKEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.path", "data/chile_quakes.csv")
	v.SetDefault("dataset.locale", "es-CL")
	v.SetDefault("dataset.encoding", "")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("dataset.sheet_index", 0)
	v.SetDefault("dataset.delimiter", ",")
	v.SetDefault("dataset.comment", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "quakeboard.db")
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.cache_entries", 256)
	v.SetDefault("server.cache_ttl", "10m")
	v.SetDefault("grid.pinned_top", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the given command needs.
// Modes: "serve", "query", "views".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Server.CacheEntries < 0 {
			problems = append(problems, "server.cache_entries must be >= 0")
		}
		if c.Server.CacheEntries > 0 && c.Server.CacheTTL <= 0 {
			problems = append(problems, "server.cache_ttl must be positive when the cache is enabled")
		}
		problems = append(problems, c.datasetProblems()...)
		problems = append(problems, c.storeProblems()...)
		if c.Grid.PinnedTop < 0 {
			problems = append(problems, "grid.pinned_top must be >= 0")
		}
	case "query":
		problems = append(problems, c.datasetProblems()...)
	case "views":
		problems = append(problems, c.storeProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) datasetProblems() []string {
	var problems []string
	if c.Dataset.Path == "" {
		problems = append(problems, "dataset.path is required")
	}
	if _, err := language.Parse(c.Dataset.Locale); err != nil {
		problems = append(problems, "dataset.locale is not a valid BCP 47 tag")
	}
	if c.Dataset.SheetIndex < 0 {
		problems = append(problems, "dataset.sheet_index must be >= 0")
	}
	if utf8.RuneCountInString(c.Dataset.Delimiter) > 1 {
		problems = append(problems, "dataset.delimiter must be a single character")
	}
	if utf8.RuneCountInString(c.Dataset.Comment) > 1 {
		problems = append(problems, "dataset.comment must be a single character")
	}
	if c.Dataset.Comment != "" && c.Dataset.Comment == c.Dataset.Delimiter {
		problems = append(problems, "dataset.comment must differ from dataset.delimiter")
	}
	if c.Dataset.Encoding != "" {
		if _, err := htmlindex.Get(c.Dataset.Encoding); err != nil {
			problems = append(problems, "dataset.encoding is not a known charset")
		}
	}
	return problems
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
