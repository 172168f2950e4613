package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrLocalesInvalid indicates the active locale pair is not exactly two distinct codes.
var ErrLocalesInvalid = errors.New("translatable config: exactly two distinct active locales are required")

// ErrLocaleCurrentInvalid indicates the configured current locale is not one of the active pair.
var ErrLocaleCurrentInvalid = errors.New("translatable config: current locale must be one of the active locales")
var ErrStorageProviderUnknown = errors.New("translatable config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("translatable config: storage dsn is required for sql providers")
var ErrCacheTTLInvalid = errors.New("translatable config: cache ttl must be positive when cache is enabled")
var ErrLoggingProviderRequired = errors.New("translatable config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("translatable config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translatable config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translatable config: logging format is invalid")

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config aggregates the settings needed to assemble the translatable module.
type Config struct {
	Locales          LocalesConfig `yaml:"locales"`
	Storage          StorageConfig `yaml:"storage"`
	Cache            CacheConfig   `yaml:"cache"`
	Logging          LoggingConfig `yaml:"logging"`
	DeclarationsPath string        `yaml:"declarations_path" env:"TRANSLATABLE_DECLARATIONS_PATH"`
}

// LocalesConfig names the two active locales. The first one is the default
// stamped on records created without a current locale.
type LocalesConfig struct {
	Current string   `yaml:"current" env:"TRANSLATABLE_LOCALE_CURRENT"`
	Active  []string `yaml:"active"  env:"TRANSLATABLE_LOCALES_ACTIVE" env-separator:"," env-default:"en,es"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Provider string `yaml:"provider" env:"TRANSLATABLE_STORAGE_PROVIDER" env-default:"memory"`
	DSN      string `yaml:"dsn"      env:"TRANSLATABLE_STORAGE_DSN"`
}

// CacheConfig captures read cache behaviour for the SQL repositories.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"TRANSLATABLE_CACHE_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl"     env:"TRANSLATABLE_CACHE_TTL"     env-default:"1m"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"   env:"TRANSLATABLE_LOG_PROVIDER"   env-default:"console"`
	Level     string   `yaml:"level"      env:"TRANSLATABLE_LOG_LEVEL"      env-default:"info"`
	Format    string   `yaml:"format"     env:"TRANSLATABLE_LOG_FORMAT"`
	AddSource bool     `yaml:"add_source" env:"TRANSLATABLE_LOG_ADD_SOURCE"`
	Focus     []string `yaml:"focus"      env:"TRANSLATABLE_LOG_FOCUS"      env-separator:","`
}

// DefaultConfig returns the defaults used when no file or environment is present.
func DefaultConfig() Config {
	return Config{
		Locales: LocalesConfig{
			Active: []string{"en", "es"},
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Load reads configuration from the YAML file at path, with TRANSLATABLE_*
// environment variables taking precedence. An empty path reads the
// environment and tag defaults only.
func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("translatable config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("translatable config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.Locales.Active) != 2 {
		return ErrLocalesInvalid
	}
	first := normalize(cfg.Locales.Active[0])
	second := normalize(cfg.Locales.Active[1])
	if first == "" || second == "" || first == second {
		return ErrLocalesInvalid
	}
	if current := normalize(cfg.Locales.Current); current != "" && current != first && current != second {
		return fmt.Errorf("%w: %s", ErrLocaleCurrentInvalid, current)
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageProvider returns the normalized storage provider, defaulting to memory.
func (cfg Config) StorageProvider() string {
	if provider := normalize(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return StorageMemory
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
