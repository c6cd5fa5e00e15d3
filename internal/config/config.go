package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	CorpusPath      string        `mapstructure:"corpus_path" validate:"required,dir"`
	Extensions      []string      `mapstructure:"extensions"`
	IgnorePatterns  []string      `mapstructure:"ignore_patterns"`
	IncludePatterns []string      `mapstructure:"include_patterns"`
	Cache           CacheConfig   `mapstructure:"cache"`
	Watch           WatchConfig   `mapstructure:"watch"`
	Export          *ExportConfig `mapstructure:"export" validate:"omitempty"`
}

// CacheConfig controls the persistent metadata cache.
type CacheConfig struct {
	Path       string `mapstructure:"path"`
	MaxWorkers int    `mapstructure:"max_workers" validate:"min=1"`
}

// WatchConfig controls the filesystem watcher's debounce behavior.
type WatchConfig struct {
	DebounceMs int `mapstructure:"debounce_ms"`
}

// ExportConfig enables the optional Postgres export sink.
type ExportConfig struct {
	Database      DatabaseConfig `mapstructure:"database" validate:"required"`
	BatchSize     int            `mapstructure:"batch_size"`
	RetryAttempts int            `mapstructure:"retry_attempts"`
	RetryDelayMs  int            `mapstructure:"retry_delay_ms"`
}

// DatabaseConfig holds Postgres connection settings for the export sink.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Database string `mapstructure:"database" validate:"required"`
	Schema   string `mapstructure:"schema"` // Optional: derived from corpus directory name if unset
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnectionString returns the PostgreSQL connection string.
func (d *DatabaseConfig) ConnectionString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, sslMode,
	)
	if d.Schema != "" {
		connStr += "&search_path=" + d.Schema + ",public"
	}
	return connStr
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".md"},
		Cache: CacheConfig{
			MaxWorkers: 8,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		IgnorePatterns: []string{
			".obsidian/**",
			".trash/**",
			".git/**",
			"**/.DS_Store",
			"**/node_modules/**",
		},
	}
}

// Load reads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("cache.max_workers", defaults.Cache.MaxWorkers)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("ignore_patterns", defaults.IgnorePatterns)
	v.SetDefault("export.batch_size", 100)
	v.SetDefault("export.retry_attempts", 3)
	v.SetDefault("export.retry_delay_ms", 1000)
	v.SetDefault("export.database.port", 5432)
	v.SetDefault("export.database.sslmode", "require")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("ZETTELKASTEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.CorpusPath = expandPath(cfg.CorpusPath)
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.CorpusPath, ".zettelkasten-cache")
	} else {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}

	if cfg.Export != nil {
		cfg.Export.Database.Password = os.ExpandEnv(cfg.Export.Database.Password)
		if cfg.Export.Database.Schema == "" {
			cfg.Export.Database.Schema = SanitizeIdentifier(filepath.Base(cfg.CorpusPath))
		}
	}

	validate := validator.New()
	validate.RegisterValidation("dir", func(fl validator.FieldLevel) bool {
		path := fl.Field().String()
		if path == "" {
			return false
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return info.IsDir()
	})

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// getConfigDir returns the appropriate config directory for the OS.
func getConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "zettelkasten")
		}
		return filepath.Join(os.Getenv("USERPROFILE"), ".config", "zettelkasten")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "zettelkasten")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "zettelkasten")
	}
}

// GetStateDir returns the directory for storing state files, creating it
// if needed. Load does not use it: an unset Cache.Path defaults to
// <CorpusPath>/.zettelkasten-cache.
func GetStateDir() (string, error) {
	dir := getConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// expandPath expands ~ and environment variables in a path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path)
}

// SanitizeIdentifier converts a corpus directory name into a valid
// PostgreSQL identifier (schema/database name):
//   - Lowercase only
//   - Starts with a letter or underscore
//   - Contains only letters, digits, underscores
//   - Spaces and hyphens become underscores
//   - Max 63 characters (PostgreSQL limit)
func SanitizeIdentifier(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	reg := regexp.MustCompile(`[^a-z0-9_]`)
	name = reg.ReplaceAllString(name, "")

	reg = regexp.MustCompile(`_+`)
	name = reg.ReplaceAllString(name, "_")

	name = strings.Trim(name, "_")

	if len(name) == 0 {
		name = "zettelkasten"
	} else if unicode.IsDigit(rune(name[0])) {
		name = "zettelkasten_" + name
	}

	if len(name) > 63 {
		name = name[:63]
		name = strings.TrimRight(name, "_")
	}

	return name
}
