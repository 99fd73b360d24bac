// Package config provides configuration management for the perf-fold tool.
package config

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Fold    FoldConfig    `mapstructure:"fold"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// FoldConfig holds defaults for the folding engine. Command-line flags
// override these values.
type FoldConfig struct {
	// NWorkers is the number of parallel workers. Zero means one worker
	// per logical CPU, resolved at load time so the engine never consults
	// process-wide state itself.
	NWorkers int `mapstructure:"nworkers"`

	// IncludeAddrs renders raw addresses for frames without a symbol.
	IncludeAddrs bool `mapstructure:"include_addrs"`

	// IncludePID appends the process id to the process label.
	IncludePID bool `mapstructure:"include_pid"`

	// IncludeTID appends the thread id to the process label.
	IncludeTID bool `mapstructure:"include_tid"`

	// AnnotateKernel appends _[k] to kernel frame labels.
	AnnotateKernel bool `mapstructure:"annotate_kernel"`

	// AnnotateJIT appends _[j] to JIT frame labels.
	AnnotateJIT bool `mapstructure:"annotate_jit"`

	// EventFilter restricts folding to one event type. Empty means the
	// filter resolves to the first event each worker encounters.
	EventFilter string `mapstructure:"event_filter"`

	// SkipAfter names a marker function; ancestor frames above the first
	// match from the root are discarded.
	SkipAfter string `mapstructure:"skip_after"`
}

// ArchiveConfig holds fold-run archive configuration.
type ArchiveConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // sqlite, mysql or postgres
	Path     string `mapstructure:"path"` // sqlite database file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`

	// Compression selects how folded output blobs are stored: zstd, gzip
	// or none.
	Compression string `mapstructure:"compression"`
}

// StorageConfig holds object storage configuration for result upload.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"` // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"` // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("perf-fold")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/perf-fold")
		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine, defaults apply
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Allow environment variables to override config
	v.SetEnvPrefix("PERF_FOLD")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Fold defaults
	v.SetDefault("fold.nworkers", runtime.NumCPU())

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.type", "sqlite")
	v.SetDefault("archive.path", "./perf-fold.db")
	v.SetDefault("archive.max_conns", 5)
	v.SetDefault("archive.compression", "zstd")

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./results")

	// Log defaults
	v.SetDefault("log.level", "warn")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Fold.NWorkers < 1 {
		return fmt.Errorf("fold worker count must be at least 1, got %d", c.Fold.NWorkers)
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "sqlite":
			if c.Archive.Path == "" {
				return fmt.Errorf("archive path is required for sqlite")
			}
		case "mysql", "postgres", "postgresql":
			if c.Archive.Host == "" {
				return fmt.Errorf("archive host is required for %s", c.Archive.Type)
			}
		default:
			return fmt.Errorf("unsupported archive type: %s", c.Archive.Type)
		}

		switch c.Archive.Compression {
		case "", "none", "gzip", "zstd":
		default:
			return fmt.Errorf("unsupported archive compression: %s", c.Archive.Compression)
		}
	}

	if c.Storage.Type != "" && c.Storage.Type != "local" && c.Storage.Type != "cos" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	return nil
}
