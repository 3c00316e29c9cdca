// Package config loads graphedit settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/kv"
	"github.com/matzehuels/graphedit/pkg/persist"
)

// AppName names the config and data directories.
const AppName = "graphedit"

// Config holds graphedit configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// StorageConfig selects the auto-save backend and key.
type StorageConfig struct {
	Key string `toml:"key"`
	kv.Config
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Duration is a time.Duration written as a string in TOML ("5s").
type Duration struct{ time.Duration }

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Storage: StorageConfig{
			Key: persist.DefaultKey,
			Config: kv.Config{
				Backend: kv.BackendFile,
				Dir:     filepath.Join(DataDir(), "store"),
				Redis:   kv.RedisConfig{Addr: "localhost:6379"},
				Mongo:   kv.MongoConfig{URI: "mongodb://localhost:27017", Database: AppName, Collection: "kv"},
				Badger:  kv.BadgerConfig{Path: filepath.Join(DataDir(), "badger"), SyncWrites: true},
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the config directory ($XDG_CONFIG_HOME/graphedit).
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName)
}

// DataDir returns the data directory ($XDG_DATA_HOME/graphedit).
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, AppName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, or the default path when empty. A
// missing file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendFile, kv.BackendMemory, kv.BackendNull, kv.BackendBadger, kv.BackendRedis, kv.BackendMongo:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if err := apperrors.ValidateStorageKey(c.Storage.Key); err != nil {
		return fmt.Errorf("storage.key: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

// Save writes cfg to path, or the default path when empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
