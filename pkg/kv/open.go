package kv

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendBadger = "badger"
)

// Backends lists every backend name.
var Backends = []string{BackendFile, BackendMemory, BackendNull, BackendBadger, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	Backend string       `toml:"backend"`
	Dir     string       `toml:"dir"`
	Prefix  string       `toml:"prefix"`
	Redis   RedisConfig  `toml:"redis"`
	Mongo   MongoConfig  `toml:"mongo"`
	Badger  BadgerConfig `toml:"badger"`
}

// Open builds the backend named by cfg.Backend, wrapped with cfg.Prefix.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemory()
	case BackendNull:
		s = NewNull()
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file backend: dir is required")
		}
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedis(ctx, cfg.Redis)
	case BackendMongo:
		s, err = NewMongo(ctx, cfg.Mongo)
	case BackendBadger:
		s, err = NewBadger(cfg.Badger, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return WithPrefix(s, cfg.Prefix), nil
}
