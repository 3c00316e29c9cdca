package kv

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures an embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `toml:"path"`

	// InMemory keeps everything in RAM.
	InMemory bool `toml:"in_memory"`

	// SyncWrites fsyncs every write.
	SyncWrites bool `toml:"sync_writes"`
}

// Badger stores values in a BadgerDB database.
type Badger struct {
	db *badger.DB
}

// badgerLogger adapts a charmbracelet logger to badger.Logger.
type badgerLogger struct {
	logger *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.logger.Debugf(format, args...) }

// NewBadger opens the database described by cfg. A nil logger disables
// badger's internal logging.
func NewBadger(cfg BadgerConfig, logger *log.Logger) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.WithPrefix("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get returns a copy of the value under key.
func (b *Badger) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key.
func (b *Badger) Set(ctx context.Context, key string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes key.
func (b *Badger) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

var _ Store = (*Badger)(nil)
