// Package cli implements the graphedit command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/internal/config"
	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/kv"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = config.AppName
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	backend    string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Levels set here take precedence
// over the config file.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == log.DebugLevel
}

// =============================================================================
// Session Factory
// =============================================================================

// loadConfig reads the config file and applies global flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if !c.verbose {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	return cfg, nil
}

// session is an opened editor together with the storage it saves to.
type session struct {
	cfg    *config.Config
	store  kv.Store
	editor *editor.Editor
}

// Close detaches the editor and releases the storage backend.
func (s *session) Close() error {
	s.editor.Close()
	return s.store.Close()
}

// openSession connects to the configured backend and runs the initial load.
// Remote backends show a spinner on the command's stderr while connecting.
func (c *CLI) openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	var store kv.Store
	connectStore := func(ctx context.Context) (err error) {
		store, err = kv.Open(ctx, cfg.Storage.Config, c.Logger.WithPrefix("kv"))
		return err
	}
	if remote(cfg.Storage.Backend) {
		err = withSpinner(ctx, cmd.ErrOrStderr(), "Connecting to "+cfg.Storage.Backend+"...", connectStore)
	} else {
		err = connectStore(ctx)
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("storage ready", "backend", cfg.Storage.Backend, "key", cfg.Storage.Key)

	ed := editor.New(store,
		editor.WithLogger(c.Logger),
		editor.WithStorageKey(cfg.Storage.Key),
	)
	if err := ed.Open(ctx); err != nil {
		ed.Close()
		store.Close()
		return nil, err
	}
	return &session{cfg: cfg, store: store, editor: ed}, nil
}

func remote(backend string) bool {
	return backend == kv.BackendRedis || backend == kv.BackendMongo
}
