package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/config"
	"github.com/roach88/arbor/internal/logging"
	"github.com/roach88/arbor/internal/metrics"
	"github.com/roach88/arbor/internal/schema"
	"github.com/roach88/arbor/internal/store"
)

// environment is the resolved configuration, logger and schema a command
// runs with, plus the store once opened.
type environment struct {
	cfg        *config.Config
	configPath string // "" when running on defaults
	logger     *slog.Logger
	types      *schema.Registry
	store      *store.Store
}

// loadEnvironment resolves the config file, logger and node types.
// Flags override the config file.
func loadEnvironment(opts *RootOptions, errW io.Writer) (*environment, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if opts.ConfigPath != "" {
		cfg, path, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid log level", err)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewWithWriter(errW, level)

	types, err := schema.Default()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load builtin types", err)
	}
	if cfg.Schema.Path != "" {
		types, err = schema.LoadFile(types, cfg.Schema.Path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
		}
	}

	logger.Debug("environment loaded",
		"config", path,
		"database", cfg.Database.Path,
		"types", len(types.Names()),
	)
	return &environment{cfg: cfg, configPath: path, logger: logger, types: types}, nil
}

// openEnvironment loads the environment and opens the configured store.
func openEnvironment(opts *RootOptions, errW io.Writer) (*environment, error) {
	env, err := loadEnvironment(opts, errW)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(env.cfg.Database.Path,
		store.WithSchema(env.types),
		store.WithLogger(env.logger),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	env.store = st
	return env, nil
}

// Close closes the store, if one was opened.
func (e *environment) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// reportStats prints the store counters when --stats is set.
func (e *environment) reportStats(opts *RootOptions, w io.Writer) error {
	if !opts.Stats || e.store == nil {
		return nil
	}
	snapshot, err := e.store.Metrics().Snapshot()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read counters", err)
	}
	_, err = fmt.Fprint(w, metrics.Format(snapshot))
	return err
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
