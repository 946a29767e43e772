package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/internal/cli/config"
	"github.com/leapstack-labs/leapdal/internal/cli/output"
	"github.com/leapstack-labs/leapdal/pkg/dal"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Backend  driver.Backend
	DAL      *dal.DAL
	Renderer *output.Renderer
}

// NewCommandContext opens the configured driver and builds the DAL over it.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutDriver(cmd)

	backend, err := driver.Open(cmd.Context(), cmdCtx.Cfg.Driver.Backend(), cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Logger.Debug("driver opened",
		slog.String("type", backend.Name()),
		slog.String("path", cmdCtx.Cfg.Driver.Path))

	cmdCtx.Backend = backend
	cmdCtx.DAL = dal.New(backend, dal.WithLogger(cmdCtx.Logger))

	cleanup := func() {
		if err := backend.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close driver", slog.String("error", err.Error()))
		}
	}

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutDriver creates a CommandContext without a driver.
// Useful for commands that don't need storage access.
func NewCommandContextWithoutDriver(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, or defaults when none was
// loaded (commands run directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Driver: config.DriverConfig{
			Type: config.DefaultDriver,
			Path: config.DefaultPath,
		},
		OutputFormat: config.DefaultOutput,
	}
}
