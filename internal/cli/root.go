// Package cli provides the command-line interface for leapdal.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/internal/cli/commands"
	"github.com/leapstack-labs/leapdal/internal/cli/config"
	"github.com/leapstack-labs/leapdal/internal/cli/output"
	"github.com/leapstack-labs/leapdal/pkg/driver"

	// Drivers register themselves with the driver registry.
	_ "github.com/leapstack-labs/leapdal/pkg/drivers/duckdb"
	_ "github.com/leapstack-labs/leapdal/pkg/drivers/memory"
	_ "github.com/leapstack-labs/leapdal/pkg/drivers/postgres"
	_ "github.com/leapstack-labs/leapdal/pkg/drivers/sqlite"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapdal",
		Short: "leapdal - data access layer for project entities",
		Long: `leapdal stores models, code, environments, file collections, sessions,
tasks, snapshots and users as documents behind a pluggable driver.

The same commands work against an in-memory store, SQLite, DuckDB or
PostgreSQL; pick one with --driver or leapdal.yaml.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, config.LoggerKey(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", slog.String("path", configFile))
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapdal.yaml)")
	rootCmd.PersistentFlags().String("driver", "", "Storage driver (memory|sqlite|duckdb|postgres)")
	rootCmd.PersistentFlags().String("path", "", "Database file for sqlite and duckdb")
	rootCmd.PersistentFlags().String("dsn", "", "Connection string for postgres")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := []string{
			string(output.ModeAuto), string(output.ModeText), string(output.ModeMarkdown),
			string(output.ModeJSON), string(output.ModeYAML),
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return driver.List(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewKindsCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapdal.

To load completions:

Bash:
  $ source <(leapdal completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapdal completion bash > /etc/bash_completion.d/leapdal
  # macOS:
  $ leapdal completion bash > $(brew --prefix)/etc/bash_completion.d/leapdal

Zsh:
  $ leapdal completion zsh > "${fpath[1]}/_leapdal"

Fish:
  $ leapdal completion fish > ~/.config/fish/completions/leapdal.fish

PowerShell:
  PS> leapdal completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
