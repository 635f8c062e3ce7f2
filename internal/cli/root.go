// Package cli wires configuration, storage and the HTTP server into the
// musikkhylla command.
package cli

import (
	"log/slog"

	"github.com/dom/musikkhylla/internal/config"
	"github.com/dom/musikkhylla/internal/logging"
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every subcommand. Empty values keep the
// environment configuration.
type RootOptions struct {
	DatabaseURL string
	LogLevel    string
}

// load reads the environment and applies flag overrides.
func (o *RootOptions) load() (*config.Config, *slog.Logger) {
	cfg := config.Load()
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	return cfg, logging.Setup(cfg.LogLevel)
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "musikkhylla",
		Short:         "Musikkhylla album collection API",
		Long:          "Serves the Musikkhylla API and runs its database maintenance tasks.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "postgres connection URL (overrides DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewResetDBCommand(opts))
	cmd.AddCommand(NewPruneCodesCommand(opts))

	return cmd
}
