package cli

import (
	"fmt"

	"github.com/dom/musikkhylla/internal/logging"
	"github.com/dom/musikkhylla/internal/repository/postgres"
	"github.com/dom/musikkhylla/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending database migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := rootOpts.load()
			db, err := open(cfg.DatabaseURL, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

// NewResetDBCommand drops every table and recreates the schema. It refuses to
// run without --yes.
func NewResetDBCommand(rootOpts *RootOptions) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:          "reset-db",
		Short:        "Drop all data and recreate the schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("reset-db deletes every user and album; pass --yes to continue")
			}

			cfg, logger := rootOpts.load()
			db, err := open(cfg.DatabaseURL, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := postgres.Reset(cmd.Context(), db); err != nil {
				return fmt.Errorf("reset database: %w", err)
			}
			logger.Info("database reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")

	return cmd
}

func NewPruneCodesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "prune-codes",
		Short:        "Delete login codes past the retention period",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := rootOpts.load()
			db, err := open(cfg.DatabaseURL, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeDB(db)

			services := service.NewServices(postgres.NewRepositories(db), cfg, service.Deps{Logger: logger})
			deleted, err := services.Auth.PruneLoginCodes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d login codes\n", deleted)
			return nil
		},
	}
}

func open(databaseURL, logLevel string) (*gorm.DB, error) {
	db, err := postgres.NewConnection(databaseURL, logging.GormLevel(logLevel))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
