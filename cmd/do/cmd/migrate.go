package cmd

import (
	"fmt"

	"github.com/mentorconnect/goaltracker/internal/config"
	"github.com/mentorconnect/goaltracker/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := db.Init(cmd.Context(), cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			version, err := db.Version(cmd.Context(), database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Println("schema version:", version)
			return nil
		},
	})

	return cmd
}

func runMigrate(cmd *cobra.Command, up bool) error {
	cfg := config.Load()
	ctx := cmd.Context()

	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if up {
		err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	} else {
		err = db.MigrateDown(ctx, database.DB, cfg.DBDriver)
	}
	if err != nil {
		return err
	}

	version, err := db.Version(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		return err
	}
	fmt.Println("schema version:", version)
	return nil
}
