package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they do not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := loadConfig(root)
			if err != nil {
				return err
			}

			database, err := connectDB(cmd.Context(), cfg.DB, l)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			l.Info("Schema is up to date")
			return nil
		},
	}
}
