package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/internal/database"
	"github.com/propsnap/propsnap/migration"
)

func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize migration tracking table in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := db.WithContext(cmd.Context()).AutoMigrate(&migration.MigrationRecord{}); err != nil {
				return fmt.Errorf("failed to create schema_migrations table: %w", err)
			}

			printf(cmd, "Migration tracking initialized (%d migrations registered)\n", len(migration.GetRegisteredMigrations()))
			return nil
		},
	}
}
