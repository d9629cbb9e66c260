package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/migration"
)

func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations := migration.GetRegisteredMigrations()
			if len(migrations) == 0 {
				return fmt.Errorf("validation failed: no migrations registered")
			}
			if err := migration.Validate(migrations); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			printf(cmd, "All %d migrations are valid\n", len(migrations))
			return nil
		},
	}
}
