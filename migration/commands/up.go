package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/migration/driver"
)

func UpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *driver.Migrator) error {
				applied, err := m.Up(cmd.Context())
				if err != nil {
					return fmt.Errorf("migration failed after %d applied: %w", applied, err)
				}
				if applied == 0 {
					printf(cmd, "No pending migrations\n")
					return nil
				}
				printf(cmd, "Applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
}
