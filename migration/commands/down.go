package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/migration/driver"
)

func DownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}

			return withMigrator(cmd, func(m *driver.Migrator) error {
				for i := 0; i < steps; i++ {
					reverted, err := m.Down(cmd.Context())
					if errors.Is(err, driver.ErrNothingToRevert) {
						printf(cmd, "No migrations to revert\n")
						return nil
					}
					if err != nil {
						return err
					}
					printf(cmd, "Reverted %s %s\n", reverted.Version, reverted.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int("steps", 1, "Number of migrations to revert")

	return cmd
}
