package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/migration/driver"
)

func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show applied migrations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			return withMigrator(cmd, func(m *driver.Migrator) error {
				records, err := m.Applied(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					printf(cmd, "No migrations have been applied\n")
					return nil
				}
				if limit > 0 && len(records) > limit {
					records = records[:limit]
				}

				printf(cmd, "%-16s  %-30s  %s\n", "Version", "Name", "Applied At")
				for _, r := range records {
					printf(cmd, "%-16s  %-30s  %s\n", r.Version, r.Name, r.AppliedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int("limit", 0, "Show at most this many records (0 for all)")

	return cmd
}
