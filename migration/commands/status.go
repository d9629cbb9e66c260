package commands

import (
	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/migration/driver"
)

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pendingOnly, _ := cmd.Flags().GetBool("pending")

			return withMigrator(cmd, func(m *driver.Migrator) error {
				applied, err := m.GetAppliedVersions(cmd.Context())
				if err != nil {
					return err
				}

				printf(cmd, "%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
				for _, mr := range m.Migrations() {
					status := "Pending"
					if applied[mr.Version] {
						if pendingOnly {
							continue
						}
						status = "Applied"
					}
					printf(cmd, "%-16s  %-30s  %-8s\n", mr.Version, mr.Name, status)
				}
				return nil
			})
		},
	}

	cmd.Flags().Bool("pending", false, "Only list migrations that have not been applied")

	return cmd
}
