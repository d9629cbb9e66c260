package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/internal/database"
	"github.com/propsnap/propsnap/migration"
	"github.com/propsnap/propsnap/migration/diff"
)

func DriftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare registered models against the live schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			failOnDrift, _ := cmd.Flags().GetBool("fail")

			if err := migration.ValidateRegistry(); err != nil {
				return err
			}

			db, err := getDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			drift, err := diff.Check(db.WithContext(cmd.Context()), migration.GlobalModelRegistry.GetModels())
			if err != nil {
				return err
			}

			printf(cmd, "%s\n", strings.TrimSpace(drift.String()))
			if !drift.Empty() && failOnDrift {
				return fmt.Errorf("schema drift detected")
			}
			return nil
		},
	}

	cmd.Flags().Bool("fail", false, "Exit with an error when drift is found")

	return cmd
}
