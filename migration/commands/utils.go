package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/config"
	"github.com/propsnap/propsnap/internal/database"
	"github.com/propsnap/propsnap/internal/logging"
	"github.com/propsnap/propsnap/migration"
	"github.com/propsnap/propsnap/migration/driver"
)

// getDB opens the configured database. The caller closes it.
func getDB(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg, logging.Logger())
	if err != nil {
		return nil, err
	}
	return db, nil
}

func getMigrator(db *gorm.DB) *driver.Migrator {
	return driver.NewMigrator(db, migration.GetRegisteredMigrations()...).WithLogger(logging.Logger())
}

// withMigrator runs fn against a migrator over the registered migrations and
// closes the connection afterwards.
func withMigrator(cmd *cobra.Command, fn func(m *driver.Migrator) error) error {
	db, err := getDB(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := database.Close(db); cerr != nil {
			logging.Warn().Err(cerr).Msg("failed to close database")
		}
	}()
	return fn(getMigrator(db))
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
