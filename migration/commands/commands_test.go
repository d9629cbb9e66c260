package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration"
	"github.com/propsnap/propsnap/migration/commands"
	_ "github.com/propsnap/propsnap/migration/versions"
)

func TestCommandDefinitions(t *testing.T) {
	cases := []struct {
		cmd   *cobra.Command
		use   string
		short string
		flags []string
	}{
		{commands.InitCmd(), "init", "Initialize migration tracking table in the database", nil},
		{commands.UpCmd(), "up", "Apply all pending migrations", nil},
		{commands.DownCmd(), "down", "Revert the most recently applied migrations", []string{"steps"}},
		{commands.StatusCmd(), "status", "Show status of all migrations", []string{"pending"}},
		{commands.HistoryCmd(), "history", "Show applied migrations, newest first", []string{"limit"}},
		{commands.ValidateCmd(), "validate", "Validate all migrations", nil},
		{commands.DriftCmd(), "drift", "Compare registered models against the live schema", []string{"fail"}},
	}
	for _, tc := range cases {
		t.Run(tc.use, func(t *testing.T) {
			assert.Equal(t, tc.use, tc.cmd.Use)
			assert.Equal(t, tc.short, tc.cmd.Short)
			for _, f := range tc.flags {
				assert.NotNil(t, tc.cmd.Flags().Lookup(f), f)
			}
		})
	}
}

func useSQLite(t *testing.T) {
	t.Helper()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PROPSNAP_CONFIG", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "cli.db"))
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateRegisteredMigrations(t *testing.T) {
	out, err := run(t, commands.ValidateCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "All 3 migrations are valid")
}

func TestMigrateLifecycle(t *testing.T) {
	useSQLite(t)
	migration.GlobalModelRegistry = models.Registry{}
	t.Cleanup(func() { migration.GlobalModelRegistry = nil })

	out, err := run(t, commands.StatusCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "create_listing_tables")
	assert.NotContains(t, out, "Applied")

	out, err = run(t, commands.UpCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 3 migration(s)")

	out, err = run(t, commands.UpCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "No pending migrations")

	out, err = run(t, commands.DriftCmd(), "--fail")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = run(t, commands.HistoryCmd(), "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "create_chat_tables")
	assert.NotContains(t, out, "create_listing_tables")

	out, err = run(t, commands.DownCmd(), "--steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Reverted 20250301090200 create_chat_tables")

	out, err = run(t, commands.StatusCmd(), "--pending")
	require.NoError(t, err)
	assert.Contains(t, out, "create_chat_tables")
	assert.NotContains(t, out, "create_enquiry_tables")

	_, err = run(t, commands.DriftCmd(), "--fail")
	assert.ErrorContains(t, err, "schema drift detected")

	out, err = run(t, commands.DownCmd(), "--steps", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "No migrations to revert")
}

func TestDriftRequiresRegistry(t *testing.T) {
	migration.GlobalModelRegistry = nil
	_, err := run(t, commands.DriftCmd())
	assert.ErrorContains(t, err, "no model registry provided")
}
