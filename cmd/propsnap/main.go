package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration"
	"github.com/propsnap/propsnap/migration/commands"
	_ "github.com/propsnap/propsnap/migration/versions"
)

// Set with -ldflags "-X main.version=..." at build time.
var version = "dev"

func init() {
	migration.GlobalModelRegistry = models.Registry{}
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "propsnap",
		Short:         "Property listing marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.AddCommand(
		commands.InitCmd(),
		commands.UpCmd(),
		commands.DownCmd(),
		commands.StatusCmd(),
		commands.HistoryCmd(),
		commands.ValidateCmd(),
		commands.DriftCmd(),
	)

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd,
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
