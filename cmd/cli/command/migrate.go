package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookex/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and seed the default menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := database.SeedMenu(db); err != nil {
			return fmt.Errorf("menu seeding failed: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Schema is up to date (%s)\n", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
