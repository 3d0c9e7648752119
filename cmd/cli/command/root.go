package command

// root.go defines the root command for the bookex admin CLI.
// Every subcommand talks to the database configured for the api server.

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bookex/database"
	"bookex/internal/config"
)

var (
	cfg *config.Config // loaded once per invocation
	db  *gorm.DB

	closeDB = func() {}

	success = color.New(color.FgGreen)

	// connect opens the configured database without migrating it
	connect = func() (*config.Config, *gorm.DB, func(), error) {
		c, err := config.LoadConfig()
		if err != nil {
			return nil, nil, nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, nil, nil, err
		}
		d, err := database.Open(c.DatabaseDriver, c.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return c, d, func() { database.Close(d) }, nil
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookex-admin",
	Short: "bookex-admin - BookEx administration",
	Long: `bookex-admin manages a BookEx deployment directly through its database.
It reads the same environment (and .env file) as the api server. Use it to:
- Apply the schema and seed the default menu
- Create users and grant the admin role
- Add and list menu entries

Use "bookex-admin command --help" to see all available commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, db, closeDB, err = connect()
		if err != nil {
			closeDB = func() {}
			return fmt.Errorf("could not open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeDB()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
