package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookex/internal/http-api/repository"
	"bookex/internal/http-api/service"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Navigation menu commands",
}

var addMenuCmd = &cobra.Command{
	Use:   "add [item] [link]",
	Short: "Append an entry to the navigation menu",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		menu := service.NewMenuService(repository.NewMenuRepository(db))
		item, err := menu.Add(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add menu item: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Added %q -> %s (id %d)\n", item.Item, item.Link, item.ID)
		return nil
	},
}

var listMenuCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the navigation menu in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := service.NewMenuService(repository.NewMenuRepository(db)).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list menu: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No menu items. Run 'bookex-admin migrate' to seed the defaults.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tITEM\tLINK")
		for _, it := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", it.ID, it.Item, it.Link)
		}
		return w.Flush()
	},
}

func init() {
	menuCmd.AddCommand(addMenuCmd)
	menuCmd.AddCommand(listMenuCmd)
	rootCmd.AddCommand(menuCmd)
}
