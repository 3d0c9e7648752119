package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/http-api/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long:  `Create accounts and change roles without going through the sign-up page.`,
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		email, _ := cmd.Flags().GetString("email")
		admin, _ := cmd.Flags().GetBool("admin")

		repo := repository.NewUserRepository(db)
		user, err := service.NewAuthService(repo, cfg).Register(username, password, email)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if admin {
			if err := repo.SetRole(user.Username, models.RoleAdmin); err != nil {
				return fmt.Errorf("user created but promotion failed: %w", err)
			}
			user.Role = models.RoleAdmin
		}

		out := cmd.OutOrStdout()
		success.Fprintln(out, "✓ User created successfully!")
		fmt.Fprintf(out, "UserID: %s\n", user.ID)
		fmt.Fprintf(out, "Role: %s\n", user.Role)
		return nil
	},
}

var promoteUserCmd = &cobra.Command{
	Use:   "promote [username]",
	Short: "Change a user's role (admin by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		if role != models.RoleAdmin && role != models.RoleUser {
			return fmt.Errorf("invalid role %q: use %s or %s", role, models.RoleAdmin, models.RoleUser)
		}

		err := repository.NewUserRepository(db).SetRole(args[0], role)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", args[0], role)
		return nil
	},
}

func init() {
	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(promoteUserCmd)
	rootCmd.AddCommand(userCmd)

	createUserCmd.Flags().StringP("username", "u", "", "Username for the new account")
	createUserCmd.Flags().StringP("password", "p", "", "Password for the new account")
	createUserCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	createUserCmd.Flags().Bool("admin", false, "Grant the admin role")
	createUserCmd.MarkFlagRequired("username")
	createUserCmd.MarkFlagRequired("password")
	createUserCmd.MarkFlagRequired("email")

	promoteUserCmd.Flags().String("role", models.RoleAdmin, "Role to assign (admin or user)")
}
