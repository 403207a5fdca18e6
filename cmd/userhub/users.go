package main

import (
	"fmt"
	"os"

	"github.com/nebari-dev/userhub/internal/cliclient"
	"github.com/spf13/cobra"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userRole     string
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return describeError("listing users", err)
		}
		return render(cmd.OutOrStdout(), outputFormat, users, func(w *tableWriter) {
			w.row("ID", "NAME", "EMAIL", "ROLE", "CREATED")
			for _, u := range users {
				w.row(u.ID, u.Name, u.Email, roleLabel(u.Role), formatTime(u.CreatedAt))
			}
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		user, err := client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return describeError("fetching user", err)
		}
		return renderUser(cmd, user)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		if userName == "" || userEmail == "" {
			return fmt.Errorf("--name and --email are required")
		}
		password := userPassword
		if password == "" {
			if password, err = promptPassword("Password for new user: "); err != nil {
				return err
			}
		}

		user, err := client.CreateUser(cmd.Context(), cliclient.CreateUserRequest{
			Name:     userName,
			Email:    userEmail,
			Password: password,
			Role:     userRole,
		})
		if err != nil {
			return describeError("creating user", err)
		}
		fmt.Fprintf(os.Stderr, "Created user %s\n", user.ID)
		return renderUser(cmd, user)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an account",
	Long: `Update fields of an account. Only flags that are passed are changed.

Examples:
  userhub users update <id> --name "Ann Smith"
  userhub users update <id> --role admin
  userhub users update <id> --password -     # prompt for a new password`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var req cliclient.UpdateUserRequest
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = &userName
		}
		if flags.Changed("email") {
			req.Email = &userEmail
		}
		if flags.Changed("role") {
			req.Role = &userRole
		}
		if flags.Changed("password") {
			password := userPassword
			if password == "-" {
				if password, err = promptPassword("New password: "); err != nil {
					return err
				}
			}
			req.Password = &password
		}
		if req == (cliclient.UpdateUserRequest{}) {
			return fmt.Errorf("nothing to update; pass at least one of --name, --email, --role, --password")
		}

		user, err := client.UpdateUser(cmd.Context(), args[0], req)
		if err != nil {
			return describeError("updating user", err)
		}
		return renderUser(cmd, user)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
			return describeError("deleting user", err)
		}
		fmt.Fprintf(os.Stderr, "Deleted user %s\n", args[0])
		return nil
	},
}

var usersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show account and activity counters (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		stats, err := client.GetStats(cmd.Context())
		if err != nil {
			return describeError("fetching stats", err)
		}
		return render(cmd.OutOrStdout(), outputFormat, stats, func(w *tableWriter) {
			w.row("Total users", fmt.Sprint(stats.TotalUsers))
			w.row("Admins", fmt.Sprint(stats.Admins))
			w.row("Regular users", fmt.Sprint(stats.RegularUsers))
			w.row("Audit records (24h)", fmt.Sprint(stats.AuditLast24h))
			w.row("New accounts (7d)", fmt.Sprint(stats.CreatedLast7d))
		})
	},
}

func renderUser(cmd *cobra.Command, user *cliclient.User) error {
	return render(cmd.OutOrStdout(), outputFormat, user, func(w *tableWriter) {
		w.row("ID", user.ID)
		w.row("Name", user.Name)
		w.row("Email", user.Email)
		w.row("Role", roleLabel(user.Role))
		w.row("Created", formatTime(user.CreatedAt))
		w.row("Updated", formatTime(user.UpdatedAt))
	})
}

func init() {
	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userName, "name", "", "Display name")
		c.Flags().StringVar(&userEmail, "email", "", "Email address")
		c.Flags().StringVar(&userPassword, "password", "", "Password (prompted if omitted on create; '-' prompts on update)")
		c.Flags().StringVar(&userRole, "role", "", "Role: user or admin")
	}

	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd, usersStatsCmd)
}
