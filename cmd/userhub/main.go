package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "userhub",
	Short: "userhub - user management with an audit trail",
	Long:  `userhub manages user accounts and records every change to them in an append-only audit log.`,
	Example: `  # Start a server with a bootstrap admin
  USERHUB_ADMIN_EMAIL=root@example.com USERHUB_ADMIN_PASSWORD=changeme userhub serve

  # Log in and inspect accounts
  userhub login http://localhost:5000
  userhub users list
  userhub audit list -o yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddGroup(
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "server", Title: "Server Commands:"},
	)

	loginCmd.GroupID = "account"
	signupCmd.GroupID = "account"
	logoutCmd.GroupID = "account"
	whoamiCmd.GroupID = "account"

	usersCmd.GroupID = "admin"
	auditCmd.GroupID = "admin"

	serveCmd.GroupID = "server"

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
