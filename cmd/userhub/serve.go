package main

import (
	"fmt"
	"os"

	"github.com/nebari-dev/userhub/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a userhub server instance",
	Long: `Start the userhub API server.

Examples:
  userhub serve                 # Use config defaults
  userhub serve --port 8080     # Override port

Environment variables:
  USERHUB_SERVER_PORT          Server port (default: 5000)
  USERHUB_DATABASE_DRIVER      Database driver: sqlite, postgres, mysql
  USERHUB_DATABASE_DSN         Database connection string
  USERHUB_AUTH_JWT_SECRET      JWT signing secret
  USERHUB_ADMIN_EMAIL          Bootstrap admin email
  USERHUB_ADMIN_PASSWORD       Bootstrap admin password
  USERHUB_FEED_VALKEY_ADDR     Publish audit records to Valkey`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:    servePort,
		Version: Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
