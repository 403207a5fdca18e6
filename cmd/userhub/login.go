package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nebari-dev/userhub/internal/cliclient"
	"github.com/nebari-dev/userhub/internal/localstore"
	"github.com/spf13/cobra"
)

var (
	loginEmail string
	loginToken string
	signupName string
)

var loginCmd = &cobra.Command{
	Use:   "login <server-url>",
	Short: "Log in to a userhub server",
	Long: `Authenticates with a userhub server and stores the session token.

Examples:
  userhub login http://localhost:5000
  userhub login http://localhost:5000 --email ann@example.com
  userhub login http://localhost:5000 --token <jwt>`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup <server-url>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := localstore.ClearToken(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		user, err := client.Me(cmd.Context())
		if err != nil {
			if cliclient.IsUnauthorized(err) {
				return fmt.Errorf("session expired; run 'userhub login' again")
			}
			return describeError("fetching current user", err)
		}
		return render(cmd.OutOrStdout(), outputFormat, user, func(w *tableWriter) {
			w.row("ID", "NAME", "EMAIL", "ROLE")
			w.row(user.ID, user.Name, user.Email, roleLabel(user.Role))
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted if omitted)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token (skip interactive login)")

	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name (prompted if omitted)")
	signupCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted if omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	serverURL, err := normalizeServerURL(args[0])
	if err != nil {
		return err
	}

	cfg := &localstore.Config{ServerURL: serverURL}

	if loginToken != "" {
		cfg.Token = loginToken
		cfg.Email = "(token)"
	} else {
		email := loginEmail
		if email == "" {
			if email, err = prompt(os.Stdin, "Email: "); err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		resp, err := cliclient.NewWithoutAuth(serverURL).Login(context.Background(), email, password)
		if err != nil {
			return describeError("login failed", err)
		}
		cfg.Token = resp.Token
		cfg.Email = resp.User.Email
	}

	if err := localstore.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Logged in to %s as %s\n", serverURL, cfg.Email)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	serverURL, err := normalizeServerURL(args[0])
	if err != nil {
		return err
	}

	req := cliclient.SignupRequest{Name: signupName, Email: loginEmail}
	if req.Name == "" {
		if req.Name, err = prompt(os.Stdin, "Name: "); err != nil {
			return err
		}
	}
	if req.Email == "" {
		if req.Email, err = prompt(os.Stdin, "Email: "); err != nil {
			return err
		}
	}
	if req.Password, err = promptPassword("Password: "); err != nil {
		return err
	}

	resp, err := cliclient.NewWithoutAuth(serverURL).Signup(context.Background(), req)
	if err != nil {
		return describeError("signup failed", err)
	}

	cfg := &localstore.Config{ServerURL: serverURL, Token: resp.Token, Email: resp.User.Email}
	if err := localstore.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Account created; logged in to %s as %s\n", serverURL, cfg.Email)
	return nil
}
