package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nebari-dev/userhub/internal/cliclient"
	"github.com/nebari-dev/userhub/internal/localstore"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in; run 'userhub login <server-url>' first")

// getClient returns an authenticated client for the stored session.
func getClient() (*cliclient.Client, error) {
	cfg, err := localstore.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.LoggedIn() {
		return nil, errNotLoggedIn
	}
	return cliclient.New(cfg.ServerURL, cfg.Token), nil
}

// normalizeServerURL validates the scheme and strips trailing slashes.
func normalizeServerURL(raw string) (string, error) {
	serverURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return "", fmt.Errorf("server URL must start with http:// or https://")
	}
	return serverURL, nil
}

// prompt reads a single line from in after printing label to stderr.
func prompt(in io.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo.
func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passBytes), nil
}

// describeError turns API errors into a one-line message.
func describeError(action string, err error) error {
	var apiErr *cliclient.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", action, apiErr.Message())
	}
	return fmt.Errorf("%s: %w", action, err)
}
