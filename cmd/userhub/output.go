package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/nebari-dev/userhub/internal/cliclient"
	"gopkg.in/yaml.v3"
)

// tableWriter aligns rows into columns.
type tableWriter struct {
	tw *tabwriter.Writer
}

func (w *tableWriter) row(cols ...string) {
	fmt.Fprintln(w.tw, strings.Join(cols, "\t"))
}

// render writes v as JSON or YAML, or calls table for the default format.
func render(out io.Writer, format string, v interface{}, table func(*tableWriter)) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		w := &tableWriter{tw: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
		table(w)
		return w.tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
	}
}

// actionLabel colors audit actions: green create, yellow update, red delete.
func actionLabel(action string) string {
	switch action {
	case "create":
		return color.GreenString(action)
	case "update":
		return color.YellowString(action)
	case "delete":
		return color.RedString(action)
	default:
		return action
	}
}

func roleLabel(role string) string {
	if role == "admin" {
		return color.CyanString(role)
	}
	return role
}

// refLabel renders a resolved reference; unresolved ones mean the account is gone.
func refLabel(ref *cliclient.UserRef, actorType string) string {
	if ref != nil {
		return fmt.Sprintf("%s <%s>", ref.Name, ref.Email)
	}
	if actorType == "system" {
		return "system"
	}
	return color.New(color.Faint).Sprint("unknown/deleted account")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
