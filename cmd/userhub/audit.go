package main

import (
	"github.com/nebari-dev/userhub/internal/cliclient"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the newest audit records across all accounts (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		entries, err := client.ListAuditLogs(cmd.Context())
		if err != nil {
			return describeError("listing audit logs", err)
		}
		return renderAudit(cmd, entries)
	},
}

var auditMineCmd = &cobra.Command{
	Use:     "mine",
	Aliases: []string{"my-activity"},
	Short:   "Show audit records you performed or that affected you",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		entries, err := client.MyActivity(cmd.Context())
		if err != nil {
			return describeError("listing activity", err)
		}
		return renderAudit(cmd, entries)
	},
}

func renderAudit(cmd *cobra.Command, entries []cliclient.AuditEntry) error {
	return render(cmd.OutOrStdout(), outputFormat, entries, func(w *tableWriter) {
		w.row("TIME", "ACTION", "BY", "ACTOR", "TARGET", "MESSAGE")
		for _, e := range entries {
			w.row(
				formatTime(e.CreatedAt),
				actionLabel(e.Action),
				e.ActorType,
				refLabel(e.Actor, e.ActorType),
				refLabel(e.Target, ""),
				e.Message,
			)
		}
	})
}

func init() {
	auditCmd.AddCommand(auditListCmd, auditMineCmd)
}
