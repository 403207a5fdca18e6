package cliclient

import "context"

// ListAuditLogs returns the newest audit records across all users (admin only).
func (c *Client) ListAuditLogs(ctx context.Context) ([]AuditEntry, error) {
	var entries []AuditEntry
	if _, err := c.Get(ctx, "/auditlogs", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MyActivity returns records where the caller is actor or target.
func (c *Client) MyActivity(ctx context.Context) ([]AuditEntry, error) {
	var entries []AuditEntry
	if _, err := c.Get(ctx, "/auditlogs/my-activity", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
