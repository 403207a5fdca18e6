package auditfeed

import (
	"context"

	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/models"
)

// Multi forwards each record to every notifier in order.
type Multi []audit.Notifier

// Notify implements audit.Notifier.
func (m Multi) Notify(ctx context.Context, rec *models.AuditLog) {
	for _, n := range m {
		n.Notify(ctx, rec)
	}
}
