package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/auditfeed"
)

// keepAliveInterval spaces SSE comments so idle proxies keep the stream open
const keepAliveInterval = 30 * time.Second

// AuditHandler serves the audit log views
type AuditHandler struct {
	query  *audit.Query
	broker *auditfeed.Broker
}

// NewAuditHandler creates a new AuditHandler. broker may be nil, in which
// case the stream endpoint reports 503.
func NewAuditHandler(query *audit.Query, broker *auditfeed.Broker) *AuditHandler {
	return &AuditHandler{query: query, broker: broker}
}

// ListAuditLogs returns the newest audit records across all users (admin only)
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	entries, err := h.query.ListAll(c.Request.Context(), who)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// MyActivity returns records where the caller is the actor or the target
func (h *AuditHandler) MyActivity(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	entries, err := h.query.ListMine(c.Request.Context(), who)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// StreamAuditLogs pushes newly appended records via Server-Sent Events
func (h *AuditHandler) StreamAuditLogs(c *gin.Context) {
	if h.broker == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Audit stream not available"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(http.StatusOK)

	ch := h.broker.Subscribe()
	defer h.broker.Unsubscribe(ch)

	fmt.Fprint(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		case rec, ok := <-ch:
			if !ok {
				fmt.Fprintf(c.Writer, "event: done\ndata: Stream ended\n\n")
				c.Writer.Flush()
				return
			}
			data, err := json.Marshal(rec)
			if err != nil {
				slog.Error("Failed to encode audit record for stream", "id", rec.ID, "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: audit\ndata: %s\n\n", data)
			c.Writer.Flush()
		}
	}
}
