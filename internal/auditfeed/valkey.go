package auditfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nebari-dev/userhub/internal/models"
	"github.com/valkey-io/valkey-go"
)

// DefaultChannel is the pub/sub channel audit records are published on.
const DefaultChannel = "userhub:audit"

// ValkeyPublisher publishes audit records to a Valkey pub/sub channel so
// other processes can follow user changes.
type ValkeyPublisher struct {
	client  valkey.Client
	channel string
}

// NewValkeyPublisher connects to Valkey at addr.
func NewValkeyPublisher(addr, channel string) (*ValkeyPublisher, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	slog.Info("Initialized Valkey audit publisher", "address", addr, "channel", channel)
	return &ValkeyPublisher{client: client, channel: channel}, nil
}

// Notify publishes rec as JSON. Failures are logged and otherwise ignored.
func (p *ValkeyPublisher) Notify(ctx context.Context, rec *models.AuditLog) {
	payload, err := json.Marshal(rec)
	if err != nil {
		slog.Warn("Failed to encode audit record for Valkey", "id", rec.ID, "error", err)
		return
	}

	cmd := p.client.B().Publish().Channel(p.channel).Message(string(payload)).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		slog.Warn("Failed to publish audit record to Valkey", "id", rec.ID, "error", err)
	}
}

// Close releases the Valkey connection.
func (p *ValkeyPublisher) Close() {
	p.client.Close()
}
