package messaging

import (
	"context"

	"github.com/maksimkurb/ikuai-bridge/src/internal/actions"
	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
)

// Source is the poller as seen by the bridge.
type Source interface {
	SnapshotSource
	actions.Controller
	Last() *poller.Snapshot
}

// Bridge publishes router state and accepts commands over MQTT or Kafka.
type Bridge struct {
	client    *Client
	source    Source
	publisher *Publisher
	commands  *CommandHandler
}

// NewBridge wires a client, a publisher and a command handler for one router.
func NewBridge(cfg *config.MessagingConfig, router string, src Source, catalog *actions.Catalog) (*Bridge, error) {
	topics, err := NewTopics(cfg, router)
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg, router)
	return &Bridge{
		client:    client,
		source:    src,
		publisher: NewPublisher(client, topics, router),
		commands:  NewCommandHandler(client, topics, catalog, src),
	}, nil
}

// Start connects, subscribes to commands and starts publishing snapshots.
// The last known snapshot, if any, is published right away.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.client.Connect(); err != nil {
		return err
	}
	if err := b.commands.Start(); err != nil {
		b.client.Close()
		return err
	}
	b.publisher.Start(b.source)
	if snap := b.source.Last(); snap != nil {
		b.publisher.Publish(ctx, snap)
	}
	log.Infof("Messaging bridge started (backend %s, state topic %s)", b.client.backend, b.publisher.topics.State)
	return nil
}

// Stop unsubscribes from the poller and closes the connection.
func (b *Bridge) Stop() {
	b.publisher.Stop()
	b.client.Close()
}
