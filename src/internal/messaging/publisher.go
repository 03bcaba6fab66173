package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

const (
	PresenceHome    = "home"
	PresenceNotHome = "not_home"

	publishTimeout = 10 * time.Second
)

// StateMessage is published to the state topic after every successful cycle.
type StateMessage struct {
	Router     string              `json:"router"`
	Timestamp  time.Time           `json:"timestamp"`
	System     ikuai.SystemMetrics `json:"system"`
	WANIP      string              `json:"wan_ip"`
	WAN        ikuai.WANInfo       `json:"wan"`
	WAN6       string              `json:"wan6,omitempty"`
	LAN6       string              `json:"lan6,omitempty"`
	Switches   []ikuai.SwitchState `json:"switches"`
	MACControl []ikuai.ACLEntry    `json:"mac_control"`
	HostsCount int                 `json:"hosts_count"`
	Failures   map[string]string   `json:"failures,omitempty"`
}

// PresenceMessage is published per tracked device.
type PresenceMessage struct {
	Router    string        `json:"router"`
	Target    string        `json:"target"`
	Kind      presence.Kind `json:"kind"`
	Name      string        `json:"name"`
	State     string        `json:"state"`
	Stale     bool          `json:"stale"`
	Missed    int           `json:"missed"`
	IP        string        `json:"ip,omitempty"`
	MAC       string        `json:"mac,omitempty"`
	Hostname  string        `json:"hostname,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewStateMessage builds the state message for snap.
func NewStateMessage(router string, snap *poller.Snapshot) StateMessage {
	msg := StateMessage{
		Router:     router,
		Timestamp:  snap.Timestamp,
		System:     snap.System,
		WANIP:      snap.WAN.DisplayIP(),
		WAN:        snap.WAN,
		WAN6:       snap.WAN6.Address,
		LAN6:       snap.LAN6.Address,
		Switches:   snap.Switches,
		MACControl: snap.MACControl,
		Failures:   snap.Failures,
	}
	if snap.Hosts != nil {
		msg.HostsCount = snap.Hosts.Len()
	}
	return msg
}

// NewPresenceMessage builds the presence message for one device.
func NewPresenceMessage(router string, ts time.Time, st presence.Status) PresenceMessage {
	state := PresenceNotHome
	if st.Present {
		state = PresenceHome
	}
	return PresenceMessage{
		Router:    router,
		Target:    st.TargetID,
		Kind:      st.Kind,
		Name:      st.Name,
		State:     state,
		Stale:     st.Stale,
		Missed:    st.Missed,
		IP:        st.IP,
		MAC:       st.MAC,
		Hostname:  st.Hostname,
		Timestamp: ts,
	}
}

// SnapshotSource delivers fresh snapshots.
type SnapshotSource interface {
	Subscribe(fn func(*poller.Snapshot)) (unsubscribe func())
}

// Publisher forwards every fresh snapshot to the broker.
type Publisher struct {
	broker Broker
	topics *Topics
	router string
	logger zerolog.Logger

	unsubscribe func()
}

// NewPublisher creates a publisher.
func NewPublisher(broker Broker, topics *Topics, router string) *Publisher {
	return &Publisher{
		broker: broker,
		topics: topics,
		router: router,
		logger: log.With("messaging"),
	}
}

// Start subscribes to src.
func (p *Publisher) Start(src SnapshotSource) {
	p.unsubscribe = src.Subscribe(func(snap *poller.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		p.Publish(ctx, snap)
	})
}

// Stop unsubscribes from the snapshot source.
func (p *Publisher) Stop() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// Publish sends the state message and one presence message per target.
// Failures are logged and counted; it returns the number of failed publishes.
func (p *Publisher) Publish(ctx context.Context, snap *poller.Snapshot) int {
	failed := 0
	if !p.send(ctx, p.topics.State, NewStateMessage(p.router, snap)) {
		failed++
	}
	for _, st := range snap.Targets {
		if !p.send(ctx, p.topics.Presence(st), NewPresenceMessage(p.router, snap.Timestamp, st)) {
			failed++
		}
	}
	return failed
}

func (p *Publisher) send(ctx context.Context, topic string, v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode message")
		return false
	}
	if err := p.broker.Publish(ctx, topic, payload); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to publish message")
		return false
	}
	return true
}
