// Package poller runs the polling cycle against one iKuai router.
//
// A cycle obtains a session key, performs the status call, then fans out the
// remaining calls (WAN, IPv6, MAC access control, LAN hosts and one call per
// switch) concurrently and assembles the results into a Snapshot. Presence is
// resolved from the LAN host table through a presence.Tracker.
//
// The Poller exposes two operations to hosts:
//
//	snap, err := p.Refresh(ctx)            // fresh data
//	resp, err := p.ControlDevice(ctx, req) // run a control command
//
// Everything else (HTTP API, MQTT/Kafka bridge, metrics) is built on these and
// on Subscribe.
package poller
