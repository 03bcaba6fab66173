// Package domain defines core interfaces for dependency injection and abstraction.
//
// This package contains the fundamental interfaces that enable loose coupling between
// components and facilitate testing through dependency injection.
package domain

import (
	"context"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
)

// Coordinator is the polling coordinator of one router as seen by its hosts:
// the HTTP API, the messaging bridge, the metrics collector and the CLI.
//
// *poller.Poller is the production implementation.
type Coordinator interface {
	// Refresh runs one polling cycle and returns its snapshot.
	Refresh(ctx context.Context) (*poller.Snapshot, error)

	// ControlDevice sends one control command to the router.
	ControlDevice(ctx context.Context, req ikuai.Request) (*ikuai.Response, error)

	// RequestRefresh asks the polling loop to run a cycle soon.
	RequestRefresh()

	// Subscribe registers a callback for every fresh snapshot.
	Subscribe(fn func(*poller.Snapshot)) (unsubscribe func())

	// Last returns the most recent good snapshot, or nil.
	Last() *poller.Snapshot

	// Available reports whether the most recent cycle succeeded.
	Available() bool

	// Stats returns polling counters.
	Stats() poller.Stats

	// Session returns the router session state.
	Session() ikuai.SessionState
}

var _ Coordinator = (*poller.Poller)(nil)
