// Package metrics exposes the poller's state as Prometheus metrics.
package metrics
