package api

import "github.com/maksimkurb/ikuai-bridge/src/internal/domain"

// ServiceManager is an interface for controlling the service lifecycle.
// This allows the API to control the service without importing the commands package directly.
type ServiceManager interface {
	Start() error
	Stop() error
	Restart() error
	IsRunning() bool
	GetAppliedConfigHash() string

	// Dependencies returns the dependencies of the running service, or nil
	// while it is stopped. They are rebuilt on every start.
	Dependencies() *domain.AppDependencies
}
