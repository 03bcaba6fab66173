package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/api"
	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/domain"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/messaging"
)

var _ api.ServiceManager = (*ServiceManager)(nil)

// ServiceManager owns the polling service: the router session, the poller
// goroutine and the messaging bridge. Every Start reloads the configuration
// file, so Restart picks up edits.
type ServiceManager struct {
	mu           sync.RWMutex
	ctx          *AppContext
	configHasher *config.ConfigHasher

	cfg         *config.Config
	deps        *domain.AppDependencies
	bridge      *messaging.Bridge
	appliedHash string

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewServiceManager creates a stopped service manager. cfg is the
// configuration already loaded by the caller; it is used by the first Start.
func NewServiceManager(ctx *AppContext, cfg *config.Config, configHasher *config.ConfigHasher) *ServiceManager {
	return &ServiceManager{
		ctx:          ctx,
		cfg:          cfg,
		configHasher: configHasher,
	}
}

// IsRunning returns true if the service is currently running
func (sm *ServiceManager) IsRunning() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.running
}

// Dependencies returns the running service's dependencies, or nil when stopped.
func (sm *ServiceManager) Dependencies() *domain.AppDependencies {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.running {
		return nil
	}
	return sm.deps
}

// Config returns the configuration of the last Start.
func (sm *ServiceManager) Config() *config.Config {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.cfg
}

// GetAppliedConfigHash returns the hash of the configuration the service runs with.
func (sm *ServiceManager) GetAppliedConfigHash() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.appliedHash
}

// Start loads the configuration and starts polling in a goroutine.
func (sm *ServiceManager) Start() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.running {
		return fmt.Errorf("service is already running")
	}

	cfg := sm.cfg
	if cfg == nil {
		var err error
		if cfg, err = loadAndValidateConfigOrFail(sm.ctx); err != nil {
			return err
		}
	}
	// The next Start reads the file again.
	sm.cfg = nil

	hash, err := config.CalculateHash(cfg)
	if err != nil {
		return fmt.Errorf("failed to calculate config hash: %w", err)
	}

	deps := domain.NewAppDependencies(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	var bridge *messaging.Bridge
	if cfg.Messaging.Enabled {
		bridge, err = sm.startBridge(ctx, cfg, deps)
		if err != nil {
			log.Errorf("Failed to start messaging bridge: %v", err)
			log.Warnf("Polling continues without MQTT/Kafka publishing")
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = deps.Poller().Run(ctx, cfg.General.UpdateInterval())
	}()

	sm.deps = deps
	sm.bridge = bridge
	sm.appliedHash = hash
	sm.cancel = cancel
	sm.done = done
	sm.running = true
	if sm.configHasher != nil {
		sm.configHasher.SetActiveConfigHash(hash)
	}

	log.Infof("Polling %s (%s) every %v", deps.RouterName(), cfg.Router.BaseURL(), cfg.General.UpdateInterval())
	return nil
}

func (sm *ServiceManager) startBridge(ctx context.Context, cfg *config.Config, deps *domain.AppDependencies) (*messaging.Bridge, error) {
	bridge, err := messaging.NewBridge(cfg.Messaging, deps.RouterName(), deps.Coordinator(), deps.Catalog())
	if err != nil {
		return nil, err
	}
	if err := bridge.Start(ctx); err != nil {
		return nil, err
	}
	return bridge, nil
}

// Stop stops polling and closes the messaging bridge.
func (sm *ServiceManager) Stop() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.running {
		return fmt.Errorf("service is not running")
	}

	log.Infof("Stopping service...")
	sm.cancel()

	var err error
	select {
	case <-sm.done:
	case <-time.After(30 * time.Second):
		err = fmt.Errorf("timeout waiting for service to stop")
	}

	if sm.bridge != nil {
		sm.bridge.Stop()
		sm.bridge = nil
	}
	sm.running = false

	if err == nil {
		log.Infof("Service stopped successfully")
	}
	return err
}

// Restart stops the service if it runs, then starts it with a freshly
// loaded configuration.
func (sm *ServiceManager) Restart() error {
	if sm.IsRunning() {
		if err := sm.Stop(); err != nil {
			return fmt.Errorf("failed to stop service: %w", err)
		}
	}
	return sm.Start()
}
