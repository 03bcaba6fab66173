package domain

import (
	"strings"

	"github.com/maksimkurb/ikuai-bridge/src/internal/actions"
	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// This container provides a centralized place to manage dependencies and enables:
//   - Easy testing with mock implementations
//   - Configuration-driven dependency creation
//   - Explicit dependency management instead of global state
//
// Usage:
//
//	deps := domain.NewAppDependencies(cfg)
//	go deps.Poller().Run(ctx, cfg.General.UpdateInterval())
type AppDependencies struct {
	cfg *config.Config

	// Router access
	transport *ikuai.Transport
	client    *ikuai.Client
	session   *ikuai.SessionManager

	// Domain services
	poller  *poller.Poller
	catalog *actions.Catalog

	coordinator Coordinator
}

// NewAppDependencies creates a new dependency container with production implementations.
//
// cfg must have defaults applied. For testing, use NewTestDependencies or
// point cfg.Router.Host at an httptest server.
func NewAppDependencies(cfg *config.Config) *AppDependencies {
	g := cfg.General

	transport := ikuai.NewTransport(
		cfg.Router.BaseURL(),
		ikuai.NewHTTPClient(cfg.Router.InsecureSkipVerify),
		ikuai.WithConcurrency(g.MaxConcurrentRequests),
		ikuai.WithRequestTimeout(g.RequestTimeout()),
	)
	client := ikuai.NewClient(transport, Credentials(cfg.Router))
	session := ikuai.NewSessionManager(client)

	switches := Switches(cfg)
	p := poller.New(client, session, poller.Options{
		Targets:      Targets(cfg),
		Switches:     switches,
		CycleTimeout: g.CycleTimeout(),
	})

	return &AppDependencies{
		cfg:         cfg,
		transport:   transport,
		client:      client,
		session:     session,
		poller:      p,
		catalog:     Catalog(cfg, switches),
		coordinator: p,
	}
}

// NewTestDependencies creates a dependency container around a given coordinator.
//
// This is a convenience method for testing. Router access (Transport, RouterClient)
// is nil.
func NewTestDependencies(cfg *config.Config, coordinator Coordinator, catalog *actions.Catalog) *AppDependencies {
	return &AppDependencies{
		cfg:         cfg,
		catalog:     catalog,
		coordinator: coordinator,
	}
}

// Config returns the configuration the dependencies were built from.
func (d *AppDependencies) Config() *config.Config {
	return d.cfg
}

// RouterName returns the configured router name.
func (d *AppDependencies) RouterName() string {
	if d.cfg == nil || d.cfg.Router == nil || d.cfg.Router.Name == "" {
		return config.DefaultRouterName
	}
	return d.cfg.Router.Name
}

// Transport returns the shared router transport.
func (d *AppDependencies) Transport() *ikuai.Transport {
	return d.transport
}

// RouterClient returns the router API client.
func (d *AppDependencies) RouterClient() *ikuai.Client {
	return d.client
}

// Poller returns the concrete poller, or nil in test containers.
func (d *AppDependencies) Poller() *poller.Poller {
	return d.poller
}

// Coordinator returns the polling coordinator.
func (d *AppDependencies) Coordinator() Coordinator {
	return d.coordinator
}

// Catalog returns the action catalog.
func (d *AppDependencies) Catalog() *actions.Catalog {
	return d.catalog
}

// TransportStats returns router request counters, or zero values without a transport.
func (d *AppDependencies) TransportStats() ikuai.TransportStats {
	if d.transport == nil {
		return ikuai.TransportStats{}
	}
	return d.transport.Stats()
}

// Credentials builds router credentials. Encoded password forms win over a
// plain password.
func Credentials(r *config.RouterConfig) ikuai.Credentials {
	if r.HasEncodedPassword() {
		return ikuai.Credentials{
			Username:           r.Username,
			PasswordHash:       strings.ToLower(r.PasswordHash),
			PasswordObfuscated: r.PasswordObfuscated,
		}
	}
	return ikuai.NewCredentials(r.Username, r.Password)
}

// Targets converts tracker configuration to presence targets.
func Targets(cfg *config.Config) []presence.Target {
	targets := make([]presence.Target, 0, len(cfg.Trackers))
	for _, t := range cfg.Trackers {
		kind := presence.KindIP
		if t.ResolvedKind() == config.TrackerKindMAC {
			kind = presence.KindMAC
		}
		targets = append(targets, presence.NewTarget(t.Target, kind, t.DisplayName(), t.ResolvedGrace()))
	}
	return targets
}

// Switches returns the built-in switches enabled in cfg followed by the custom ones.
func Switches(cfg *config.Config) []ikuai.SwitchSpec {
	var specs []ikuai.SwitchSpec
	if cfg.Builtin.ARPFilterEnabled() {
		specs = append(specs, ikuai.ARPFilterSwitch)
	}
	for _, s := range cfg.Switches {
		specs = append(specs, ikuai.SwitchSpec{
			Name:    s.Name,
			Label:   s.Label,
			Show:    callRequest(s.Show),
			On:      s.On,
			Off:     s.Off,
			TurnOn:  callRequest(s.TurnOn),
			TurnOff: callRequest(s.TurnOff),
		})
	}
	return specs
}

// Catalog builds the action catalog for cfg.
func Catalog(cfg *config.Config, switches []ikuai.SwitchSpec) *actions.Catalog {
	return actions.NewCatalog(actions.Options{
		Reboot:       cfg.Builtin.RebootEnabled(),
		ReconnectWAN: cfg.Builtin.ReconnectWANEnabled(),
		MACControl:   cfg.Builtin.MACControlEnabled(),
		Switches:     switches,
	})
}

func callRequest(c *config.CallBody) ikuai.Request {
	if c == nil {
		return ikuai.Request{}
	}
	return ikuai.Request{FuncName: c.FuncName, Action: c.Action, Param: c.Param}
}
