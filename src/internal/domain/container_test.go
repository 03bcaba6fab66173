package domain

import (
	"context"
	"testing"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai/ikuaitest"
	"github.com/maksimkurb/ikuai-bridge/src/internal/mocks"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

func testConfig(host string) *config.Config {
	grace := 0
	cfg := &config.Config{
		Router: &config.RouterConfig{
			Name:     "home",
			Host:     host,
			Username: ikuaitest.DefaultUsername,
			Password: ikuaitest.DefaultPassword,
		},
		Trackers: []*config.TrackerConfig{
			{Target: "192.168.9.21", Name: "phone"},
			{Target: "AA:BB:CC:DD:EE:FF", Grace: &grace},
		},
		Switches: []*config.SwitchConfig{{
			Name:    "upnp",
			Show:    &config.CallBody{FuncName: "upnp", Action: "show", Param: map[string]any{"TYPE": "data"}},
			On:      map[string]any{"enabled": "yes"},
			Off:     map[string]any{"enabled": "no"},
			TurnOn:  &config.CallBody{FuncName: "upnp", Action: "up"},
			TurnOff: &config.CallBody{FuncName: "upnp", Action: "down"},
		}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestNewAppDependencies(t *testing.T) {
	fake := ikuaitest.NewRouter(t)
	fake.LoadDefaults()
	fake.HandleData("upnp", "show", "data", map[string]any{
		"data": []any{map[string]any{"enabled": "no"}},
	})

	deps := NewAppDependencies(testConfig(fake.URL()))

	if deps.RouterClient() == nil || deps.Transport() == nil {
		t.Fatal("Expected router client and transport to be created")
	}
	if deps.Coordinator() != Coordinator(deps.Poller()) {
		t.Error("Expected coordinator to be the poller")
	}
	if deps.RouterName() != "home" {
		t.Errorf("Expected router name home, got %q", deps.RouterName())
	}

	snap, err := deps.Coordinator().Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if sw, ok := snap.Switch("upnp"); !ok || sw.On {
		t.Errorf("Expected custom switch upnp to be off, got %+v (ok=%v)", sw, ok)
	}
	if sw, ok := snap.Switch(ikuai.ARPFilterSwitch.Name); !ok || !sw.On {
		t.Errorf("Expected built-in ARP filter switch to be on, got %+v (ok=%v)", sw, ok)
	}
	if !snap.Present("192.168.9.21") || !snap.Present("aa:bb:cc:dd:ee:ff") {
		t.Errorf("Expected both trackers present, got %+v", snap.Presence)
	}
	if deps.TransportStats().Requests == 0 {
		t.Error("Expected transport to count requests")
	}
}

func TestNewAppDependencies_EncodedPassword(t *testing.T) {
	fake := ikuaitest.NewRouter(t)
	fake.LoadDefaults()

	cfg := testConfig(fake.URL())
	hash, obf := ikuai.EncodePassword(ikuaitest.DefaultPassword)
	cfg.Router.Password = ""
	cfg.Router.PasswordHash = hash
	cfg.Router.PasswordObfuscated = obf

	deps := NewAppDependencies(cfg)
	if _, err := deps.Coordinator().Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh with encoded password failed: %v", err)
	}
}

func TestNewTestDependencies(t *testing.T) {
	cfg := testConfig("http://192.168.9.1")
	mock := &mocks.MockRouterClient{}
	p := poller.New(mock, ikuai.NewSessionManager(mock), poller.Options{})

	deps := NewTestDependencies(cfg, p, Catalog(cfg, Switches(cfg)))

	if deps.Transport() != nil {
		t.Error("Expected no transport in test dependencies")
	}
	if deps.TransportStats() != (ikuai.TransportStats{}) {
		t.Error("Expected zero transport stats without a transport")
	}
	if deps.Coordinator() == nil || deps.Catalog() == nil {
		t.Fatal("Expected coordinator and catalog")
	}
	if _, err := deps.Coordinator().Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh through mock failed: %v", err)
	}
	if mock.Calls("Login") != 1 {
		t.Errorf("Expected 1 login, got %d", mock.Calls("Login"))
	}
}

func TestTargets(t *testing.T) {
	targets := Targets(testConfig("http://r"))
	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d", len(targets))
	}

	if targets[0].Kind != presence.KindIP || targets[0].Name != "phone" || targets[0].Grace != config.DefaultTrackerGrace {
		t.Errorf("Unexpected IP target: %+v", targets[0])
	}
	if targets[1].Kind != presence.KindMAC || targets[1].ID != "aa:bb:cc:dd:ee:ff" || targets[1].Grace != 0 {
		t.Errorf("Unexpected MAC target: %+v", targets[1])
	}
	if targets[1].Name != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("Expected MAC target name to default to the address, got %q", targets[1].Name)
	}
}

func TestSwitchesAndCatalog(t *testing.T) {
	cfg := testConfig("http://r")
	disabled := false
	cfg.Builtin.ARPFilter = &disabled
	cfg.Builtin.Reboot = &disabled

	switches := Switches(cfg)
	if len(switches) != 1 || switches[0].Name != "upnp" {
		t.Fatalf("Expected only the custom switch, got %+v", switches)
	}
	if switches[0].TurnOn.FuncName != "upnp" || switches[0].TurnOn.Action != "up" {
		t.Errorf("Unexpected turn-on request: %+v", switches[0].TurnOn)
	}

	catalog := Catalog(cfg, switches)
	if _, err := catalog.Lookup("reboot"); err == nil {
		t.Error("Expected reboot to be disabled")
	}
	if _, err := catalog.Lookup("switch.upnp.off"); err != nil {
		t.Errorf("Expected switch.upnp.off to exist: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	creds := Credentials(&config.RouterConfig{Username: "admin", Password: "secret"})
	if creds.PasswordHash != "5ebe2294ecd0e0f08eab7690d2a6ee69" {
		t.Errorf("Unexpected hash %q", creds.PasswordHash)
	}

	creds = Credentials(&config.RouterConfig{
		Username:           "admin",
		Password:           "ignored",
		PasswordHash:       "5EBE2294ECD0E0F08EAB7690D2A6EE69",
		PasswordObfuscated: "c2FsdF8xMXNlY3JldA==",
	})
	if creds.PasswordHash != "5ebe2294ecd0e0f08eab7690d2a6ee69" || creds.PasswordObfuscated != "c2FsdF8xMXNlY3JldA==" {
		t.Errorf("Expected encoded forms to win, got %+v", creds)
	}
}
