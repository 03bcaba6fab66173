package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validTOML = `[general]
update_interval_seconds = 15

[router]
host = "http://192.168.9.1"
username = "admin"
password = "secret"

[[tracker]]
target = "AA:BB:CC:DD:EE:FF"
name = "phone"

[[tracker]]
target = "192.168.9.20"
grace = 0

[[switch]]
name = "upnp"
show = { func_name = "upnpd", action = "show", param = { TYPE = "data" } }
on = { enabled = "yes" }
off = { enabled = "no" }
turn_on = { func_name = "upnpd", action = "up", param = { id = 1 } }
turn_off = { func_name = "upnpd", action = "down", param = { id = 1 } }
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/file.toml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "invalid.toml", "[general\nupdate_interval_seconds = 10")

	_, err := LoadConfig(path)
	if err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, "valid.toml", validTOML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error for valid config: %v", err)
	}

	if cfg.General.UpdateIntervalSeconds != 15 {
		t.Errorf("Expected update interval 15, got %d", cfg.General.UpdateIntervalSeconds)
	}
	if cfg.Router.Name != DefaultRouterName {
		t.Errorf("Expected default router name, got %q", cfg.Router.Name)
	}
	if len(cfg.Trackers) != 2 {
		t.Fatalf("Expected 2 trackers, got %d", len(cfg.Trackers))
	}
	if cfg.Trackers[0].Target != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("Expected MAC target to be lower-cased, got %s", cfg.Trackers[0].Target)
	}
	if cfg.Trackers[0].Kind != TrackerKindMAC {
		t.Errorf("Expected kind mac, got %s", cfg.Trackers[0].Kind)
	}
	if cfg.Trackers[1].Kind != TrackerKindIP {
		t.Errorf("Expected kind ip, got %s", cfg.Trackers[1].Kind)
	}
	if cfg.Trackers[1].ResolvedGrace() != 0 {
		t.Errorf("Expected explicit grace 0, got %d", cfg.Trackers[1].ResolvedGrace())
	}
	if cfg.Switches[0].Show.Param["TYPE"] != "data" {
		t.Errorf("Expected show TYPE data, got %v", cfg.Switches[0].Show.Param["TYPE"])
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "min.toml", "[router]\nhost = \"http://10.0.0.1\"\nusername = \"admin\"\npassword = \"x\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.General.UpdateIntervalSeconds != DefaultUpdateIntervalSeconds {
		t.Errorf("Expected default interval, got %d", cfg.General.UpdateIntervalSeconds)
	}
	if cfg.General.RequestTimeoutSeconds != DefaultRequestTimeoutSeconds {
		t.Errorf("Expected default request timeout, got %d", cfg.General.RequestTimeoutSeconds)
	}
	if cfg.General.CycleTimeoutSeconds != DefaultCycleTimeoutSeconds {
		t.Errorf("Expected default cycle timeout, got %d", cfg.General.CycleTimeoutSeconds)
	}
	if cfg.General.MaxConcurrentRequests != DefaultMaxConcurrentRequests {
		t.Errorf("Expected default concurrency, got %d", cfg.General.MaxConcurrentRequests)
	}
	if !cfg.Builtin.RebootEnabled() || !cfg.Builtin.ARPFilterEnabled() {
		t.Error("Expected built-ins enabled by default")
	}
	if cfg.Messaging.StateTopic != DefaultStateTopic {
		t.Errorf("Expected default state topic, got %s", cfg.Messaging.StateTopic)
	}
	if !cfg.API.PrivateOnlyEnabled() {
		t.Error("Expected private_only by default")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	yamlContent := `
router:
  host: https://router.lan
  username: admin
  password_hash: 5ebe2294ecd0e0f08eab7690d2a6ee69
  password_obfuscated: c2FsdF8xMXNlY3JldA==
tracker:
  - target: 192.168.1.50
    grace: 3
builtin:
  reboot: false
`
	path := writeConfig(t, "config.yaml", yamlContent)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.Router.HasEncodedPassword() {
		t.Error("Expected encoded password to be loaded")
	}
	if cfg.Trackers[0].ResolvedGrace() != 3 {
		t.Errorf("Expected grace 3, got %d", cfg.Trackers[0].ResolvedGrace())
	}
	if cfg.Builtin.RebootEnabled() {
		t.Error("Expected reboot to be disabled")
	}
	if !cfg.Builtin.ReconnectWANEnabled() {
		t.Error("Expected reconnect_wan to stay enabled")
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestLoadConfig_RelativePath(t *testing.T) {
	path := writeConfig(t, "config.toml", validTOML)

	wd, _ := os.Getwd()
	defer func() { _ = os.Chdir(wd) }()
	if err := os.Chdir(filepath.Dir(path)); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}

	cfg, err := LoadConfig("config.toml")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.GetConfigFilePath()) {
		t.Errorf("Expected absolute path, got %s", cfg.GetConfigFilePath())
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"a.toml": FormatTOML,
		"a.conf": FormatTOML,
		"a.yaml": FormatYAML,
		"A.YML":  FormatYAML,
	}
	for path, expected := range tests {
		if got := FormatFor(path); got != expected {
			t.Errorf("FormatFor(%s) = %s, want %s", path, got, expected)
		}
	}
}

func TestSerializeConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(validTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	buf, err := cfg.SerializeConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "update_interval_seconds = 15") {
		t.Errorf("Expected serialized interval, got:\n%s", out)
	}
	if !strings.Contains(out, "[[switch]]") {
		t.Errorf("Expected serialized switches, got:\n%s", out)
	}
}

func TestTrackerConfig_ResolvedKind(t *testing.T) {
	tests := []struct {
		tracker  TrackerConfig
		expected string
	}{
		{TrackerConfig{Target: "aa:bb:cc:dd:ee:ff"}, TrackerKindMAC},
		{TrackerConfig{Target: "192.168.1.1"}, TrackerKindIP},
		{TrackerConfig{Target: "fe80::1"}, TrackerKindIP},
		{TrackerConfig{Target: "aa:bb:cc:dd:ee:ff", Kind: TrackerKindIP}, TrackerKindIP},
	}
	for _, tt := range tests {
		if got := tt.tracker.ResolvedKind(); got != tt.expected {
			t.Errorf("ResolvedKind(%s) = %s, want %s", tt.tracker.Target, got, tt.expected)
		}
	}
}

func TestRouterConfig_Hostname(t *testing.T) {
	r := &RouterConfig{Host: "https://192.168.1.1:8443/"}
	if r.Hostname() != "192.168.1.1" {
		t.Errorf("Hostname() = %s", r.Hostname())
	}
	if r.BaseURL() != "https://192.168.1.1:8443" {
		t.Errorf("BaseURL() = %s", r.BaseURL())
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "..", "ikuai-bridge.example.toml"))
	if err != nil {
		t.Fatalf("Failed to load example config: %v", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("Example config is invalid: %v", err)
	}

	if len(cfg.Trackers) != 2 || len(cfg.Switches) != 1 {
		t.Errorf("Expected 2 trackers and 1 switch, got %d and %d", len(cfg.Trackers), len(cfg.Switches))
	}
	if cfg.Switches[0].Show == nil || cfg.Switches[0].Show.FuncName != "upnp" {
		t.Errorf("Expected switch show call to be parsed, got %+v", cfg.Switches[0].Show)
	}
	if cfg.Trackers[1].ResolvedKind() != TrackerKindMAC {
		t.Errorf("Expected second tracker to be a MAC tracker")
	}
}
