package config

import (
	"os"
	"testing"
)

func hashOf(t *testing.T, content string) string {
	t.Helper()
	cfg, err := ParseConfig([]byte(content), FormatTOML)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	hash, err := CalculateHash(cfg)
	if err != nil {
		t.Fatalf("Failed to calculate hash: %v", err)
	}
	return hash
}

func TestCalculateHash_Deterministic(t *testing.T) {
	hash1 := hashOf(t, validTOML)
	hash2 := hashOf(t, validTOML)

	if hash1 != hash2 {
		t.Errorf("Hashes should be identical, got %s and %s", hash1, hash2)
	}
	if len(hash1) != 32 {
		t.Errorf("Expected 32 hex characters, got %q", hash1)
	}
}

func TestCalculateHash_TrackerOrderIgnored(t *testing.T) {
	a := `[router]
host = "http://192.168.9.1"
username = "admin"
password = "secret"

[[tracker]]
target = "192.168.9.20"

[[tracker]]
target = "192.168.9.21"
`
	b := `[router]
host = "http://192.168.9.1"
username = "admin"
password = "secret"

[[tracker]]
target = "192.168.9.21"

[[tracker]]
target = "192.168.9.20"
`
	if hashOf(t, a) != hashOf(t, b) {
		t.Error("Tracker order should not change the hash")
	}
}

func TestCalculateHash_PasswordChangesHash(t *testing.T) {
	a := `[router]
host = "http://192.168.9.1"
username = "admin"
password = "secret"
`
	b := `[router]
host = "http://192.168.9.1"
username = "admin"
password = "other"
`
	if hashOf(t, a) == hashOf(t, b) {
		t.Error("Password change should change the hash even though it is not serialized")
	}
}

func TestConfigHasher_IsOutdated(t *testing.T) {
	path := writeConfig(t, "config.toml", validTOML)
	hasher := NewConfigHasher(path)

	if hasher.IsOutdated() {
		t.Error("Hasher without an active hash should not report outdated")
	}

	current, err := hasher.UpdateCurrentConfigHash()
	if err != nil {
		t.Fatalf("Failed to hash config: %v", err)
	}
	hasher.SetActiveConfigHash(current)
	if hasher.IsOutdated() {
		t.Error("Unchanged config should not be outdated")
	}

	if err := os.WriteFile(path, []byte(validTOML+"\n[api]\nenabled = true\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}
	if _, err := hasher.UpdateCurrentConfigHash(); err != nil {
		t.Fatalf("Failed to hash config: %v", err)
	}
	if !hasher.IsOutdated() {
		t.Error("Changed config should be outdated")
	}
	if hasher.GetActiveConfigHash() != current {
		t.Error("Active hash must not change when the file changes")
	}
}
