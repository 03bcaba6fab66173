package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

const hashCacheTTL = 30 * time.Second

// ConfigHasher tracks two fingerprints of the configuration: the one the running
// service was started with (active) and the one currently on disk (current).
// A mismatch means the service must be restarted to pick up changes.
type ConfigHasher struct {
	configPath string

	currentHash     string
	currentHashTime time.Time

	activeHash string

	mu sync.RWMutex
}

// NewConfigHasher creates a new config hasher
func NewConfigHasher(configPath string) *ConfigHasher {
	return &ConfigHasher{
		configPath: configPath,
	}
}

// GetCurrentConfigHash returns cached hash of current config file
// Automatically calls UpdateCurrentConfigHash() on cache miss
func (h *ConfigHasher) GetCurrentConfigHash() (string, error) {
	h.mu.RLock()
	if time.Since(h.currentHashTime) < hashCacheTTL && h.currentHash != "" {
		hash := h.currentHash
		h.mu.RUnlock()
		return hash, nil
	}
	h.mu.RUnlock()

	return h.UpdateCurrentConfigHash()
}

// UpdateCurrentConfigHash re-reads the config file and recalculates its hash.
func (h *ConfigHasher) UpdateCurrentConfigHash() (string, error) {
	cfg, err := LoadConfig(h.configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	hash, err := CalculateHash(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentHash = hash
	h.currentHashTime = time.Now()

	return hash, nil
}

// GetActiveConfigHash returns hash of config that was active when service started
func (h *ConfigHasher) GetActiveConfigHash() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.activeHash
}

// SetActiveConfigHash sets the hash of config when service starts
func (h *ConfigHasher) SetActiveConfigHash(hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activeHash = hash
}

// IsOutdated reports whether the file on disk differs from the active configuration.
// Unreadable files are not reported as outdated.
func (h *ConfigHasher) IsOutdated() bool {
	active := h.GetActiveConfigHash()
	if active == "" {
		return false
	}
	current, err := h.GetCurrentConfigHash()
	if err != nil {
		return false
	}
	return current != active
}

// CalculateHash generates an MD5 fingerprint of everything that affects polling.
// Tracker and switch order does not matter.
func CalculateHash(config *Config) (string, error) {
	hashData := &configHashData{
		General:   config.General,
		Router:    config.Router,
		Trackers:  sortedTrackers(config.Trackers),
		Switches:  sortedSwitches(config.Switches),
		Builtin:   config.Builtin,
		API:       config.API,
		Metrics:   config.Metrics,
		Messaging: config.Messaging,
	}
	if config.Router != nil {
		// Secrets are excluded from JSON; fold them in explicitly.
		hashData.Secret = md5Hex(config.Router.Password + "\x00" + config.Router.PasswordHash + "\x00" + config.Router.PasswordObfuscated)
	}

	// encoding/json sorts map keys, so Param/On/Off maps hash deterministically.
	jsonBytes, err := json.Marshal(hashData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config data: %w", err)
	}

	hash := md5.Sum(jsonBytes)
	return hex.EncodeToString(hash[:]), nil
}

type configHashData struct {
	General   *GeneralConfig   `json:"general"`
	Router    *RouterConfig    `json:"router"`
	Secret    string           `json:"secret"`
	Trackers  []*TrackerConfig `json:"trackers"`
	Switches  []*SwitchConfig  `json:"switches"`
	Builtin   *BuiltinConfig   `json:"builtin"`
	API       *APIConfig       `json:"api"`
	Metrics   *MetricsConfig   `json:"metrics"`
	Messaging *MessagingConfig `json:"messaging"`
}

func sortedTrackers(in []*TrackerConfig) []*TrackerConfig {
	out := make([]*TrackerConfig, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

func sortedSwitches(in []*SwitchConfig) []*SwitchConfig {
	out := make([]*SwitchConfig, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
