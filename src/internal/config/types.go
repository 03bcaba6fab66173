package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultUpdateIntervalSeconds = 10
	MinUpdateIntervalSeconds     = 5
	DefaultRequestTimeoutSeconds = 10
	DefaultCycleTimeoutSeconds   = 60
	DefaultMaxConcurrentRequests = 3
	DefaultTrackerGrace          = 2
	DefaultRouterName            = "ikuai"
	DefaultAPIListen             = "127.0.0.1:8088"
	DefaultMetricsPath           = "/metrics"
	DefaultMetricsNamespace      = "ikuai"
	DefaultTopicPrefix           = "ikuai"
	DefaultStateTopic            = "{{prefix}}/{{router}}/state"
	DefaultPresenceTopic         = "{{prefix}}/{{router}}/presence/{{name}}"
	DefaultCommandTopic          = "{{prefix}}/{{router}}/command"
	DefaultMQTTPort              = 1883
)

const (
	TrackerKindIP  = "ip"
	TrackerKindMAC = "mac"
)

type Config struct {
	// General holds polling and logging settings.
	General *GeneralConfig `toml:"general" yaml:"general" json:"general"`
	// Router holds the router address and credentials.
	Router *RouterConfig `toml:"router" yaml:"router" json:"router"`
	// Trackers are the devices whose presence is reported. You can add multiple trackers.
	Trackers []*TrackerConfig `toml:"tracker,omitempty" yaml:"tracker,omitempty" json:"tracker,omitempty"`
	// Switches are custom router toggles. Each one needs a show call plus on/off predicates and bodies.
	Switches []*SwitchConfig `toml:"switch,omitempty" yaml:"switch,omitempty" json:"switch,omitempty"`
	// Builtin enables or disables built-in actions and switches.
	Builtin *BuiltinConfig `toml:"builtin,omitempty" yaml:"builtin,omitempty" json:"builtin,omitempty"`
	// API configures the HTTP API.
	API *APIConfig `toml:"api,omitempty" yaml:"api,omitempty" json:"api,omitempty"`
	// Metrics configures the Prometheus endpoint.
	Metrics *MetricsConfig `toml:"metrics,omitempty" yaml:"metrics,omitempty" json:"metrics,omitempty"`
	// Messaging configures the MQTT/Kafka bridge.
	Messaging *MessagingConfig `toml:"messaging,omitempty" yaml:"messaging,omitempty" json:"messaging,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// UpdateIntervalSeconds is the polling interval (default: 10, min: 5).
	UpdateIntervalSeconds int `toml:"update_interval_seconds" yaml:"update_interval_seconds" json:"update_interval_seconds" validate:"min_interval"`
	// RequestTimeoutSeconds bounds a single router call (default: 10).
	RequestTimeoutSeconds int `toml:"request_timeout_seconds" yaml:"request_timeout_seconds" json:"request_timeout_seconds" validate:"min=1,max=120"`
	// CycleTimeoutSeconds bounds a whole polling cycle (default: 60).
	CycleTimeoutSeconds int `toml:"cycle_timeout_seconds" yaml:"cycle_timeout_seconds" json:"cycle_timeout_seconds" validate:"min=1,max=600"`
	// MaxConcurrentRequests is the number of router calls allowed in flight at once (default: 3).
	MaxConcurrentRequests int `toml:"max_concurrent_requests" yaml:"max_concurrent_requests" json:"max_concurrent_requests" validate:"min=1,max=16"`
	// LogLevel is "info" or "debug" (default: info).
	LogLevel string `toml:"log_level" yaml:"log_level" json:"log_level" validate:"omitempty,oneof=info debug"`
	// LogFormat is "console" or "json" (default: console).
	LogFormat string `toml:"log_format" yaml:"log_format" json:"log_format" validate:"omitempty,oneof=console json"`
}

type RouterConfig struct {
	// Name identifies the router in topics and metrics labels (default: ikuai).
	Name string `toml:"name" yaml:"name" json:"name" validate:"omitempty,router_name"`
	// Host is the router base URL, e.g. http://192.168.1.1.
	Host string `toml:"host" yaml:"host" json:"host" validate:"required,url"`
	// Username is the web admin user.
	Username string `toml:"username" yaml:"username" json:"username" validate:"required"`
	// Password is the plain password. Either this or both encoded forms must be set.
	Password string `toml:"password,omitempty" yaml:"password,omitempty" json:"-"`
	// PasswordHash is md5(password) in lowercase hex.
	PasswordHash string `toml:"password_hash,omitempty" yaml:"password_hash,omitempty" json:"-" validate:"omitempty,len=32,hexadecimal"`
	// PasswordObfuscated is base64("salt_11" + password).
	PasswordObfuscated string `toml:"password_obfuscated,omitempty" yaml:"password_obfuscated,omitempty" json:"-" validate:"omitempty,base64"`
	// InsecureSkipVerify disables TLS verification for self-signed router certificates.
	InsecureSkipVerify bool `toml:"insecure_skip_verify" yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

type TrackerConfig struct {
	// Target is an IP address or a MAC address (aa:bb:cc:dd:ee:ff).
	Target string `toml:"target" yaml:"target" json:"target" validate:"required,ip_or_mac"`
	// Kind is "ip" or "mac". Detected from Target when empty.
	Kind string `toml:"kind,omitempty" yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,oneof=ip mac"`
	// Name is the display name (default: Target).
	Name string `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	// Grace is the number of missed cycles tolerated before the device is absent (default: 2).
	Grace *int `toml:"grace,omitempty" yaml:"grace,omitempty" json:"grace,omitempty" validate:"omitempty,min=0,max=100"`
}

// CallBody is a raw router call envelope.
type CallBody struct {
	FuncName string         `toml:"func_name" yaml:"func_name" json:"func_name" validate:"required"`
	Action   string         `toml:"action" yaml:"action" json:"action" validate:"required"`
	Param    map[string]any `toml:"param,omitempty" yaml:"param,omitempty" json:"param,omitempty"`
}

type SwitchConfig struct {
	// Name is the switch identifier used in actions and topics.
	Name string `toml:"name" yaml:"name" json:"name" validate:"required"`
	// Label is a human-readable description.
	Label string `toml:"label,omitempty" yaml:"label,omitempty" json:"label,omitempty"`
	// Show is the call that reads the current state.
	Show *CallBody `toml:"show" yaml:"show" json:"show" validate:"required"`
	// On lists the fields that must all match for the switch to be on.
	On map[string]any `toml:"on" yaml:"on" json:"on" validate:"required,min=1"`
	// Off lists the fields that must all match for the switch to be off.
	Off map[string]any `toml:"off" yaml:"off" json:"off" validate:"required,min=1"`
	// TurnOn is the call that switches it on.
	TurnOn *CallBody `toml:"turn_on" yaml:"turn_on" json:"turn_on" validate:"required"`
	// TurnOff is the call that switches it off.
	TurnOff *CallBody `toml:"turn_off" yaml:"turn_off" json:"turn_off" validate:"required"`
}

type BuiltinConfig struct {
	// Reboot exposes the router reboot action (default: true).
	Reboot *bool `toml:"reboot,omitempty" yaml:"reboot,omitempty" json:"reboot,omitempty"`
	// ReconnectWAN exposes the WAN reconnect action (default: true).
	ReconnectWAN *bool `toml:"reconnect_wan,omitempty" yaml:"reconnect_wan,omitempty" json:"reconnect_wan,omitempty"`
	// ARPFilter exposes the "only bound MACs may access the internet" switch (default: true).
	ARPFilter *bool `toml:"arp_filter,omitempty" yaml:"arp_filter,omitempty" json:"arp_filter,omitempty"`
	// MACControl exposes enable/disable actions for MAC access-control entries (default: true).
	MACControl *bool `toml:"mac_control,omitempty" yaml:"mac_control,omitempty" json:"mac_control,omitempty"`
}

type APIConfig struct {
	// Enabled starts the HTTP API (default: false).
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`
	// Listen is the host:port to bind (default: 127.0.0.1:8088).
	Listen string `toml:"listen" yaml:"listen" json:"listen" validate:"omitempty,hostname_port"`
	// PrivateOnly rejects clients outside private subnets (default: true).
	PrivateOnly *bool `toml:"private_only,omitempty" yaml:"private_only,omitempty" json:"private_only,omitempty"`
}

type MetricsConfig struct {
	// Enabled serves Prometheus metrics on the API listener (default: false).
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`
	// Path is the metrics path (default: /metrics).
	Path string `toml:"path" yaml:"path" json:"path" validate:"omitempty,startswith=/"`
	// Namespace prefixes every metric name (default: ikuai).
	Namespace string `toml:"namespace" yaml:"namespace" json:"namespace"`
}

type MessagingConfig struct {
	// Enabled starts the messaging bridge (default: false).
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`
	// Backend is "mqtt" or "kafka".
	Backend string `toml:"backend" yaml:"backend" json:"backend" validate:"omitempty,oneof=mqtt kafka"`
	// TopicPrefix is substituted for {{prefix}} in topic templates (default: ikuai).
	TopicPrefix string `toml:"topic_prefix" yaml:"topic_prefix" json:"topic_prefix"`
	// StateTopic receives the snapshot after every cycle. Variables: {{prefix}}, {{router}}.
	StateTopic string `toml:"state_topic" yaml:"state_topic" json:"state_topic"`
	// PresenceTopic receives one message per tracker. Variables: {{prefix}}, {{router}}, {{name}}, {{target}}.
	PresenceTopic string `toml:"presence_topic" yaml:"presence_topic" json:"presence_topic"`
	// CommandTopic is subscribed for action requests. Variables: {{prefix}}, {{router}}.
	CommandTopic string `toml:"command_topic" yaml:"command_topic" json:"command_topic"`

	MQTT  *MQTTConfig  `toml:"mqtt,omitempty" yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	Kafka *KafkaConfig `toml:"kafka,omitempty" yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

type MQTTConfig struct {
	Broker   string `toml:"broker" yaml:"broker" json:"broker" validate:"required"`
	Port     int    `toml:"port" yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
	ClientID string `toml:"client_id" yaml:"client_id" json:"client_id"`
	Username string `toml:"username,omitempty" yaml:"username,omitempty" json:"username,omitempty"`
	Password string `toml:"password,omitempty" yaml:"password,omitempty" json:"-"`
	Retain   bool   `toml:"retain" yaml:"retain" json:"retain"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers" yaml:"brokers" json:"brokers" validate:"required,min=1,dive,hostname_port"`
	GroupID string   `toml:"group_id" yaml:"group_id" json:"group_id"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetConfigFilePath() string {
	return c._absConfigFilePath
}

func (g *GeneralConfig) UpdateInterval() time.Duration {
	return time.Duration(g.UpdateIntervalSeconds) * time.Second
}

func (g *GeneralConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

func (g *GeneralConfig) CycleTimeout() time.Duration {
	return time.Duration(g.CycleTimeoutSeconds) * time.Second
}

// BaseURL returns Host without a trailing slash.
func (r *RouterConfig) BaseURL() string {
	return strings.TrimRight(r.Host, "/")
}

// Hostname returns the host part of the router URL.
func (r *RouterConfig) Hostname() string {
	u, err := url.Parse(r.Host)
	if err != nil || u.Hostname() == "" {
		return r.Host
	}
	return u.Hostname()
}

// HasEncodedPassword reports whether both encoded password forms are configured.
func (r *RouterConfig) HasEncodedPassword() bool {
	return r.PasswordHash != "" && r.PasswordObfuscated != ""
}

// ResolvedKind returns Kind, or detects it from Target: a 17 character value
// containing ':' is a MAC address, anything else an IP address.
func (t *TrackerConfig) ResolvedKind() string {
	if t.Kind != "" {
		return t.Kind
	}
	if len(t.Target) == 17 && strings.Contains(t.Target, ":") {
		return TrackerKindMAC
	}
	return TrackerKindIP
}

// ResolvedGrace returns Grace or the default grace count.
func (t *TrackerConfig) ResolvedGrace() int {
	if t.Grace == nil {
		return DefaultTrackerGrace
	}
	return *t.Grace
}

// DisplayName returns Name or Target.
func (t *TrackerConfig) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Target
}

func (b *BuiltinConfig) RebootEnabled() bool       { return b == nil || enabled(b.Reboot) }
func (b *BuiltinConfig) ReconnectWANEnabled() bool { return b == nil || enabled(b.ReconnectWAN) }
func (b *BuiltinConfig) ARPFilterEnabled() bool    { return b == nil || enabled(b.ARPFilter) }
func (b *BuiltinConfig) MACControlEnabled() bool   { return b == nil || enabled(b.MACControl) }

func (a *APIConfig) PrivateOnlyEnabled() bool {
	return a == nil || enabled(a.PrivateOnly)
}

func enabled(v *bool) bool {
	return v == nil || *v
}

func boolPtr(v bool) *bool {
	return &v
}

// isMAC reports whether value is a colon-separated 48-bit MAC address.
func isMAC(value string) bool {
	if len(value) != 17 {
		return false
	}
	hw, err := net.ParseMAC(value)
	return err == nil && len(hw) == 6
}
