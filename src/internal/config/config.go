package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

var (
	routerNameRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatFor returns the config format implied by the file extension.
// Anything other than .yaml/.yml is treated as TOML.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Errorf("Configuration file not found: %s", configFile)
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config, err := ParseConfig(content, FormatFor(configFile))
	if err != nil {
		return nil, err
	}

	config._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)

	return config, nil
}

// ParseConfig decodes content in the given format and applies defaults.
func ParseConfig(content []byte, format string) (*Config, error) {
	var config Config

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	default:
		if err := toml.Unmarshal(content, &config); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				log.Errorf("%s", derr.String())
				row, col := derr.Position()
				log.Errorf("Error at line %d, column %d", row, col)
				return nil, fmt.Errorf("failed to parse config file: line %d, column %d", row, col)
			}
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills every unset option with its default value.
func (c *Config) ApplyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	g := c.General
	if g.UpdateIntervalSeconds == 0 {
		g.UpdateIntervalSeconds = DefaultUpdateIntervalSeconds
	}
	if g.RequestTimeoutSeconds == 0 {
		g.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if g.CycleTimeoutSeconds == 0 {
		g.CycleTimeoutSeconds = DefaultCycleTimeoutSeconds
	}
	if g.MaxConcurrentRequests == 0 {
		g.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	if g.LogFormat == "" {
		g.LogFormat = "console"
	}

	if c.Router != nil && c.Router.Name == "" {
		c.Router.Name = DefaultRouterName
	}

	for _, t := range c.Trackers {
		if t.Kind == "" {
			t.Kind = t.ResolvedKind()
		}
		if t.Kind == TrackerKindMAC {
			t.Target = strings.ToLower(t.Target)
		}
	}

	if c.Builtin == nil {
		c.Builtin = &BuiltinConfig{}
	}
	for _, v := range []**bool{&c.Builtin.Reboot, &c.Builtin.ReconnectWAN, &c.Builtin.ARPFilter, &c.Builtin.MACControl} {
		if *v == nil {
			*v = boolPtr(true)
		}
	}

	if c.API == nil {
		c.API = &APIConfig{}
	}
	if c.API.Listen == "" {
		c.API.Listen = DefaultAPIListen
	}
	if c.API.PrivateOnly == nil {
		c.API.PrivateOnly = boolPtr(true)
	}

	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	if c.Messaging == nil {
		c.Messaging = &MessagingConfig{}
	}
	m := c.Messaging
	if m.TopicPrefix == "" {
		m.TopicPrefix = DefaultTopicPrefix
	}
	if m.StateTopic == "" {
		m.StateTopic = DefaultStateTopic
	}
	if m.PresenceTopic == "" {
		m.PresenceTopic = DefaultPresenceTopic
	}
	if m.CommandTopic == "" {
		m.CommandTopic = DefaultCommandTopic
	}
	if m.MQTT != nil && m.MQTT.Port == 0 {
		m.MQTT.Port = DefaultMQTTPort
	}
}

// SerializeConfig encodes the configuration as TOML. Secrets are included.
func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}
