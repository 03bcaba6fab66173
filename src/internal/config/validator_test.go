package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	grace := 2
	cfg := &Config{
		Router: &RouterConfig{
			Host:     "http://192.168.1.1",
			Username: "admin",
			Password: "secret",
		},
		Trackers: []*TrackerConfig{
			{Target: "aa:bb:cc:dd:ee:ff", Name: "phone", Grace: &grace},
			{Target: "192.168.1.10", Name: "nas"},
		},
		Switches: []*SwitchConfig{
			{
				Name:    "upnp",
				Show:    &CallBody{FuncName: "upnpd", Action: "show", Param: map[string]any{"TYPE": "data"}},
				On:      map[string]any{"enabled": "yes"},
				Off:     map[string]any{"enabled": "no"},
				TurnOn:  &CallBody{FuncName: "upnpd", Action: "up"},
				TurnOff: &CallBody{FuncName: "upnpd", Action: "down"},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// hasFieldError reports whether err contains a validation error for fieldPath.
func hasFieldError(err error, fieldPath string) bool {
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, e := range ve {
		if e.FieldPath == fieldPath {
			return true
		}
	}
	return false
}

func TestValidateConfig_Success(t *testing.T) {
	if err := validConfig().ValidateConfig(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestValidateConfig_MissingGeneral(t *testing.T) {
	config := &Config{}

	err := config.ValidateConfig()
	if err == nil {
		t.Error("Expected error for missing general config")
	}
}

func TestValidateConfig_MissingRouter(t *testing.T) {
	cfg := validConfig()
	cfg.Router = nil

	if err := cfg.ValidateConfig(); !hasFieldError(err, "router") {
		t.Errorf("Expected router error, got: %v", err)
	}
}

func TestValidateConfig_IntervalMinimum(t *testing.T) {
	cfg := validConfig()
	cfg.General.UpdateIntervalSeconds = 3

	err := cfg.ValidateConfig()
	if !hasFieldError(err, "general.update_interval_seconds") {
		t.Fatalf("Expected interval error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "must be >= 5 seconds") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestValidateConfig_RequestTimeoutExceedsCycle(t *testing.T) {
	cfg := validConfig()
	cfg.General.RequestTimeoutSeconds = 90
	cfg.General.CycleTimeoutSeconds = 60

	if err := cfg.ValidateConfig(); !hasFieldError(err, "general.request_timeout_seconds") {
		t.Errorf("Expected request timeout error, got: %v", err)
	}
}

func TestValidateRouter_Credentials(t *testing.T) {
	tests := []struct {
		name        string
		router      RouterConfig
		expectError bool
	}{
		{
			name:   "plain password",
			router: RouterConfig{Password: "secret"},
		},
		{
			name: "encoded password",
			router: RouterConfig{
				PasswordHash:       "5ebe2294ecd0e0f08eab7690d2a6ee69",
				PasswordObfuscated: "c2FsdF8xMXNlY3JldA==",
			},
		},
		{
			name:        "no password",
			router:      RouterConfig{},
			expectError: true,
		},
		{
			name:        "hash only",
			router:      RouterConfig{PasswordHash: "5ebe2294ecd0e0f08eab7690d2a6ee69"},
			expectError: true,
		},
		{
			name:        "both forms",
			router:      RouterConfig{Password: "secret", PasswordHash: "5ebe2294ecd0e0f08eab7690d2a6ee69"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.router.Host = "http://192.168.1.1"
			tt.router.Username = "admin"
			tt.router.Name = "home"
			cfg.Router = &tt.router

			err := cfg.ValidateConfig()
			if tt.expectError && !hasFieldError(err, "router.password") {
				t.Errorf("Expected password error, got: %v", err)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateRouter_BadHost(t *testing.T) {
	cfg := validConfig()
	cfg.Router.Host = "ftp://192.168.1.1"

	if err := cfg.ValidateConfig(); !hasFieldError(err, "router.host") {
		t.Errorf("Expected host error, got: %v", err)
	}
}

func TestValidateRouter_BadHash(t *testing.T) {
	cfg := validConfig()
	cfg.Router.Password = ""
	cfg.Router.PasswordHash = "not-a-hash"
	cfg.Router.PasswordObfuscated = "c2FsdF8xMXNlY3JldA=="

	if err := cfg.ValidateConfig(); !hasFieldError(err, "router.password_hash") {
		t.Errorf("Expected password_hash error, got: %v", err)
	}
}

func TestValidateTrackers(t *testing.T) {
	t.Run("invalid target", func(t *testing.T) {
		cfg := validConfig()
		cfg.Trackers[0].Target = "not-an-address"
		if err := cfg.ValidateConfig(); !hasFieldError(err, "tracker.0.target") {
			t.Errorf("Expected target error, got: %v", err)
		}
	})

	t.Run("duplicate target ignores case", func(t *testing.T) {
		cfg := validConfig()
		cfg.Trackers = append(cfg.Trackers, &TrackerConfig{Target: "AA:BB:CC:DD:EE:FF", Name: "dup"})
		if err := cfg.ValidateConfig(); !hasFieldError(err, "target") {
			t.Errorf("Expected duplicate target error, got: %v", err)
		}
	})

	t.Run("mac declared as ip", func(t *testing.T) {
		cfg := validConfig()
		cfg.Trackers[0].Kind = TrackerKindIP
		if err := cfg.ValidateConfig(); !hasFieldError(err, "kind") {
			t.Errorf("Expected kind error, got: %v", err)
		}
	})

	t.Run("negative grace", func(t *testing.T) {
		cfg := validConfig()
		grace := -1
		cfg.Trackers[1].Grace = &grace
		if err := cfg.ValidateConfig(); !hasFieldError(err, "tracker.1.grace") {
			t.Errorf("Expected grace error, got: %v", err)
		}
	})
}

func TestValidateSwitches(t *testing.T) {
	t.Run("reserved name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Switches[0].Name = ReservedSwitchName
		if err := cfg.ValidateConfig(); !hasFieldError(err, "name") {
			t.Errorf("Expected duplicate name error, got: %v", err)
		}
	})

	t.Run("reserved name allowed when built-in disabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Builtin.ARPFilter = boolPtr(false)
		cfg.Switches[0].Name = ReservedSwitchName
		if err := cfg.ValidateConfig(); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("empty predicate", func(t *testing.T) {
		cfg := validConfig()
		cfg.Switches[0].On = map[string]any{}
		if err := cfg.ValidateConfig(); !hasFieldError(err, "switch.0.on") {
			t.Errorf("Expected predicate error, got: %v", err)
		}
	})

	t.Run("missing TYPE", func(t *testing.T) {
		cfg := validConfig()
		cfg.Switches[0].Show.Param = nil
		if err := cfg.ValidateConfig(); !hasFieldError(err, "show.param.TYPE") {
			t.Errorf("Expected TYPE error, got: %v", err)
		}
	})

	t.Run("missing turn_off", func(t *testing.T) {
		cfg := validConfig()
		cfg.Switches[0].TurnOff = nil
		if err := cfg.ValidateConfig(); !hasFieldError(err, "switch.0.turn_off") {
			t.Errorf("Expected turn_off error, got: %v", err)
		}
	})
}

func TestValidateOutputs(t *testing.T) {
	t.Run("metrics without api", func(t *testing.T) {
		cfg := validConfig()
		cfg.Metrics.Enabled = true
		if err := cfg.ValidateConfig(); !hasFieldError(err, "metrics.enabled") {
			t.Errorf("Expected metrics error, got: %v", err)
		}
	})

	t.Run("messaging without backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Messaging.Enabled = true
		if err := cfg.ValidateConfig(); !hasFieldError(err, "messaging.backend") {
			t.Errorf("Expected backend error, got: %v", err)
		}
	})

	t.Run("mqtt without section", func(t *testing.T) {
		cfg := validConfig()
		cfg.Messaging.Enabled = true
		cfg.Messaging.Backend = "mqtt"
		if err := cfg.ValidateConfig(); !hasFieldError(err, "messaging.mqtt") {
			t.Errorf("Expected mqtt error, got: %v", err)
		}
	})

	t.Run("kafka ok", func(t *testing.T) {
		cfg := validConfig()
		cfg.Messaging.Enabled = true
		cfg.Messaging.Backend = "kafka"
		cfg.Messaging.Kafka = &KafkaConfig{Brokers: []string{"localhost:9092"}}
		if err := cfg.ValidateConfig(); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})
}

func TestValidationErrors_Error(t *testing.T) {
	ve := ValidationErrors{
		{FieldPath: "router.host", Message: "field is required"},
		{ItemName: "phone", FieldPath: "target", Message: "bad"},
	}

	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("Expected count in message, got: %s", msg)
	}
	if !strings.Contains(msg, "[phone] target: bad") {
		t.Errorf("Expected item name in message, got: %s", msg)
	}
	if (ValidationErrors{}).Error() != "no validation errors" {
		t.Error("Unexpected empty message")
	}
}
