package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ReservedSwitchName is the name of the built-in ARP filter switch.
const ReservedSwitchName = "arp_filter"

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}
	if c.General.RequestTimeoutSeconds > c.General.CycleTimeoutSeconds {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general.request_timeout_seconds",
			Message:   "must not exceed cycle_timeout_seconds",
		})
	}

	validationErrors = append(validationErrors, c.validateRouter()...)
	validationErrors = append(validationErrors, c.validateTrackers()...)
	validationErrors = append(validationErrors, c.validateSwitches()...)
	validationErrors = append(validationErrors, c.validateOutputs()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateRouter() ValidationErrors {
	var validationErrors ValidationErrors

	if c.Router == nil {
		return append(validationErrors, ValidationError{
			FieldPath: "router",
			Message:   "configuration must contain 'router' section",
		})
	}

	if err := validate.Struct(c.Router); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "router", "")...)
	}

	host := strings.ToLower(c.Router.Host)
	if c.Router.Host != "" && !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "router.host",
			Message:   "must start with http:// or https://",
		})
	}

	hasPlain := c.Router.Password != ""
	hasHash := c.Router.PasswordHash != ""
	hasObf := c.Router.PasswordObfuscated != ""

	switch {
	case hasPlain && (hasHash || hasObf):
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "router.password",
			Message:   "specify either password or password_hash + password_obfuscated, not both",
		})
	case !hasPlain && !(hasHash && hasObf):
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "router.password",
			Message:   "must specify password or both password_hash and password_obfuscated",
		})
	}

	return validationErrors
}

func (c *Config) validateTrackers() ValidationErrors {
	var validationErrors ValidationErrors
	seenTargets := make(map[string]bool)

	for i, tracker := range c.Trackers {
		itemName := tracker.Name
		if itemName == "" {
			itemName = fmt.Sprintf("tracker[%d]", i)
		}

		if err := validate.Struct(tracker); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("tracker.%d", i), itemName)...)
			continue
		}

		kind := tracker.ResolvedKind()
		if kind == TrackerKindMAC && !isMAC(tracker.Target) {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "target",
				Message:   fmt.Sprintf("%s is not a MAC address", tracker.Target),
			})
		}
		if kind == TrackerKindIP && isMAC(tracker.Target) {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "kind",
				Message:   fmt.Sprintf("%s is a MAC address, but kind is \"ip\"", tracker.Target),
			})
		}

		key := strings.ToLower(tracker.Target)
		if seenTargets[key] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "target",
				Message:   fmt.Sprintf("duplicate tracker target: %s", tracker.Target),
			})
		}
		seenTargets[key] = true
	}

	return validationErrors
}

func (c *Config) validateSwitches() ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)
	if c.Builtin.ARPFilterEnabled() {
		seenNames[ReservedSwitchName] = true
	}

	for i, sw := range c.Switches {
		itemName := sw.Name
		if itemName == "" {
			itemName = fmt.Sprintf("switch[%d]", i)
		}

		if err := validate.Struct(sw); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("switch.%d", i), itemName)...)
		}

		if seenNames[sw.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate switch name: %s", sw.Name),
			})
		}
		seenNames[sw.Name] = true

		if sw.Show != nil {
			if _, ok := sw.Show.Param["TYPE"]; !ok {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: "show.param.TYPE",
					Message:   "show call must set param TYPE",
				})
			}
		}
	}

	return validationErrors
}

func (c *Config) validateOutputs() ValidationErrors {
	var validationErrors ValidationErrors

	if c.API != nil {
		if err := validate.Struct(c.API); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "api", "")...)
		}
	}

	if c.Metrics != nil {
		if err := validate.Struct(c.Metrics); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "metrics", "")...)
		}
		if c.Metrics.Enabled && (c.API == nil || !c.API.Enabled) {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "metrics.enabled",
				Message:   "metrics are served by the API listener, enable [api] as well",
			})
		}
	}

	m := c.Messaging
	if m == nil {
		return validationErrors
	}
	if err := validate.Struct(m); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "messaging", "")...)
	}
	if !m.Enabled {
		return validationErrors
	}

	switch m.Backend {
	case "":
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "messaging.backend",
			Message:   "field is required when messaging is enabled",
		})
	case "mqtt":
		if m.MQTT == nil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "messaging.mqtt",
				Message:   "mqtt backend requires [messaging.mqtt] section",
			})
		}
	case "kafka":
		if m.Kafka == nil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "messaging.kafka",
				Message:   "kafka backend requires [messaging.kafka] section",
			})
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
