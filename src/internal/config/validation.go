package config

import (
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "hexadecimal":
		return "must be a hexadecimal string"
	case "base64":
		return "must be a base64 string"
	case "hostname_port":
		return "must be in format 'host:port'"
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	case "ip_or_mac":
		return "must be an IP address or a MAC address (aa:bb:cc:dd:ee:ff)"
	case "min_interval":
		return fmt.Sprintf("must be >= %d seconds", MinUpdateIntervalSeconds)
	case "router_name":
		return "must consist only of letters, numbers, dashes and underscores"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // For trackers/switches: the name of the item (e.g., "phone", "arp_filter")
	FieldPath string // Dot-notation field path (e.g., "general.update_interval_seconds", "router.host")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("ip_or_mac", validateIPOrMAC); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("min_interval", validateMinInterval); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("router_name", validateRouterName); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validator: IP address or 48-bit MAC address
func validateIPOrMAC(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if net.ParseIP(value) != nil {
		return true
	}
	return isMAC(value)
}

// Custom validator: polling interval not below the router-friendly minimum
func validateMinInterval(fl validator.FieldLevel) bool {
	return fl.Field().Int() >= MinUpdateIntervalSeconds
}

// Custom validator: router name format
func validateRouterName(fl validator.FieldLevel) bool {
	return routerNameRegexp.MatchString(fl.Field().String())
}
