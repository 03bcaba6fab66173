// Package config handles configuration file parsing and validation for ikuai-bridge.
//
// This package reads TOML (or YAML, by file extension) configuration files and
// provides strongly-typed structures for accessing configuration data. Defaults
// are applied right after decoding, so every consumer sees a complete config.
//
// # Configuration Structure
//
// The configuration file defines:
//   - General settings (polling interval, timeouts, request concurrency, logging)
//   - Router address and credentials (plain password or its two encoded forms)
//   - Device trackers (IP or MAC target, display name, grace count)
//   - Custom switches (show call, on/off predicates, turn on/off calls)
//   - Built-in action toggles, HTTP API, Prometheus metrics and MQTT/Kafka bridge
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("/etc/ikuai-bridge.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, t := range cfg.Trackers {
//	    fmt.Printf("%s (%s), grace %d\n", t.DisplayName(), t.ResolvedKind(), t.ResolvedGrace())
//	}
//
// ValidateConfig collects every problem into ValidationErrors instead of
// stopping at the first one.
package config
