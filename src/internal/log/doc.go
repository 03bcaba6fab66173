// Package log provides leveled logging for ikuai-bridge.
//
// The package keeps a small set of global printf-style functions so that any
// package can log without carrying a logger around, and renders them through
// zerolog. Levels are DEBUG, INFO, WARN and ERROR; DEBUG is shown only in
// verbose mode.
//
// # Output
//
//   - console format (default): timestamped, colored when writing to a terminal
//   - json format: one JSON object per line, for log collectors
//
// Errors are written to stderr, other levels to stdout unless SetForceStdErr
// is enabled.
//
// # Example Usage
//
//	log.Infof("Polling %s every %s", host, interval)
//	log.Warnf("LAN host list unavailable: %v", err)
//
//	log.SetVerbose(true)
//	log.Debugf("Session key refreshed, expires at %s", expiry)
//
// Long-running components can take a structured logger instead:
//
//	logger := log.With("poller")
//	logger.Info().Str("router", host).Dur("took", d).Msg("Cycle complete")
//
// All functions are safe for concurrent use.
package log
