// Package commands implements the ikuai-bridge subcommands.
//
// Each command implements the Runner interface: Init parses its own flags and
// loads the configuration, Run does the work. The binary in cmd/ikuai-bridge
// mounts every Runner as a urfave/cli command.
//
// # Available Commands
//
//   - service: poll the router and serve the API, metrics and messaging bridge
//   - status: run one polling cycle and print the snapshot
//   - action: run a named action, or list them with -list
//   - hash-password: print password_hash and password_obfuscated for a password
//   - check-config: validate the configuration file
//
// The service command keeps polling in a ServiceManager, which the API uses to
// start, stop and restart polling. SIGHUP restarts it with a freshly loaded
// configuration and SIGUSR1 requests an immediate cycle.
package commands
