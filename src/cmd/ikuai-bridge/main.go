package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/maksimkurb/ikuai-bridge/src/internal/api"
	"github.com/maksimkurb/ikuai-bridge/src/internal/commands"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	api.Version, api.Commit, api.Date = version, commit, date

	appCtx := &commands.AppContext{}

	app := &cli.App{
		Name:    "ikuai-bridge",
		Usage:   "Poll an iKuai router and expose its state over HTTP, Prometheus and MQTT/Kafka",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Value:       "/etc/ikuai-bridge/ikuai-bridge.toml",
				Usage:       "Load configuration from `FILE` (.toml, .yaml or .yml)",
				EnvVars:     []string{"IKUAI_BRIDGE_CONFIG"},
				Destination: &appCtx.ConfigPath,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Enable debug logging",
				Destination: &appCtx.Verbose,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format: console or json (default: general.log_format)",
				EnvVars:     []string{"IKUAI_BRIDGE_LOG_FORMAT"},
				Destination: &appCtx.LogFormat,
			},
		},
		Before: func(c *cli.Context) error {
			if appCtx.Verbose {
				log.SetVerbose(true)
			}
			if appCtx.LogFormat != "" {
				return log.SetFormat(appCtx.LogFormat)
			}
			return nil
		},
		Commands: []*cli.Command{
			command(commands.CreateServiceCommand(), "Run as a service: poll the router, serve the API and publish state", appCtx),
			command(commands.CreateStatusCommand(), "Poll the router once and print its state ([-json])", appCtx),
			command(commands.CreateActionCommand(), "Run an action by name, or list actions ([-list] <name>)", appCtx),
			command(commands.CreateHashPasswordCommand(), "Print the encoded password forms for the [router] section", appCtx),
			command(commands.CreateCheckConfigCommand(), "Validate the configuration file", appCtx),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// command mounts a Runner as a cli command. The Runner parses its own flags.
func command(r commands.Runner, usage string, appCtx *commands.AppContext) *cli.Command {
	return &cli.Command{
		Name:            r.Name(),
		Usage:           usage,
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			if err := r.Init(c.Args().Slice(), appCtx); err != nil {
				return fmt.Errorf("failed to initialize %s: %w", r.Name(), err)
			}
			return r.Run()
		},
	}
}
