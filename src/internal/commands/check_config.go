package commands

import (
	"flag"
	"fmt"

	"github.com/fatih/color"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
)

func CreateCheckConfigCommand() *CheckConfigCommand {
	return &CheckConfigCommand{
		fs: flag.NewFlagSet("check-config", flag.ExitOnError),
	}
}

// CheckConfigCommand validates the configuration file without contacting the router.
type CheckConfigCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
}

func (c *CheckConfigCommand) Name() string {
	return c.fs.Name()
}

func (c *CheckConfigCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	return c.fs.Parse(args)
}

func (c *CheckConfigCommand) Run() error {
	out := c.ctx.out()

	cfg, err := loadAndValidateConfigOrFail(c.ctx)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", color.RedString("invalid:"), err)
		return err
	}

	hash, err := config.CalculateHash(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s\n", color.GreenString("ok:"), cfg.GetConfigFilePath())
	fmt.Fprintf(out, "router:   %s (%s)\n", cfg.Router.Name, cfg.Router.BaseURL())
	fmt.Fprintf(out, "trackers: %d\n", len(cfg.Trackers))
	fmt.Fprintf(out, "switches: %d\n", len(cfg.Switches))
	fmt.Fprintf(out, "hash:     %s\n", hash)
	return nil
}
