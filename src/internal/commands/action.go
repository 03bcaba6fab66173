package commands

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/domain"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

func CreateActionCommand() *ActionCommand {
	ac := &ActionCommand{
		fs: flag.NewFlagSet("action", flag.ExitOnError),
	}

	ac.fs.BoolVar(&ac.List, "list", false, "List available actions instead of running one")

	return ac
}

// ActionCommand runs one named action against the router, or lists them.
type ActionCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	List bool

	action string
}

func (c *ActionCommand) Name() string {
	return c.fs.Name()
}

func (c *ActionCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if !c.List {
		if c.fs.NArg() != 1 {
			return fmt.Errorf("usage: action [-list] <name>")
		}
		c.action = c.fs.Arg(0)
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *ActionCommand) Run() error {
	deps := domain.NewAppDependencies(c.cfg)
	ctx := context.Background()
	out := c.ctx.out()

	if c.List {
		// MAC access-control actions are only known after a cycle.
		var entries []ikuai.ACLEntry
		snap, err := deps.Coordinator().Refresh(ctx)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.YellowString("warning:"), err)
		} else {
			entries = snap.MACControl
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, a := range deps.Catalog().List(entries) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.Kind, a.Label)
		}
		return w.Flush()
	}

	result, err := deps.Catalog().Run(ctx, deps.Coordinator(), c.action)
	if err != nil {
		if result.Code != 0 || result.Message != "" {
			fmt.Fprintf(out, "%s %s: code %d %s\n", color.RedString("refused"), c.action, result.Code, result.Message)
		}
		return err
	}

	fmt.Fprintf(out, "%s %s\n", color.GreenString("ok"), result.Action)
	return nil
}
