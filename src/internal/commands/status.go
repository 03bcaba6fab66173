package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/domain"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
)

func CreateStatusCommand() *StatusCommand {
	sc := &StatusCommand{
		fs: flag.NewFlagSet("status", flag.ExitOnError),
	}

	sc.fs.BoolVar(&sc.JSON, "json", false, "Print the snapshot as JSON")

	return sc
}

// StatusCommand runs one polling cycle and prints the result.
type StatusCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	JSON bool
}

func (c *StatusCommand) Name() string {
	return c.fs.Name()
}

func (c *StatusCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.JSON {
		log.SetForceStdErr(true)
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *StatusCommand) Run() error {
	deps := domain.NewAppDependencies(c.cfg)

	snap, err := deps.Coordinator().Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("failed to poll %s: %w", c.cfg.Router.BaseURL(), err)
	}

	out := c.ctx.out()
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	printSnapshot(out, deps.RouterName(), snap)
	return nil
}

func printSnapshot(out io.Writer, router string, snap *poller.Snapshot) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	sys := snap.System
	fmt.Fprintf(out, "%s %s (%s)\n\n", bold("Router"), router, sys.FirmwareVersion)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Hostname\t%s\n", sys.Hostname)
	fmt.Fprintf(w, "Uptime\t%s\n", sys.Uptime)
	fmt.Fprintf(w, "CPU\t%.1f%%\n", sys.CPUPercent)
	if sys.HasCPUTemp {
		fmt.Fprintf(w, "CPU temperature\t%.0f°C\n", sys.CPUTemperature)
	}
	fmt.Fprintf(w, "Memory\t%.1f%%\n", sys.MemoryPercent)
	fmt.Fprintf(w, "Online users\t%d\n", sys.OnlineUsers)
	fmt.Fprintf(w, "APs online\t%d\n", sys.APOnline)
	fmt.Fprintf(w, "Connections\t%d\n", sys.Connections)
	fmt.Fprintf(w, "Upload / download\t%.3f / %.3f MB/s\n", sys.UploadMBps, sys.DownloadMBps)
	fmt.Fprintf(w, "Total up / down\t%.2f / %.2f GB\n", sys.TotalUpGB, sys.TotalDownGB)
	fmt.Fprintf(w, "WAN IP\t%s\n", snap.WAN.DisplayIP())
	if snap.WAN.HasDefaultRoute && snap.WAN.Uptime != "" {
		fmt.Fprintf(w, "WAN uptime\t%s\n", snap.WAN.Uptime)
	}
	if snap.WAN6.Address != "" {
		fmt.Fprintf(w, "WAN IPv6\t%s\n", snap.WAN6.Address)
	}
	if snap.LAN6.Address != "" {
		fmt.Fprintf(w, "LAN IPv6\t%s\n", snap.LAN6.Address)
	}
	w.Flush()

	if len(snap.Switches) > 0 {
		fmt.Fprintf(out, "\n%s\n", bold("Switches"))
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, st := range snap.Switches {
			state := red("off")
			if st.On {
				state = green("on")
			}
			fmt.Fprintf(w, "%s\t%s\n", st.Name, state)
		}
		w.Flush()
	}

	if len(snap.MACControl) > 0 {
		fmt.Fprintf(out, "\n%s\n", bold("MAC access control"))
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range snap.MACControl {
			state := red("disabled")
			if e.Enabled {
				state = green("enabled")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.Label(), state)
		}
		w.Flush()
	}

	if len(snap.Targets) > 0 {
		fmt.Fprintf(out, "\n%s\n", bold("Devices"))
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, t := range snap.Targets {
			state := red("not home")
			if t.Present {
				state = green("home")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.TargetID, state, t.IP)
		}
		w.Flush()
	}

	if !snap.HostsAvailable {
		fmt.Fprintf(out, "\n%s\n", yellow("LAN host list unavailable: presence not updated"))
	}
	names := make([]string, 0, len(snap.Failures))
	for name := range snap.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s %s: %s\n", yellow("warning:"), name, snap.Failures[name])
	}
}
