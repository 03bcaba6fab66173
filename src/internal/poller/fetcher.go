package poller

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

// Router is the subset of the router client the poller needs.
type Router interface {
	Login(ctx context.Context) (string, error)
	Status(ctx context.Context, key string) (ikuai.SystemMetrics, error)
	WAN(ctx context.Context, key string) (ikuai.WANInfo, error)
	WAN6(ctx context.Context, key string) (ikuai.IPv6Info, error)
	LAN6(ctx context.Context, key string) (ikuai.IPv6Info, error)
	MACControl(ctx context.Context, key string) ([]ikuai.ACLEntry, error)
	LANHosts(ctx context.Context, key string) (*ikuai.HostIndex, error)
	Switch(ctx context.Context, key string, spec ikuai.SwitchSpec) (ikuai.SwitchState, bool, error)
	Execute(ctx context.Context, key string, req ikuai.Request) (*ikuai.Response, error)
}

var _ Router = (*ikuai.Client)(nil)

// subFetch is one independent call of the fan-out. It writes its result into
// the snapshot field it owns and returns the call error, if any.
type subFetch struct {
	name string
	run  func(ctx context.Context) error
}

// Fetcher performs the calls of one polling cycle and assembles a Snapshot.
type Fetcher struct {
	router   Router
	switches []ikuai.SwitchSpec
	now      func() time.Time
}

// NewFetcher creates a fetcher that reads the given switches in addition to the
// fixed set of calls.
func NewFetcher(router Router, switches []ikuai.SwitchSpec, now func() time.Time) *Fetcher {
	if now == nil {
		now = time.Now
	}
	return &Fetcher{router: router, switches: switches, now: now}
}

// Fetch runs the status call, then every other call concurrently.
//
// A session-expired answer from the status call aborts the cycle before the
// fan-out. Fan-out calls never cancel each other; once all of them settled, any
// session-expired result turns the whole cycle into an AuthExpired error. Other
// sub-fetch failures are recorded in Snapshot.Failures and leave zero values.
func (f *Fetcher) Fetch(ctx context.Context, key string) (*Snapshot, error) {
	start := f.now()

	system, err := f.router.Status(ctx, key)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Timestamp: start,
		System:    system,
	}
	switchSlots := make([]struct {
		state ikuai.SwitchState
		ok    bool
	}, len(f.switches))

	fetches := []subFetch{
		{"wan", func(ctx context.Context) (err error) {
			snap.WAN, err = f.router.WAN(ctx, key)
			return err
		}},
		{"wan6", func(ctx context.Context) (err error) {
			snap.WAN6, err = f.router.WAN6(ctx, key)
			return err
		}},
		{"lan6", func(ctx context.Context) (err error) {
			snap.LAN6, err = f.router.LAN6(ctx, key)
			return err
		}},
		{"mac_control", func(ctx context.Context) (err error) {
			snap.MACControl, err = f.router.MACControl(ctx, key)
			return err
		}},
		{"lan_hosts", func(ctx context.Context) (err error) {
			snap.Hosts, err = f.router.LANHosts(ctx, key)
			return err
		}},
	}
	for i, spec := range f.switches {
		fetches = append(fetches, subFetch{"switch:" + spec.Name, func(ctx context.Context) (err error) {
			switchSlots[i].state, switchSlots[i].ok, err = f.router.Switch(ctx, key, spec)
			return err
		}})
	}

	settled := make([]error, len(fetches))
	var g errgroup.Group
	for i, sf := range fetches {
		g.Go(func() error {
			settled[i] = sf.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, cycleError(err)
	}

	for i, err := range settled {
		if err == nil {
			continue
		}
		if stderrors.Is(err, errors.ErrAuthExpired) {
			return nil, errors.NewAuthExpiredError(fmt.Sprintf("%s: session expired during fan-out", fetches[i].name))
		}
		if snap.Failures == nil {
			snap.Failures = make(map[string]string)
		}
		snap.Failures[fetches[i].name] = err.Error()
		log.Warnf("Sub-fetch %s failed: %v", fetches[i].name, err)
	}

	snap.HostsAvailable = snap.Hosts != nil

	for _, slot := range switchSlots {
		if slot.ok {
			snap.Switches = append(snap.Switches, slot.state)
		}
	}

	snap.Duration = f.now().Sub(start)
	return snap, nil
}

// cycleError maps a done context to the error reported for the cycle.
func cycleError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError("polling cycle did not complete in time", err)
	}
	return errors.NewNetworkError("polling cycle cancelled", err)
}
