package poller

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultCycleTimeout = 60 * time.Second
)

// Options configures a Poller.
type Options struct {
	Targets      []presence.Target
	Switches     []ikuai.SwitchSpec
	CycleTimeout time.Duration
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Stats are cumulative polling counters.
type Stats struct {
	Cycles       int64         `json:"cycles"`
	Failures     int64         `json:"failures"`
	AuthExpired  int64         `json:"auth_expired"`
	Actions      int64         `json:"actions"`
	LastSuccess  time.Time     `json:"last_success"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
}

// Poller owns everything that lives across polling cycles for one router: the
// session, the presence tracker and the last good snapshot.
//
// Refresh calls are serialized. ControlDevice may run concurrently with a
// refresh; it shares the session and the transport's concurrency gate but
// never touches tracker state.
type Poller struct {
	router       Router
	session      *ikuai.SessionManager
	fetcher      *Fetcher
	tracker      *presence.Tracker
	targets      []presence.Target
	cycleTimeout time.Duration
	now          func() time.Time
	logger       zerolog.Logger

	cycleMu sync.Mutex

	mu          sync.RWMutex
	last        *Snapshot
	available   bool
	stats       Stats
	subscribers map[int]func(*Snapshot)
	nextSub     int

	refreshCh chan struct{}
}

// New creates a poller. The session manager must log in through the same router.
func New(router Router, session *ikuai.SessionManager, opts Options) *Poller {
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = DefaultCycleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		router:       router,
		session:      session,
		fetcher:      NewFetcher(router, opts.Switches, opts.Now),
		tracker:      presence.NewTracker(),
		targets:      opts.Targets,
		cycleTimeout: opts.CycleTimeout,
		now:          opts.Now,
		logger:       log.With("poller"),
		subscribers:  make(map[int]func(*Snapshot)),
		refreshCh:    make(chan struct{}, 1),
	}
}

// Refresh runs one polling cycle and returns the fresh snapshot.
//
// On failure the previous snapshot and tracker state are kept and Available
// reports false until the next successful cycle. An expired session is
// invalidated so that the next cycle logs in again.
func (p *Poller) Refresh(ctx context.Context) (*Snapshot, error) {
	p.cycleMu.Lock()
	snap, err := p.refresh(ctx)
	p.cycleMu.Unlock()

	if err != nil {
		p.fail(err)
		return nil, err
	}

	p.mu.Lock()
	p.last = snap
	p.available = true
	p.stats.Cycles++
	p.stats.LastSuccess = snap.Timestamp
	p.stats.LastDuration = snap.Duration
	p.stats.LastError = ""
	subscribers := make([]func(*Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subscribers = append(subscribers, fn)
	}
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
	return snap, nil
}

func (p *Poller) refresh(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cycleTimeout)
	defer cancel()

	key, err := p.session.SessionKey(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cycleError(ctx.Err())
		}
		return nil, err
	}

	snap, err := p.fetcher.Fetch(ctx, key)
	if err != nil {
		if stderrors.Is(err, errors.ErrAuthExpired) {
			p.session.Invalidate()
			p.mu.Lock()
			p.stats.AuthExpired++
			p.mu.Unlock()
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, cycleError(ctx.Err())
		}
		return nil, err
	}

	snap.Presence = p.tracker.Resolve(snap.Hosts, p.targets)
	snap.Targets = presence.Summarize(p.targets, snap.Presence)

	p.logger.Debug().
		Dur("duration", snap.Duration).
		Int("hosts", hostCount(snap.Hosts)).
		Int("present", len(snap.Presence)).
		Int("failures", len(snap.Failures)).
		Msg("Polling cycle complete")

	return snap, nil
}

func (p *Poller) fail(err error) {
	p.mu.Lock()
	p.available = false
	p.stats.Cycles++
	p.stats.Failures++
	p.stats.LastError = err.Error()
	p.mu.Unlock()

	switch {
	case stderrors.Is(err, errors.ErrAuthRejected):
		p.logger.Debug().Err(err).Msg("Polling suspended: credentials rejected")
	case stderrors.Is(err, errors.ErrAuthExpired):
		p.logger.Info().Err(err).Msg("Session expired, logging in again on the next cycle")
	default:
		p.logger.Warn().Err(err).Msg("Polling cycle failed")
	}
}

// ControlDevice sends one control command and requests a refresh when the
// router accepted it. The router's response is returned as-is; deciding what
// counts as success is left to the caller.
func (p *Poller) ControlDevice(ctx context.Context, req ikuai.Request) (*ikuai.Response, error) {
	key, err := p.session.SessionKey(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.router.Execute(ctx, key, req)

	p.mu.Lock()
	p.stats.Actions++
	p.mu.Unlock()

	if err != nil {
		if stderrors.Is(err, errors.ErrAuthExpired) {
			p.session.Invalidate()
		}
		return resp, err
	}

	p.logger.Info().
		Str("func_name", req.FuncName).
		Str("action", req.Action).
		Bool("succeeded", resp.Succeeded()).
		Msg("Control command sent")

	p.RequestRefresh()
	return resp, nil
}

// RequestRefresh asks Run to start a cycle as soon as possible. Requests made
// while one is already pending are merged.
func (p *Poller) RequestRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Run polls every interval until ctx is done. The first cycle starts immediately.
func (p *Poller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.logger.Info().Dur("interval", interval).Msg("Polling started")
	_, _ = p.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Polling stopped")
			return nil
		case <-ticker.C:
		case <-p.refreshCh:
		}
		_, _ = p.Refresh(ctx)
	}
}

// Subscribe registers fn to receive every fresh snapshot. Callbacks run on the
// polling goroutine and must not call Refresh.
func (p *Poller) Subscribe(fn func(*Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Last returns the most recent successful snapshot, or nil.
func (p *Poller) Last() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Available reports whether the most recent cycle succeeded.
func (p *Poller) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.available
}

// Stats returns polling counters.
func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Session returns the session state.
func (p *Poller) Session() ikuai.SessionState {
	return p.session.State()
}

// Targets returns the tracked targets.
func (p *Poller) Targets() []presence.Target {
	return p.targets
}

func hostCount(idx *ikuai.HostIndex) int {
	if idx == nil {
		return 0
	}
	return idx.Len()
}
