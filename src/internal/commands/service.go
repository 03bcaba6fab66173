package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/api"
	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
	"github.com/maksimkurb/ikuai-bridge/src/internal/metrics"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
)

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}

	sc.fs.BoolVar(&sc.NoAPI, "no-api", false, "Do not start the HTTP API even if it is enabled in the configuration")

	return sc
}

type ServiceCommand struct {
	fs    *flag.FlagSet
	cfg   *config.Config
	ctx   *AppContext
	NoAPI bool

	configHasher *config.ConfigHasher
	serviceMgr   *ServiceManager

	apiRunner *RestartableRunner
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	s.cfg = cfg

	s.configHasher = config.NewConfigHasher(ctx.ConfigPath)
	s.serviceMgr = NewServiceManager(ctx, cfg, s.configHasher)

	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting ikuai-bridge service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	if err := s.serviceMgr.Start(); err != nil {
		log.Errorf("Failed to start polling: %v", err)
		if s.NoAPI || !s.cfg.API.Enabled {
			return err
		}
		log.Warnf("API stays up without polling. Fix the configuration and restart the service.")
	}

	if s.cfg.API.Enabled && !s.NoAPI {
		if err := s.startAPIServer(ctx); err != nil {
			log.Errorf("Failed to start API server: %v", err)
		}
	} else {
		log.Infof("HTTP API is disabled")
		if s.cfg.Metrics.Enabled {
			log.Warnf("Metrics are served on the API listener and stay unavailable")
		}
	}

	log.Infof("Send SIGHUP to reload configuration, SIGUSR1 to poll now")

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Infof("Received SIGHUP signal, reloading configuration...")
			if err := s.serviceMgr.Restart(); err != nil {
				log.Errorf("Failed to reload configuration: %v", err)
			} else {
				log.Infof("Configuration reloaded successfully")
			}

		case syscall.SIGUSR1:
			if deps := s.serviceMgr.Dependencies(); deps != nil {
				log.Infof("Received SIGUSR1 signal, polling now...")
				deps.Coordinator().RequestRefresh()
			}

		case syscall.SIGINT, syscall.SIGTERM:
			log.Infof("Received signal %v, shutting down...", sig)
			return s.shutdown()
		}
	}
	return nil
}

// startAPIServer serves the API, and metrics when enabled, under a restartable runner.
func (s *ServiceCommand) startAPIServer(ctx context.Context) error {
	opts := api.RouterOptions{PrivateOnly: s.cfg.API.PrivateOnlyEnabled()}
	if s.cfg.Metrics.Enabled {
		src := &liveSource{mgr: s.serviceMgr}
		collector := metrics.NewCollector(s.cfg.Metrics.Namespace, s.cfg.Router.Name, src, src.TransportStats)
		opts.Metrics = metrics.Handler(collector)
		opts.MetricsPath = s.cfg.Metrics.Path
		log.Infof("Prometheus metrics at http://%s%s", s.cfg.API.Listen, s.cfg.Metrics.Path)
	}

	if opts.PrivateOnly {
		log.Infof("API access restricted to private subnets only:")
		log.Infof("  IPv4: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, 127.0.0.0/8")
		log.Infof("  IPv6: fc00::/7, fe80::/10, ::1/128")
	}

	router := api.NewRouter(s.serviceMgr, s.configHasher, opts)

	s.apiRunner = NewRestartableRunner(RunnerConfig{
		Name:           "API server",
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}, func(runCtx context.Context) error {
		// A shut down http.Server cannot be reused.
		return api.NewServer(s.cfg.API.Listen, router).Run(runCtx)
	})

	return s.apiRunner.Start(ctx)
}

// shutdown performs graceful shutdown of all components.
func (s *ServiceCommand) shutdown() error {
	if s.serviceMgr.IsRunning() {
		if err := s.serviceMgr.Stop(); err != nil {
			log.Errorf("Failed to stop polling: %v", err)
		}
	}

	if s.apiRunner != nil {
		if err := s.apiRunner.Stop(); err != nil {
			log.Errorf("Failed to stop API server: %v", err)
		}
	}

	log.Infof("Service stopped successfully")
	return nil
}

// liveSource reads metrics from whatever poller the service manager runs
// right now, so a restart does not leave the collector on a stale poller.
type liveSource struct {
	mgr *ServiceManager
}

func (l *liveSource) coordinator() metrics.Source {
	deps := l.mgr.Dependencies()
	if deps == nil || deps.Coordinator() == nil {
		return nil
	}
	return deps.Coordinator()
}

func (l *liveSource) Last() *poller.Snapshot {
	if c := l.coordinator(); c != nil {
		return c.Last()
	}
	return nil
}

func (l *liveSource) Available() bool {
	if c := l.coordinator(); c != nil {
		return c.Available()
	}
	return false
}

func (l *liveSource) Stats() poller.Stats {
	if c := l.coordinator(); c != nil {
		return c.Stats()
	}
	return poller.Stats{}
}

func (l *liveSource) Session() ikuai.SessionState {
	if c := l.coordinator(); c != nil {
		return c.Session()
	}
	return ikuai.SessionState{}
}

func (l *liveSource) TransportStats() ikuai.TransportStats {
	if deps := l.mgr.Dependencies(); deps != nil {
		return deps.TransportStats()
	}
	return ikuai.TransportStats{}
}
