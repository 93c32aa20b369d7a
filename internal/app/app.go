// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the tabwarden daemon: create, start, stop.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corey/tabwarden/internal/adapters/ahocorasick"
	"github.com/corey/tabwarden/internal/adapters/bbolt"
	fsw "github.com/corey/tabwarden/internal/adapters/fsnotify"
	"github.com/corey/tabwarden/internal/adapters/notify"
	"github.com/corey/tabwarden/internal/adapters/otel"
	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/adapters/tailer"
	"github.com/corey/tabwarden/internal/adapters/web"
	"github.com/corey/tabwarden/internal/config"
	"github.com/corey/tabwarden/internal/domain/activity"
	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/domain/nudge"
	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/domain/session"
	"github.com/corey/tabwarden/internal/ports"
)

// eventBuffer is the dispatcher queue depth. Producers never block: a full
// queue rejects the event.
const eventBuffer = 256

// App is the top-level container wiring all components together.
type App struct {
	Paths     *Paths
	Store     *bbolt.Store
	Server    *socket.Server
	Watcher   *fsw.Watcher
	WebServer *web.Server    // nil when the HTTP API is disabled
	Tailer    *tailer.Tailer // nil when the feed is disabled

	log      *zap.Logger
	gen      ports.Generator // nil: local templates only
	metrics  ports.Metrics
	alerts   *alertGate
	now      func() time.Time
	settings atomic.Pointer[config.Config]

	distractions atomic.Pointer[classify.DistractionList]
	tracker      *session.Tracker
	pipeline     *nudge.Pipeline
	sites        *classify.SiteClassifier
	tabs         *tabRegistry
	sprint       *sprintTimer

	mu       sync.Mutex // serializes every store read-modify-write
	engine   *points.Engine
	switches *activity.SwitchTracker

	events     chan ports.Event
	eventCount atomic.Uint64
	background sync.WaitGroup // in-flight nudges

	cancel  context.CancelFunc
	group   *errgroup.Group
	started time.Time
}

// Config holds initialization parameters for the App.
type Config struct {
	Home      string
	Settings  *config.Config   // nil loads <Home>/config.yaml
	Logger    *zap.Logger      // nil disables logging
	Generator ports.Generator  // overrides the configured provider
	Notifier  ports.Notifier   // overrides the log and desktop sinks
	Metrics   ports.Metrics    // overrides the configured exporter
	Clock     func() time.Time // nil uses time.Now
}

// New creates an App with all dependencies wired. Does not start services.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.Home == "" {
		return nil, fmt.Errorf("home directory required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	paths := NewPaths(cfg.Home)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create home: %w", err)
	}

	settings := cfg.Settings
	if settings == nil {
		var err error
		if settings, err = config.Load(paths.Config); err != nil {
			return nil, err
		}
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	matcher, err := ahocorasick.NewMatcher(nil)
	if err != nil {
		return nil, fmt.Errorf("create matcher: %w", err)
	}
	contexts, err := classify.NewContextInferrer(matcher)
	if err != nil {
		return nil, err
	}

	gen := cfg.Generator
	if gen == nil {
		gen = newGenerator(ctx, settings.Generator, log)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = newMetrics(ctx, settings.Telemetry, log)
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = newNotifier(settings.Notify, log)
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	watcher, err := fsw.NewWatcher(0)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	a := &App{
		Paths:    paths,
		Store:    store,
		Watcher:  watcher,
		log:      log,
		gen:      gen,
		metrics:  metrics,
		alerts:   newAlertGate(notifier, settings.Notify.Cooldown, now),
		now:      now,
		sites:    classify.NewSiteClassifier(now),
		tabs:     newTabRegistry(),
		sprint:   &sprintTimer{},
		engine:   points.NewEngine(settings.Rules()),
		switches: newSwitchTracker(settings.Activity),
		events:   make(chan ports.Event, eventBuffer),
	}
	a.settings.Store(settings)
	a.distractions.Store(classify.NewDistractionList(settings.Distractions))

	a.tracker = session.NewTracker(a.isDistracting,
		session.WithClock(now),
		session.WithMinDuration(settings.Session.MinDuration))
	a.pipeline = nudge.New(gen, contexts, nudgeConfig(settings), log.Named("nudge"), nudge.WithClock(now))

	a.Server = socket.NewServer(socket.SocketPath(paths.Root), a, log.Named("socket"))
	if settings.HTTP.Enabled {
		a.WebServer = web.NewServer(a, paths.PortFile, log.Named("web"))
	}
	if settings.Feed.Enabled {
		a.Tailer = tailer.New(tailer.Config{
			Path:         paths.FeedFile,
			PollInterval: settings.Feed.PollInterval,
			Callback:     a.onFeedEvent,
			OnError: func(err error) {
				a.log.Debug("feed line skipped", zap.Error(err))
			},
		})
	}
	return a, nil
}

// Start initializes storage and begins the daemon: dispatcher, scheduler,
// socket server, HTTP API, feed tailer and config watcher.
func (a *App) Start(ctx context.Context) error {
	a.started = a.now()
	if err := a.InitializeStorage(ctx); err != nil {
		return err
	}
	a.restoreUsage(ctx)
	a.Store.OnChange(a.onStoreChange)

	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(runCtx)
	a.cancel = cancel
	a.group = g
	g.Go(func() error { return a.dispatch(gctx) })
	g.Go(func() error { return a.schedule(gctx) })

	// HTTP API is non-fatal if the port is unavailable
	if a.WebServer != nil {
		port := a.Settings().HTTP.Port
		if port == 0 {
			port = web.DefaultPort(a.Paths.Root)
		}
		if err := a.WebServer.Start(port); err != nil {
			a.log.Warn("HTTP API unavailable", zap.Error(err))
		}
	}
	if err := a.Watcher.Watch(a.Paths.Config, a.reloadConfig); err != nil {
		a.log.Warn("config watcher unavailable", zap.Error(err))
	}
	if a.Tailer != nil {
		a.Tailer.Start()
	}

	a.resumeSprint(ctx)

	a.mu.Lock()
	if l, err := a.loadLedger(ctx); err == nil {
		a.writeStatusLocked(l)
	}
	a.mu.Unlock()
	a.log.Info("daemon started",
		zap.String("home", a.Paths.Root),
		zap.String("socket", a.Server.Addr()),
		zap.String("generator", a.GeneratorName()))
	return nil
}

// Stop gracefully shuts down all services and commits the open session.
func (a *App) Stop() error {
	if a.Tailer != nil {
		a.Tailer.Stop()
	}
	a.Watcher.Stop()
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
	a.Server.Stop()

	if a.cancel != nil {
		a.cancel()
		if err := a.group.Wait(); err != nil {
			a.log.Warn("background loop exited with error", zap.Error(err))
		}
	}
	a.sprint.stop()
	a.background.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if f := a.tracker.Flush(); f != nil {
		a.recordDistraction(ctx, *f)
	}
	if err := a.metrics.Close(ctx); err != nil {
		a.log.Warn("metrics shutdown", zap.Error(err))
	}
	return a.Store.Close()
}

// ShutdownCh is closed when a client requests a remote shutdown.
func (a *App) ShutdownCh() <-chan struct{} {
	return a.Server.ShutdownCh()
}

// Settings returns the configuration currently in effect.
func (a *App) Settings() *config.Config {
	return a.settings.Load()
}

func (a *App) isDistracting(rawURL string) bool {
	return a.distractions.Load().IsDistracting(rawURL)
}

func newSwitchTracker(c config.ActivityConfig) *activity.SwitchTracker {
	return activity.NewSwitchTracker(c.SwitchWindow, c.SwitchCapacity, c.SwitchThreshold)
}

func nudgeConfig(c *config.Config) nudge.Config {
	nc := nudge.DefaultConfig()
	nc.Timeout = c.Generator.Timeout
	nc.Attempts = c.Generator.Attempts
	nc.Backoff = c.Generator.Backoff
	nc.CacheTTL = c.Nudge.CacheTTL
	nc.Cooldown = c.Nudge.Cooldown
	nc.MinCooldown = c.Nudge.MinCooldown
	nc.MaxCooldown = c.Nudge.MaxCooldown
	nc.DecorateChance = c.Nudge.DecorateChance
	return nc
}

func newMetrics(ctx context.Context, c config.TelemetryConfig, log *zap.Logger) ports.Metrics {
	if !c.Enabled {
		return otel.NewNoOpMetrics()
	}
	exp, err := otel.NewExporter(ctx, otel.Config{
		Endpoint: c.Endpoint,
		Enabled:  c.Enabled,
		Insecure: c.Insecure,
		Interval: c.Interval,
	})
	if err != nil {
		log.Warn("metrics exporter unavailable, using no-op", zap.Error(err))
		return otel.NewNoOpMetrics()
	}
	return exp
}

func newNotifier(c config.NotifyConfig, log *zap.Logger) ports.Notifier {
	sinks := notify.Multi{notify.NewLog(log.Named("alerts"))}
	if c.Desktop {
		sinks = append(sinks, notify.NewDesktop(log.Named("desktop")))
	}
	return sinks
}
