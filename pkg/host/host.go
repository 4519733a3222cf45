package host

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuldan/featurehub/pkg/config"
	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/database"
	"github.com/shuldan/featurehub/pkg/errors"
	"github.com/shuldan/featurehub/pkg/events"
	"github.com/shuldan/featurehub/pkg/externals"
	"github.com/shuldan/featurehub/pkg/feature"
	"github.com/shuldan/featurehub/pkg/loader"
	"github.com/shuldan/featurehub/pkg/logger"
	"github.com/shuldan/featurehub/pkg/services"
)

const defaultShutdownTimeout = 10 * time.Second

// Store is a manifest source that accepts new manifests.
type Store interface {
	Put(ctx context.Context, location string, manifest []byte) error
}

// Host wires a feature app Manager from configuration: logger, event bus,
// service registry, externals validator and the manifest sources.
type Host struct {
	logger   contracts.Logger
	bus      contracts.Bus
	registry *services.Registry
	manager  *feature.Manager
	mux      *loader.Mux
	stores   map[string]Store
	sql      *loader.SQLSource

	preload         []string
	shutdownTimeout time.Duration
	signals         []os.Signal

	cancelLoads context.CancelFunc
	closers     []func() error
	closeOnce   sync.Once
	closeErr    error
	running     atomic.Bool
}

// New builds a host. factories resolves the factory names used by
// manifests; it may be nil when only compiled-in modules are served.
func New(ctx context.Context, cfg contracts.Config, factories *loader.Factories, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.NewMapConfig(nil)
	}
	if factories == nil {
		factories = loader.NewFactories()
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	h := &Host{
		stores:          make(map[string]Store),
		preload:         cfg.GetStringSlice("preload"),
		shutdownTimeout: cfg.GetDuration("shutdown_timeout", defaultShutdownTimeout),
		signals:         o.signals,
	}

	h.logger = o.logger
	if h.logger == nil {
		var err error
		if h.logger, err = logger.NewLogger(logger.FromConfig(sub(cfg, "logger"))...); err != nil {
			return nil, ErrHostConfig.WithDetail("reason", "logger").WithCause(err)
		}
	}

	h.bus = events.New(append(events.FromConfig(sub(cfg, "events")), events.WithLogger(h.logger))...)
	h.closers = append(h.closers, h.bus.Close)

	h.registry = services.NewRegistry(
		services.WithConfigs(config.Section(cfg, "feature_services")),
		services.WithLogger(h.logger),
	)

	if err := h.buildLoaders(ctx, cfg, factories, o); err != nil {
		_ = h.Close()
		return nil, err
	}

	loadCtx, cancel := context.WithCancel(context.Background())
	h.cancelLoads = cancel

	managerOpts := []feature.Option{
		feature.WithModuleLoader(h.mux),
		feature.WithConfigs(config.Section(cfg, "feature_apps")),
		feature.WithLogger(h.logger),
		feature.WithEventBus(h.bus),
		feature.WithLoadContext(loadCtx),
	}
	if cfg.Has("externals") {
		validator, err := externals.NewValidator(config.StringMap(cfg, "externals"))
		if err != nil {
			_ = h.Close()
			return nil, ErrHostConfig.WithDetail("reason", "externals").WithCause(err)
		}
		managerOpts = append(managerOpts, feature.WithExternalsValidator(validator))
	}
	h.manager = feature.NewManager(h.registry, managerOpts...)

	return h, nil
}

func (h *Host) buildLoaders(ctx context.Context, cfg contracts.Config, factories *loader.Factories, o *hostOptions) error {
	h.mux = loader.NewMux(h.logger)

	if o.catalog != nil {
		h.mux.Handle("builtin", o.catalog).Fallback(o.catalog)
	}

	plugins := loader.NewPlugin(loader.WithSymbol(cfg.GetString("sources.plugin.symbol")))
	h.mux.Handle("plugin", plugins)

	if root := cfg.GetString("sources.file.root"); root != "" {
		files, err := loader.NewFileSource(root)
		if err != nil {
			return ErrSourceOpen.WithDetail("source", "file").WithCause(err)
		}
		h.closers = append(h.closers, files.Close)
		h.mux.Handle("file", loader.NewManifestLoader(files, factories))
	}

	client := o.redis
	if client == nil && cfg.GetString("sources.redis.addr") != "" {
		owned := redis.NewClient(&redis.Options{
			Addr:     cfg.GetString("sources.redis.addr"),
			Username: cfg.GetString("sources.redis.username"),
			Password: cfg.GetString("sources.redis.password"),
			DB:       cfg.GetInt("sources.redis.db"),
		})
		h.closers = append(h.closers, owned.Close)
		client = owned
	}
	if client != nil {
		var redisOpts []loader.RedisOption
		if prefix := cfg.GetString("sources.redis.prefix"); prefix != "" {
			redisOpts = append(redisOpts, loader.WithKeyPrefix(prefix))
		}
		source := loader.NewRedisSource(client, redisOpts...)
		h.mux.Handle("redis", loader.NewManifestLoader(source, factories))
		h.stores["redis"] = source
	}

	db, driver := o.db, o.dbDriver
	if db == nil && cfg.GetString("sources.sql.dsn") != "" {
		driver = cfg.GetString("sources.sql.driver", "sqlite3")
		owned, err := database.Open(ctx, driver, cfg.GetString("sources.sql.dsn"),
			database.WithRetry(cfg.GetInt("sources.sql.retry_attempts", 3), cfg.GetDuration("sources.sql.retry_delay", time.Second)),
		)
		if err != nil {
			return ErrSourceOpen.WithDetail("source", "sql").WithCause(err)
		}
		h.closers = append(h.closers, owned.Close)
		db = owned
	}
	if db != nil {
		source, err := loader.NewSQLSource(db, driver, loader.WithTable(cfg.GetString("sources.sql.table")))
		if err != nil {
			return ErrSourceOpen.WithDetail("source", "sql").WithCause(err)
		}
		if cfg.GetBool("sources.sql.migrate") {
			if _, err := source.Migrate(ctx); err != nil {
				return ErrSourceOpen.WithDetail("source", "sql").WithCause(err)
			}
		}
		h.sql = source
		h.mux.Handle("sql", loader.NewManifestLoader(source, factories))
		h.stores["sql"] = source
	}

	h.logger.Debug("manifest sources configured", "schemes", h.mux.Schemes())
	return nil
}

func (h *Host) Manager() *feature.Manager {
	return h.manager
}

func (h *Host) Registry() *services.Registry {
	return h.registry
}

// Bus carries the manager lifecycle events.
func (h *Host) Bus() contracts.Bus {
	return h.bus
}

func (h *Host) Logger() contracts.Logger {
	return h.logger
}

// Run preloads the configured locations, then blocks until ctx is done or
// a stop signal arrives, and finally destroys every live scope within the
// shutdown timeout. Preload failures are logged; they surface again when
// the definition is requested.
func (h *Host) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer h.running.Store(false)

	runCtx, stop := signal.NotifyContext(ctx, h.signals...)
	defer stop()

	if len(h.preload) > 0 {
		if err := h.manager.PreloadAll(runCtx, h.preload...); err != nil {
			location, _ := errors.Detail[string](err, "location")
			h.logger.Error("feature app preload failed", "location", location, "error", err)
		} else {
			h.logger.Info("feature apps preloaded", "count", len(h.preload))
		}
	}

	h.logger.Info("feature app host started", "schemes", h.mux.Schemes())
	<-runCtx.Done()
	h.logger.Info("feature app host stopping", "live_scopes", h.manager.LiveScopes())

	return h.Shutdown()
}

// Shutdown destroys every live scope, giving up after the shutdown timeout.
func (h *Host) Shutdown() error {
	done := make(chan error, 1)
	go func() {
		done <- h.manager.Shutdown()
	}()

	timer := time.NewTimer(h.shutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			h.logger.Error("feature apps were not shut down cleanly", "error", err)
		}
		return err
	case <-timer.C:
		return ErrShutdownTimeout.WithDetail("timeout", h.shutdownTimeout.String())
	}
}

// Put stores a manifest in the writable source selected by the location
// scheme.
func (h *Host) Put(ctx context.Context, location string, manifest []byte) error {
	if _, err := loader.ParseManifest(manifest); err != nil {
		return err
	}

	scheme, _, _ := strings.Cut(location, "://")
	store, ok := h.stores[scheme]
	if !ok {
		return ErrNoStore.WithDetail("location", location)
	}
	return store.Put(ctx, location, manifest)
}

// Migrate creates the manifest table of the sql source, if configured.
func (h *Host) Migrate(ctx context.Context) ([]string, error) {
	if h.sql == nil {
		return nil, ErrHostConfig.WithDetail("reason", "no sql source configured")
	}
	return h.sql.Migrate(ctx)
}

// Close stops pending loads and releases the sources the host opened.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		if h.cancelLoads != nil {
			h.cancelLoads()
		}
		var errs []error
		for i := len(h.closers) - 1; i >= 0; i-- {
			if err := h.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		h.closeErr = errors.Join(errs...)
	})
	return h.closeErr
}

func sub(cfg contracts.Config, key string) contracts.Config {
	if s, ok := cfg.GetSub(key); ok {
		return s
	}
	return config.NewMapConfig(nil)
}
