package host

import (
	"database/sql"
	"os"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/loader"
)

type Option func(*hostOptions)

type hostOptions struct {
	logger   contracts.Logger
	catalog  *loader.Catalog
	redis    redis.UniversalClient
	db       *sql.DB
	dbDriver string
	signals  []os.Signal
}

func defaultOptions() *hostOptions {
	return &hostOptions{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// WithLogger replaces the logger built from the logger config section.
func WithLogger(l contracts.Logger) Option {
	return func(o *hostOptions) {
		o.logger = l
	}
}

// WithCatalog serves compiled-in modules under the "builtin" scheme and
// for locations without a scheme.
func WithCatalog(c *loader.Catalog) Option {
	return func(o *hostOptions) {
		o.catalog = c
	}
}

// WithRedisClient uses client for the "redis" scheme instead of dialing
// sources.redis. The host does not close it.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *hostOptions) {
		o.redis = client
	}
}

// WithDB uses db for the "sql" scheme instead of opening sources.sql. The
// host does not close it.
func WithDB(db *sql.DB, driver string) Option {
	return func(o *hostOptions) {
		o.db = db
		o.dbDriver = driver
	}
}

// WithSignals replaces the signals that stop Run.
func WithSignals(signals ...os.Signal) Option {
	return func(o *hostOptions) {
		o.signals = signals
	}
}
