package events

import (
	"time"

	"github.com/shuldan/featurehub/pkg/contracts"
)

type PanicHandler interface {
	Handle(event any, listener any, panicValue any, stack []byte)
}

type ErrorHandler interface {
	Handle(event any, listener any, err error)
}

type Option func(*busConfig)

type busConfig struct {
	panicHandler   PanicHandler
	errorHandler   ErrorHandler
	logger         contracts.Logger
	asyncMode      bool
	workerCount    int
	publishTimeout time.Duration
}

func WithPanicHandler(h PanicHandler) Option {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}

// WithLogger sets the logger used by the default panic and error handlers.
func WithLogger(l contracts.Logger) Option {
	return func(c *busConfig) {
		c.logger = l
	}
}

func WithAsyncMode(async bool) Option {
	return func(c *busConfig) {
		c.asyncMode = async
	}
}

func WithWorkerCount(count int) Option {
	return func(c *busConfig) {
		if count < 1 {
			count = 1
		}
		c.workerCount = count
	}
}

// WithPublishTimeout bounds how long an async Publish waits for queue space.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *busConfig) {
		if d <= 0 {
			d = defaultPublishTimeout
		}
		c.publishTimeout = d
	}
}

// FromConfig reads the events section of a host configuration: async,
// workers and publish_timeout.
func FromConfig(cfg contracts.Config) []Option {
	if cfg == nil {
		return nil
	}

	var opts []Option
	if cfg.Has("async") {
		opts = append(opts, WithAsyncMode(cfg.GetBool("async")))
	}
	if cfg.Has("workers") {
		opts = append(opts, WithWorkerCount(cfg.GetInt("workers")))
	}
	if cfg.Has("publish_timeout") {
		opts = append(opts, WithPublishTimeout(cfg.GetDuration("publish_timeout")))
	}
	return opts
}
