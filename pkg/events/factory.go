package events

import (
	"context"
	"reflect"
	"time"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/logger"
)

const defaultPublishTimeout = 5 * time.Second

func NewDefaultPanicHandler(l contracts.Logger) PanicHandler {
	return &defaultPanicHandler{logger: l}
}

func NewDefaultErrorHandler(l contracts.Logger) ErrorHandler {
	return &defaultErrorHandler{logger: l}
}

// New creates an event bus. Without handlers, listener panics and errors
// are logged through the configured logger.
func New(opts ...Option) contracts.Bus {
	cfg := &busConfig{
		workerCount:    1,
		publishTimeout: defaultPublishTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil && (cfg.panicHandler == nil || cfg.errorHandler == nil) {
		cfg.logger, _ = logger.NewLogger()
	}
	if cfg.panicHandler == nil {
		cfg.panicHandler = NewDefaultPanicHandler(cfg.logger)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = NewDefaultErrorHandler(cfg.logger)
	}

	b := &bus{
		listeners:      make(map[reflect.Type][]*listener),
		panicHandler:   cfg.panicHandler,
		errorHandler:   cfg.errorHandler,
		asyncMode:      cfg.asyncMode,
		workerCount:    cfg.workerCount,
		publishTimeout: cfg.publishTimeout,
	}

	if cfg.asyncMode {
		b.startWorkers()
	}

	return b
}

// On subscribes fn to events of type T.
func On[T any](b contracts.Bus, fn func(context.Context, T) error) error {
	return b.Subscribe((*T)(nil), fn)
}
