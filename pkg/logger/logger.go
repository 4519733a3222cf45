package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shuldan/featurehub/pkg/contracts"
)

var oddArgsWarning sync.Once

type sLogger struct {
	*slog.Logger
}

var _ contracts.Logger = (*sLogger)(nil)

// NewLogger builds a slog-backed logger. Without options it writes
// uncoloured text at info level to stdout.
func NewLogger(opts ...Option) (contracts.Logger, error) {
	cfg := &config{
		level:     slog.LevelInfo,
		json:      false,
		addSource: false,
		writer:    os.Stdout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.replaceAttr == nil {
		WithDefaultReplaceAttr()(cfg)
	}

	var handler slog.Handler
	if cfg.json {
		handlerOpts := &slog.HandlerOptions{
			Level:       cfg.level,
			AddSource:   cfg.addSource,
			ReplaceAttr: cfg.replaceAttr,
		}
		handler = slog.NewJSONHandler(cfg.writer, handlerOpts)
	} else {
		isColored := cfg.wantColor && isTerminal(cfg.writer)
		handler = newTextHandler(cfg.writer, isColored, cfg.replaceAttr, cfg.level)
	}

	return &sLogger{Logger: slog.New(handler)}, nil
}

func (l *sLogger) Trace(msg string, args ...any) {
	l.log(levelTrace, msg, args)
}

func (l *sLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *sLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *sLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *sLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
}

func (l *sLogger) Critical(msg string, args ...any) {
	l.log(levelCritical, msg, args)
}

// With binds attributes once; the text handler preformats them.
func (l *sLogger) With(args ...any) contracts.Logger {
	return &sLogger{
		Logger: slog.New(l.Handler().WithAttrs(convertArgs(args))),
	}
}

// log converts args only for enabled levels; the manager traces every
// scope lookup, which is off in production. The record's source is the
// caller of Info, Warn and the rest.
func (l *sLogger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(convertArgs(args)...)
	_ = l.Handler().Handle(ctx, r)
}

// convertArgs turns alternating key/value args into attributes. A slog.Attr
// among them is taken as is.
func convertArgs(args []any) []slog.Attr {
	var attrs []slog.Attr
	for i := 0; i < len(args); {
		if attr, ok := args[i].(slog.Attr); ok {
			attrs = append(attrs, attr)
			i++
			continue
		}

		if i+1 == len(args) {
			oddArgsWarning.Do(func() {
				slog.Warn("logger called with odd number of args", slog.Any("args", args))
			})
			attrs = append(attrs, slog.Any("MISSING_KEY", args[i]))
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("NON_STRING_KEY_%T", args[i])
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
		i += 2
	}
	return attrs
}
