package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/shuldan/featurehub/pkg/errors"
)

// textHandler writes one line per record:
//
//	LEVEL message with.key="v" group.key="v" error="..." error_code="FEATURE_0003"
//
// Attributes added with WithAttrs come first. Lines from handlers derived
// from the same root never interleave.
type textHandler struct {
	mu          *sync.Mutex
	w           io.Writer
	preformat   []byte
	groups      []string
	colored     bool
	replaceAttr func(groups []string, a slog.Attr) slog.Attr
	level       slog.Level
}

func newTextHandler(
	w io.Writer,
	colored bool,
	replaceAttr func(groups []string, a slog.Attr) slog.Attr,
	level slog.Level,
) slog.Handler {
	return &textHandler{
		mu:          &sync.Mutex{},
		w:           w,
		colored:     colored,
		replaceAttr: replaceAttr,
		level:       level,
	}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, h.levelLabel(r.Level)...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.preformat...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.groups, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	derived := *h
	derived.preformat = slices.Clip(h.preformat)
	for _, a := range attrs {
		derived.preformat = h.appendAttr(derived.preformat, h.groups, a)
	}
	return &derived
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	derived := *h
	derived.groups = append(slices.Clip(h.groups), name)
	return &derived
}

func (h *textHandler) levelLabel(level slog.Level) string {
	label := getLevelName(level)
	if h.replaceAttr != nil {
		label = h.replaceAttr(nil, slog.String(slog.LevelKey, label)).Value.String()
	}
	if h.colored {
		return colorize(label, level)
	}
	return label
}

func (h *textHandler) appendAttr(buf []byte, groups []string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}
		for _, m := range members {
			buf = h.appendAttr(buf, groups, m)
		}
		return buf
	}

	if h.replaceAttr != nil {
		a = h.replaceAttr(groups, a)
	}
	if a.Key == "" || a.Equal(slog.Attr{}) {
		return buf
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf = fmt.Appendf(buf, " %s=%q", key, a.Value.String())

	if a.Value.Kind() == slog.KindAny {
		if err, ok := a.Value.Any().(error); ok {
			if code := errors.GetErrorCode(err); code != "" {
				buf = fmt.Appendf(buf, " %s_code=%q", key, code)
			}
		}
	}
	return buf
}

func colorize(levelStr string, level slog.Level) string {
	const (
		reset  = "\033[0m"
		blue   = "\033[34m"
		cyan   = "\033[36m"
		green  = "\033[32m"
		yellow = "\033[33m"
		red    = "\033[31m"
		white  = "\033[37m"
		redBg  = "\033[41m"
	)

	switch level {
	case levelTrace:
		return cyan + levelStr + reset
	case slog.LevelDebug:
		return blue + levelStr + reset
	case slog.LevelInfo:
		return green + levelStr + reset
	case slog.LevelWarn:
		return yellow + levelStr + reset
	case slog.LevelError:
		return red + levelStr + reset
	case levelCritical:
		return redBg + white + levelStr + reset
	}

	switch {
	case level < slog.LevelInfo:
		return cyan + levelStr + reset
	case level < slog.LevelWarn:
		return green + levelStr + reset
	case level < slog.LevelError:
		return yellow + levelStr + reset
	default:
		return red + levelStr + reset
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
