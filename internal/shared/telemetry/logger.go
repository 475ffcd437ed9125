package telemetry

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, "info")
)

// Configure swaps the process logger. Level is one of debug, info, warn, error.
func Configure(w io.Writer, lvl string) {
	l := newLogger(w, lvl)
	mu.Lock()
	logger = l
	mu.Unlock()
}

func newLogger(w io.Writer, lvl string) kitlog.Logger {
	l := kitlog.NewJSONLogger(kitlog.NewSyncWriter(w))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(l, allow(lvl))
}

func allow(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(level.Debug, msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(level.Info, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(level.Warn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(level.Error, msg, fields)
}

func write(at func(kitlog.Logger) kitlog.Logger, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "ts" || k == "level" || k == "msg" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2+2*len(keys))
	kv = append(kv, "msg", msg)
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		kv = append(kv, k, v)
	}
	_ = at(l).Log(kv...)
}
