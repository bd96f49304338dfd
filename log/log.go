// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides structured leveled logging on top of log/slog.
package log

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12

	// legacy numeric verbosity levels, highest is most verbose
	LegacyLevelCrit  = 0
	LegacyLevelError = 1
	LegacyLevelWarn  = 2
	LegacyLevelInfo  = 3
	LegacyLevelDebug = 4
	LegacyLevelTrace = 5
)

// FromLegacyLevel converts a legacy verbosity number into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case LegacyLevelCrit:
		return LevelCrit
	case LegacyLevelError:
		return LevelError
	case LegacyLevelWarn:
		return LevelWarn
	case LegacyLevelInfo:
		return LevelInfo
	case LegacyLevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Logger is the leveled structured logger used across the repo.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus the given attributes.
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// Handler returns the underlying handler of the inner logger.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger creates a new logger writing to the given handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

func (l *logger) write(level slog.Level, msg string, attrs ...any) {
	l.inner.Log(context.Background(), level, msg, attrs...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if lg, ok := l.(*logger); ok {
		root.Store(lg)
	} else {
		root.Store(&logger{slog.New(l.Handler())})
	}
}

// Root returns the root logger.
func Root() Logger {
	return root.Load()
}

// WithContext returns a logger bound to the root handler with the given attributes.
// Packages use it to tag their log lines, e.g. log.WithContext("pkg", "pool").
func WithContext(ctx ...any) Logger {
	return &ctxLogger{ctx}
}

// ctxLogger resolves the root logger at call time so that WithContext can be
// used in package-level vars before the cmd layer installs the real handler.
type ctxLogger struct {
	ctx []any
}

func (c *ctxLogger) resolve() Logger  { return Root().With(c.ctx...) }
func (c *ctxLogger) With(ctx ...any) Logger {
	return &ctxLogger{append(append([]any{}, c.ctx...), ctx...)}
}
func (c *ctxLogger) Handler() slog.Handler     { return Root().Handler() }
func (c *ctxLogger) Trace(msg string, ctx ...any) { c.resolve().Trace(msg, ctx...) }
func (c *ctxLogger) Debug(msg string, ctx ...any) { c.resolve().Debug(msg, ctx...) }
func (c *ctxLogger) Info(msg string, ctx ...any)  { c.resolve().Info(msg, ctx...) }
func (c *ctxLogger) Warn(msg string, ctx ...any)  { c.resolve().Warn(msg, ctx...) }
func (c *ctxLogger) Error(msg string, ctx ...any) { c.resolve().Error(msg, ctx...) }
func (c *ctxLogger) Crit(msg string, ctx ...any)  { c.resolve().Crit(msg, ctx...) }

const levelMaxVerbosity slog.Level = math.MinInt
