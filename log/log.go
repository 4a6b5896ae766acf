// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled, structured loggers on top of go-ethereum's log.
//
// Package level loggers are created with WithContext and always write through the
// current root logger, so they pick up the handler installed by the command line.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, aliased from go-ethereum.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	With(ctx ...any) Logger
	Enabled(ctx context.Context, level slog.Level) bool

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type logger struct {
	ctx []any
}

// WithContext returns a logger carrying ctx in every record.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

// Root returns the root logger.
func Root() Logger {
	return &logger{}
}

// SetDefault installs h as the handler of the root logger.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

func (l *logger) inner() ethlog.Logger {
	if len(l.ctx) == 0 {
		return ethlog.Root()
	}
	return ethlog.Root().With(l.ctx...)
}

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &logger{ctx: append(merged, ctx...)}
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Enabled(ctx, level)
}

func (l *logger) Trace(msg string, ctx ...any) { l.inner().Trace(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.inner().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner().Error(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.inner().Crit(msg, ctx...) }

// NewHandler creates a handler writing to wr, filtered by verbosity.
// verbosity uses the legacy 0 (crit) to 5 (trace) scale.
func NewHandler(wr io.Writer, verbosity int, useColor, jsonFormat bool) slog.Handler {
	var h slog.Handler
	if jsonFormat {
		h = ethlog.JSONHandler(wr)
	} else {
		h = ethlog.NewTerminalHandler(wr, useColor)
	}
	glog := ethlog.NewGlogHandler(h)
	glog.Verbosity(ethlog.FromLegacyLevel(verbosity))
	return glog
}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}
