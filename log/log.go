// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the structured logger of the node, backed by go-ethereum's slog based logger.
package log

import (
	gethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// WithContext returns a logger that prefixes every record with ctx.
// The root handler is resolved on every call, so package level loggers
// follow later changes made by SetDefault.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

type contextLogger struct {
	ctx []any
}

func (l *contextLogger) target() gethlog.Logger {
	if len(l.ctx) == 0 {
		return gethlog.Root()
	}
	return gethlog.Root().With(l.ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.target().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.target().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.target().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.target().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.target().Error(msg, ctx...) }

func (l *contextLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &contextLogger{ctx: append(merged, ctx...)}
}
