// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over the go-ethereum structured logger.
// Loggers created by WithContext keep following the handler installed by SetHandler,
// so package level loggers may be declared before the process configures logging.
package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger is the key/value structured logger.
type Logger = ethlog.Logger

// Levels re-exported for callers that configure verbosity.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var (
	current atomic.Pointer[slog.Handler]
	root    Logger
)

func init() {
	SetHandler(ethlog.DiscardHandler())
	root = ethlog.NewLogger(&swapHandler{})
}

// SetHandler replaces the handler every logger of this package writes to.
func SetHandler(h slog.Handler) {
	current.Store(&h)
}

// Root returns the root logger.
func Root() Logger {
	return root
}

// WithContext returns a logger carrying the given key/value pairs.
func WithContext(ctx ...any) Logger {
	return root.With(ctx...)
}

// TerminalHandler returns a human readable handler filtering records below lvl. A *slog.LevelVar
// lets the level change at runtime.
func TerminalHandler(w io.Writer, lvl slog.Leveler, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor)
}

// JSONHandler returns a handler writing one JSON object per record, filtering below lvl.
func JSONHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, lvl)
}

// LevelFromVerbosity maps the 0 (crit) .. 5 (trace) verbosity scale to a level.
func LevelFromVerbosity(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// swapHandler forwards records to the handler installed at the time of logging.
type swapHandler struct {
	attrs []slog.Attr
}

func (s *swapHandler) target() slog.Handler {
	h := *current.Load()
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	return h
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*current.Load()).Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.target().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(append(merged, s.attrs...), attrs...)
	return &swapHandler{attrs: merged}
}

func (s *swapHandler) WithGroup(_ string) slog.Handler {
	return s
}
