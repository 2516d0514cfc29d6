// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/axon-labs/axon/axon"
)

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return gethlog.DiscardHandler()
}

// NewHandler builds a handler writing to w in the configured format.
func NewHandler(w io.Writer, cfg axon.LogConfig) (slog.Handler, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	switch cfg.Format {
	case "", "terminal":
		return gethlog.NewTerminalHandlerWithLevel(w, level, useColor(w)), nil
	case "json":
		return gethlog.JSONHandlerWithLevel(w, level), nil
	case "logfmt":
		return gethlog.LogfmtHandlerWithLevel(w, level), nil
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return gethlog.LevelTrace, nil
	case "debug":
		return gethlog.LevelDebug, nil
	case "", "info":
		return gethlog.LevelInfo, nil
	case "warn", "warning":
		return gethlog.LevelWarn, nil
	case "error":
		return gethlog.LevelError, nil
	case "crit":
		return gethlog.LevelCrit, nil
	default:
		return 0, errors.Errorf("unknown log level %q", s)
	}
}

// Setup installs a stderr handler as the root logger.
func Setup(cfg axon.LogConfig) error {
	h, err := NewHandler(os.Stderr, cfg)
	if err != nil {
		return err
	}
	SetDefault(h)
	return nil
}

// SetDefault replaces the root handler.
func SetDefault(h slog.Handler) {
	gethlog.SetDefault(gethlog.NewLogger(h))
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
