// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"io"
	"log/slog"

	"github.com/ik5/pcmmix/internal/config"
)

// NewLogger returns a text logger on w filtered at level.
func NewLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
