// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ik5/pcmmix/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level config.LogLevel
		want  slog.Level
	}{
		{config.LogDebug, slog.LevelDebug},
		{config.LogInfo, slog.LevelInfo},
		{config.LogWarn, slog.LevelWarn},
		{config.LogError, slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			l := NewLogger(&bytes.Buffer{}, tt.level)
			if !l.Enabled(context.Background(), tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && l.Enabled(context.Background(), tt.want-4) {
				t.Errorf("level %v should be disabled", tt.want-4)
			}
		})
	}
}

func TestNewLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, config.LogInfo).Info("sound loaded", "index", 3)
	if !strings.Contains(buf.String(), "msg=\"sound loaded\" index=3") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
