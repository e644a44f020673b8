package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/simonhull/audiotag/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, config.Logger{Level: tt.level, Format: "text"})

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v", got)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v", got)
			}
			if got := strings.Contains(out, "warn message"); got != tt.wantWarn {
				t.Errorf("warn logged = %v", got)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, config.Logger{Level: "info", Format: "json"}).Info("wrote tags", "path", "/music/a.mp3")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "wrote tags" || entry["path"] != "/music/a.mp3" || entry["prefix"] != "audiotag" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_Logfmt(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, config.Logger{Level: "info", Format: "logfmt"}).Info("read", "op", "read")

	if !strings.Contains(buf.String(), "op=read") {
		t.Errorf("logfmt output = %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nobody hears this")
}
