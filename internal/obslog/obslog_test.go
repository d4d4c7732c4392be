package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestOptionsFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_TO_CONSOLE", "LOG_TO_FILE", "LOG_FILE", "LOG_RING_SIZE", "LOG_CALLER"} {
		t.Setenv(k, "")
	}
	o := OptionsFromEnv()
	if o.Level != zapcore.InfoLevel || o.Format != "legacy" || o.Console {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if o.File != filepath.Join("logs", "client.log") || o.RingSize != 200 || !o.Caller {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func TestOptionsFromEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_TO_FILE", "false")
	t.Setenv("LOG_RING_SIZE", "0")
	t.Setenv("LOG_CALLER", "")
	o := OptionsFromEnv()
	if o.Level != zapcore.WarnLevel || o.Format != "json" || o.File != "" || o.RingSize != 0 || o.Caller {
		t.Fatalf("unexpected options: %+v", o)
	}
}

func TestBuildWritesFileAndRing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.log")
	logger, ring, err := Build(Options{Level: zapcore.DebugLevel, Format: "legacy", File: path, RingSize: 8})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Info("session_started")
	_ = logger.Sync()

	if ring == nil || len(ring.Lines()) != 1 {
		t.Fatalf("ring lines: %v", ring)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "session_started") || !strings.Contains(string(data), " | ") {
		t.Fatalf("log file = %q", data)
	}
}
