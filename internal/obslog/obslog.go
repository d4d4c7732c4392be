package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 전역 로거. 파일 + 디버그 링이 기본, 콘솔은 프롬프트를 깨므로 opt-in.
var (
	mu           sync.RWMutex
	globalLogger = zap.NewNop()
	globalRing   *Ring
)

// L returns the process logger (a no-op logger until InitFromEnv runs).
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// DebugRing returns the in-memory ring attached by InitFromEnv, or nil.
func DebugRing() *Ring {
	mu.RLock()
	defer mu.RUnlock()
	return globalRing
}

// Options describe where log lines go.
type Options struct {
	Level    zapcore.Level
	Format   string // legacy | json | console
	Console  bool
	File     string // empty disables the file sink
	RingSize int
	Caller   bool
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_TO_CONSOLE, LOG_TO_FILE,
// LOG_FILE, LOG_RING_SIZE and LOG_CALLER.
func OptionsFromEnv() Options {
	o := Options{
		Level:    parseLevel(os.Getenv("LOG_LEVEL")),
		Format:   normalizeFormat(os.Getenv("LOG_FORMAT")),
		Console:  envBool("LOG_TO_CONSOLE", false),
		RingSize: 200,
		Caller:   envBool("LOG_CALLER", false),
	}
	if envBool("LOG_TO_FILE", true) {
		o.File = filepath.Join("logs", "client.log")
		if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
			o.File = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_RING_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			o.RingSize = n
		}
	}
	// legacy 포맷은 항상 호출 위치를 찍는다
	if o.Format == "legacy" {
		o.Caller = true
	}
	return o
}

// InitFromEnv builds the logger from OptionsFromEnv and installs it globally.
func InitFromEnv() error {
	logger, ring, err := Build(OptionsFromEnv())
	if err != nil {
		return err
	}
	mu.Lock()
	globalLogger, globalRing = logger, ring
	mu.Unlock()
	return nil
}

// Build assembles a tee of the enabled sinks. With every sink disabled it
// falls back to a development encoder on stdout.
func Build(o Options) (*zap.Logger, *Ring, error) {
	var cores []zapcore.Core

	if o.Console {
		cores = append(cores, zapcore.NewCore(encoderFor(o.Format), zapcore.Lock(os.Stdout), o.Level))
	}
	if o.File != "" {
		f, err := openLogFile(o.File)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(encoderFor(o.Format), zapcore.AddSync(f), o.Level))
	}
	var ring *Ring
	if o.RingSize > 0 {
		ring = NewRing(o.RingSize, encoderFor("legacy"), o.Level)
		cores = append(cores, ring)
	}
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stdout), o.Level))
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if o.Caller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), ring, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func encoderFor(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	switch format {
	case "json":
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	case "console":
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	default:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.ConsoleSeparator = " | "
		return zapcore.NewConsoleEncoder(cfg)
	}
}

func normalizeFormat(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "json", "console":
		return f
	}
	return "legacy"
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		if strings.EqualFold(strings.TrimSpace(s), "warning") {
			return zapcore.WarnLevel
		}
		return zapcore.InfoLevel
	}
	return lvl
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
