package chessbuilder

import (
    "bytes"
    "fmt"
    "path/filepath"
    "testing"
    "time"

    miniredis "github.com/alicebob/miniredis/v2"
    "github.com/park285/Cheese-bot-client/internal/boardview"
    "github.com/park285/Cheese-bot-client/internal/config"
)

func baseConfig(t *testing.T) *config.AppConfig {
    t.Helper()
    return &config.AppConfig{
        GameServerURL:       "http://127.0.0.1:1",
        Transport:           config.TransportHTTP,
        RequestTimeout:      time.Second,
        ClientID:            "client-1",
        BotLevel:            "level3",
        BoardRenderer:       config.RendererText,
        BoardPNGPath:        filepath.Join(t.TempDir(), "board.png"),
        EventsChannelPrefix: "cheese:game",
    }
}

func TestNewTextClient(t *testing.T) {
    cfg := baseConfig(t)
    deps, err := New(cfg, &bytes.Buffer{}, nil)
    if err != nil { t.Fatalf("New: %v", err) }
    t.Cleanup(func() { _ = deps.Close() })

    if deps.DefaultBot.Elo != 1000 { t.Fatalf("bot=%+v", deps.DefaultBot) }
    if _, ok := deps.Renderer.(*boardview.TextRenderer); !ok { t.Fatalf("renderer=%T", deps.Renderer) }
    if deps.Sink != nil { t.Fatalf("sink should be off without EVENTS_REDIS_URL") }
    if deps.Coordinator.Snapshot().HasSession() { t.Fatalf("fresh client has a session") }
}

func TestNewWithRedisSinkAndBothRenderers(t *testing.T) {
    mr, err := miniredis.Run()
    if err != nil { t.Fatalf("miniredis: %v", err) }
    t.Cleanup(func() { mr.Close() })

    cfg := baseConfig(t)
    cfg.BoardRenderer = config.RendererBoth
    cfg.EventsRedisURL = fmt.Sprintf("redis://%s/0", mr.Addr())
    deps, err := New(cfg, &bytes.Buffer{}, nil)
    if err != nil { t.Fatalf("New: %v", err) }
    if deps.Sink == nil { t.Fatalf("expected redis sink") }
    if err := deps.Close(); err != nil { t.Fatalf("Close: %v", err) }
}

func TestNewRejectsUnknownLevel(t *testing.T) {
    cfg := baseConfig(t)
    cfg.BotLevel = "grandpa"
    if _, err := New(cfg, nil, nil); err == nil {
        t.Fatalf("expected error")
    }
}
