package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "https://chess.example.test")
	t.Setenv("GAME_TRANSPORT", "")
	t.Setenv("GAME_REQUEST_TIMEOUT_MS", "")
	t.Setenv("CLIENT_ID", "")
	t.Setenv("BOT_LEVEL", "")
	t.Setenv("BOARD_RENDERER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport != TransportHTTP {
		t.Fatalf("transport=%q", cfg.Transport)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("timeout=%v", cfg.RequestTimeout)
	}
	if cfg.ClientID == "" {
		t.Fatalf("expected generated client id")
	}
	if cfg.BotLevel != "1500" {
		t.Fatalf("bot level=%q", cfg.BotLevel)
	}
	if cfg.BoardRenderer != RendererText {
		t.Fatalf("renderer=%q", cfg.BoardRenderer)
	}
}

func TestLoadRequiresServerURL(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "  ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without GAME_SERVER_URL")
	}
}

func TestLoadWSRequiresURL(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "https://chess.example.test")
	t.Setenv("GAME_TRANSPORT", "ws")
	t.Setenv("GAME_SERVER_WS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without GAME_SERVER_WS_URL")
	}

	t.Setenv("GAME_SERVER_WS_URL", "wss://chess.example.test/ws")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport != TransportWS {
		t.Fatalf("transport=%q", cfg.Transport)
	}
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "https://chess.example.test")
	t.Setenv("GAME_TRANSPORT", "")
	t.Setenv("BOARD_RENDERER", "")
	t.Setenv("GAME_REQUEST_TIMEOUT_MS", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("timeout=%v", cfg.RequestTimeout)
	}

	t.Setenv("GAME_REQUEST_TIMEOUT_MS", "2500")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RequestTimeout != 2500*time.Millisecond {
		t.Fatalf("timeout=%v", cfg.RequestTimeout)
	}
}

func TestLoadRejectsUnknownRenderer(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "https://chess.example.test")
	t.Setenv("GAME_TRANSPORT", "")
	t.Setenv("BOARD_RENDERER", "svg")
	if _, err := Load(); err == nil {
		t.Fatalf("expected renderer error")
	}
}
