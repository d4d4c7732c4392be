package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TransportHTTP = "http"
	TransportWS   = "ws"

	RendererText = "text"
	RendererPNG  = "png"
	RendererBoth = "both"
)

type AppConfig struct {
	GameServerURL   string
	GameServerWSURL string
	Transport       string
	RequestTimeout  time.Duration

	ClientID string
	PlayerID string
	BotLevel string

	BoardRenderer string
	BoardPNGPath  string

	MessagesDir string

	EventsRedisURL      string
	EventsChannelPrefix string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Transport:           TransportHTTP,
		RequestTimeout:      15 * time.Second,
		BotLevel:            "1500",
		BoardRenderer:       RendererText,
		BoardPNGPath:        "board.png",
		EventsChannelPrefix: "cheese:game",
	}

	cfg.GameServerURL = strings.TrimSpace(os.Getenv("GAME_SERVER_URL"))
	cfg.GameServerWSURL = strings.TrimSpace(os.Getenv("GAME_SERVER_WS_URL"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("GAME_TRANSPORT"))); v != "" {
		cfg.Transport = v
	}
	if v := strings.TrimSpace(os.Getenv("GAME_REQUEST_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = time.Duration(n) * time.Millisecond
		}
	}

	cfg.ClientID = strings.TrimSpace(os.Getenv("CLIENT_ID"))
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	cfg.PlayerID = strings.TrimSpace(os.Getenv("PLAYER_ID"))
	if v := strings.TrimSpace(os.Getenv("BOT_LEVEL")); v != "" {
		cfg.BotLevel = v
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("BOARD_RENDERER"))); v != "" {
		cfg.BoardRenderer = v
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_PNG_PATH")); v != "" {
		cfg.BoardPNGPath = v
	}

	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	cfg.EventsRedisURL = strings.TrimSpace(os.Getenv("EVENTS_REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("EVENTS_CHANNEL_PREFIX")); v != "" {
		cfg.EventsChannelPrefix = v
	}

	if cfg.GameServerURL == "" {
		return nil, errors.New("GAME_SERVER_URL is required")
	}
	switch cfg.Transport {
	case TransportHTTP:
	case TransportWS:
		if cfg.GameServerWSURL == "" {
			return nil, errors.New("GAME_SERVER_WS_URL is required when GAME_TRANSPORT=ws")
		}
	default:
		return nil, errors.New("GAME_TRANSPORT must be http or ws")
	}
	switch cfg.BoardRenderer {
	case RendererText, RendererPNG, RendererBoth:
	default:
		return nil, errors.New("BOARD_RENDERER must be text, png or both")
	}

	return cfg, nil
}
