// Package gameapi talks to the remote game service that owns game state and
// plays the bot. Two transports carry the same request/response bodies: plain
// HTTP+JSON (fasthttp) and a request/response WebSocket (nhooyr).
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/Cheese-bot-client/internal/config"
	"github.com/park285/Cheese-bot-client/pkg/chessdto"
	"go.uber.org/zap"
)

// Transport is the game service as seen by the coordinator.
type Transport interface {
	NewGame(ctx context.Context, req chessdto.NewGameRequest) (*chessdto.NewGameResponse, error)
	SubmitMove(ctx context.Context, req chessdto.MoveRequest) (*chessdto.MoveResponse, error)
	Close() error
}

// ErrMalformedResponse marks a 2xx reply whose body could not serve as a result.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a structured rejection by the game service.
type APIError struct {
	Status int // HTTP status; 0 on the WebSocket transport
	Detail string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("game api error: status=%d detail=%s", e.Status, e.Detail)
	}
	return "game api error: " + e.Detail
}

// IsAPIError reports whether err carries a service rejection and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewTransport builds the transport selected by cfg.
func NewTransport(cfg *config.AppConfig, logger *zap.Logger) (Transport, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	headers := clientHeaders(cfg.ClientID)
	switch cfg.Transport {
	case config.TransportWS:
		return NewWSTransport(cfg.GameServerWSURL,
			WithWSTimeout(cfg.RequestTimeout),
			WithWSHeaderProvider(headers),
			WithWSLogger(logger),
		), nil
	case config.TransportHTTP, "":
		return NewClient(cfg.GameServerURL,
			WithTimeout(cfg.RequestTimeout),
			WithHeaderProvider(headers),
			WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func clientHeaders(clientID string) HeaderProvider {
	return func() map[string]string {
		h := map[string]string{}
		if clientID != "" {
			h["X-Client-Id"] = clientID
		}
		return h
	}
}

func validateNewGame(resp *chessdto.NewGameResponse) error {
	if resp.GameID == "" || resp.InitialFEN == "" {
		return fmt.Errorf("%w: game_id and initial_fen are required", ErrMalformedResponse)
	}
	return nil
}

// validateMove only normalises: a reply may carry bot_move, new_fen, both or
// neither (the coordinator derives the position from the moves it applied).
func validateMove(resp *chessdto.MoveResponse) error {
	resp.NewFEN = strings.TrimSpace(resp.NewFEN)
	resp.BotMove = strings.TrimSpace(resp.BotMove)
	if strings.ContainsAny(resp.BotMove, " \t\n") {
		return fmt.Errorf("%w: bot_move %q", ErrMalformedResponse, resp.BotMove)
	}
	return nil
}

func computeDeadline(ctx context.Context, timeout time.Duration) time.Time {
	clientDL := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
