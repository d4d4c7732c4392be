package gameapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/Cheese-bot-client/pkg/chessdto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type inboundFrame struct {
	Type      string         `json:"type"`
	RequestID string         `json:"request_id"`
	Payload   map[string]any `json:"payload"`
}

type outboundFrame struct {
	Event     string `json:"event"`
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload"`
}

// newWSServer answers every frame with reply(frame); a nil reply is dropped.
func newWSServer(t *testing.T, reply func(inboundFrame) *outboundFrame) *WSTransport {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		for {
			var in inboundFrame
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				return
			}
			out := reply(in)
			if out == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	tr := NewWSTransport("ws"+strings.TrimPrefix(srv.URL, "http"), WithWSTimeout(time.Second))
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestWSNewGameAndMove(t *testing.T) {
	tr := newWSServer(t, func(in inboundFrame) *outboundFrame {
		switch in.Type {
		case chessdto.FrameNewGame:
			if in.Payload["player_white_id"] != "alice" || in.Payload["opponent_type"] != "bot" {
				return &outboundFrame{Event: chessdto.EventError, RequestID: in.RequestID, Payload: map[string]string{"detail": "bad body"}}
			}
			return &outboundFrame{Event: chessdto.EventGameCreated, RequestID: in.RequestID, Payload: chessdto.NewGameResponse{GameID: "g1", InitialFEN: startFEN}}
		case chessdto.FrameMakeMove:
			return &outboundFrame{Event: chessdto.EventMoveProcessed, RequestID: in.RequestID, Payload: chessdto.MoveResponse{NewFEN: "fen-after", BotMove: "e7e5"}}
		}
		return nil
	})

	ctx := context.Background()
	game, err := tr.NewGame(ctx, chessdto.NewGameRequest{PlayerWhiteID: "alice", OpponentType: "bot", OpponentLevel: 1500})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if game.GameID != "g1" {
		t.Fatalf("game=%+v", game)
	}
	mv, err := tr.SubmitMove(ctx, chessdto.MoveRequest{GameID: "g1", PlayerID: "alice", UCIMove: "e2e4"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if mv.BotMove != "e7e5" || mv.NewFEN != "fen-after" {
		t.Fatalf("move=%+v", mv)
	}
}

func TestWSErrorEvent(t *testing.T) {
	tr := newWSServer(t, func(in inboundFrame) *outboundFrame {
		return &outboundFrame{Event: chessdto.EventError, RequestID: in.RequestID, Payload: map[string]string{"detail": "not your turn"}}
	})
	_, err := tr.SubmitMove(context.Background(), chessdto.MoveRequest{GameID: "g1"})
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail != "not your turn" || apiErr.Status != 0 {
		t.Fatalf("unexpected %+v", apiErr)
	}
}

func TestWSIgnoresUnmatchedReplies(t *testing.T) {
	tr := newWSServer(t, func(in inboundFrame) *outboundFrame {
		return &outboundFrame{Event: chessdto.EventMoveProcessed, RequestID: "someone-else", Payload: chessdto.MoveResponse{NewFEN: "x"}}
	})
	_, err := tr.SubmitMove(context.Background(), chessdto.MoveRequest{})
	if err == nil {
		t.Fatalf("expected timeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestWSUnexpectedEventIsMalformed(t *testing.T) {
	tr := newWSServer(t, func(in inboundFrame) *outboundFrame {
		return &outboundFrame{Event: "game_over", RequestID: in.RequestID, Payload: map[string]string{}}
	})
	_, err := tr.NewGame(context.Background(), chessdto.NewGameRequest{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestWSMoveWithoutFEN(t *testing.T) {
	tr := newWSServer(t, func(in inboundFrame) *outboundFrame {
		return &outboundFrame{Event: chessdto.EventMoveProcessed, RequestID: in.RequestID, Payload: map[string]string{"bot_move": "e7e5"}}
	})
	mv, err := tr.SubmitMove(context.Background(), chessdto.MoveRequest{GameID: "g1", UCIMove: "e2e4"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if mv.BotMove != "e7e5" || mv.NewFEN != "" {
		t.Fatalf("unexpected %+v", mv)
	}
}

func TestWSClosedTransport(t *testing.T) {
	tr := NewWSTransport("ws://127.0.0.1:1/ws")
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := tr.NewGame(context.Background(), chessdto.NewGameRequest{}); !errors.Is(err, ErrWSClosed) {
		t.Fatalf("expected ErrWSClosed, got %v", err)
	}
}
