package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/park285/Cheese-bot-client/pkg/chessdto"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", WithTimeout(2*time.Second), WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-Client-Id": "client-1", " ": "ignored"}
	}))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewGameSendsBody(t *testing.T) {
	var got chessdto.NewGameRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/game/new" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Client-Id") != "client-1" {
			t.Errorf("missing client header")
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("missing request id")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chessdto.NewGameResponse{GameID: "g1", InitialFEN: startFEN})
	})

	resp, err := c.NewGame(context.Background(), chessdto.NewGameRequest{
		PlayerWhiteID: "alice",
		OpponentType:  chessdto.OpponentTypeBot,
		OpponentLevel: 1500,
	})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if resp.GameID != "g1" || resp.InitialFEN != startFEN {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got.PlayerWhiteID != "alice" || got.OpponentType != "bot" || got.OpponentLevel != 1500 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSubmitMoveDecodesBotMove(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.MoveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GameID != "g1" || req.PlayerID != "alice" || req.UCIMove != "e2e4" {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"new_fen":"fen-after","bot_move":"e7e5"}`))
	})
	resp, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{GameID: "g1", PlayerID: "alice", UCIMove: "e2e4"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.NewFEN != "fen-after" || resp.BotMove != "e7e5" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestErrorDetailBecomesAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"not your turn"}`))
	})
	_, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{GameID: "g1"})
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Detail != "not your turn" {
		t.Fatalf("unexpected %+v", apiErr)
	}
}

func TestErrorWithoutDetailKeepsBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := c.NewGame(context.Background(), chessdto.NewGameRequest{})
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail != "upstream down" {
		t.Fatalf("detail=%q", apiErr.Detail)
	}
}

func TestMalformedBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if _, ok := IsAPIError(err); ok {
		t.Fatalf("malformed body is not a server rejection")
	}
}

func TestMissingFieldsAreMalformed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"game_id":"g1"}`))
	})
	_, err := c.NewGame(context.Background(), chessdto.NewGameRequest{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestMoveReplyFieldsAreOptional(t *testing.T) {
	cases := []struct {
		name string
		body string
		want chessdto.MoveResponse
	}{
		{"bot move only", `{"bot_move":"e7e5"}`, chessdto.MoveResponse{BotMove: "e7e5"}},
		{"fen only", `{"new_fen":"` + startFEN + `"}`, chessdto.MoveResponse{NewFEN: startFEN}},
		{"empty object", `{}`, chessdto.MoveResponse{}},
		{"empty body", ``, chessdto.MoveResponse{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			got, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{GameID: "g1", UCIMove: "e2e4"})
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if *got != tc.want {
				t.Fatalf("got %+v want %+v", *got, tc.want)
			}
		})
	}
}

func TestMoveReplyWithGarbledBotMove(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bot_move":"e7 e5"}`))
	})
	_, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(srv.URL, WithTimeout(100*time.Millisecond))
	started := time.Now()
	_, err := c.SubmitMove(context.Background(), chessdto.MoveRequest{})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if _, ok := IsAPIError(err); ok {
		t.Fatalf("timeout is not a server rejection: %v", err)
	}
	if time.Since(started) > 2*time.Second {
		t.Fatalf("timeout not honoured: %v", time.Since(started))
	}
}

func TestCanceledContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.NewGame(ctx, chessdto.NewGameRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
