package consolepresenter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/park285/Cheese-bot-client/internal/coordinator"
	"github.com/park285/Cheese-bot-client/internal/roster"
)

func TestStatusShowsPlayersAndBusyIndicator(t *testing.T) {
	f := NewFormatter()
	snap := coordinator.Snapshot{
		State:    coordinator.StatePending,
		PlayerID: "alice",
		Bot:      roster.Default(),
		Busy:     true,
		Status:   "Sending move to the server and waiting for the bot...",
		Opening:  "C20 King's Pawn Game",
	}
	got := f.Status(snap)
	lines := strings.Split(got, "\n")
	if lines[0] != "♟️ alice vs Bot (1500 Elo)" {
		t.Fatalf("header=%q", lines[0])
	}
	if !strings.HasPrefix(lines[1], busyIndicator) {
		t.Fatalf("missing busy indicator: %q", lines[1])
	}
	if strings.Contains(got, "C20") {
		t.Fatalf("opening shown while busy: %q", got)
	}
}

func TestStatusOffersResetWhenFinished(t *testing.T) {
	f := NewFormatter()
	got := f.Status(coordinator.Snapshot{
		State:          coordinator.StateFinished,
		PlayerID:       "alice",
		Bot:            roster.Default(),
		Status:         "White is checkmated",
		ResetAvailable: true,
	})
	if !strings.Contains(got, "White is checkmated") || !strings.Contains(got, resetAffordanceHint) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestErrorMessages(t *testing.T) {
	f := NewFormatter()
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: e2-e5", coordinator.ErrLocalIllegalMove), "Illegal move"},
		{coordinator.ErrBusy, "still thinking"},
		{&coordinator.ServerRejectedError{Detail: "not your turn", Status: 400}, "Server error: not your turn."},
		{&coordinator.TransportError{Op: "submit move", Err: errors.New("timeout")}, "Connection error: timeout."},
		{&coordinator.SessionStartError{Err: errors.New("refused")}, "Could not start the game: refused"},
	}
	for _, tc := range cases {
		if got := f.Error(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("Error(%v)=%q, want %q", tc.err, got, tc.want)
		}
	}
	if f.Error(nil) != "" {
		t.Fatalf("nil error should render empty")
	}
}

func TestMoveSummary(t *testing.T) {
	f := NewFormatter()
	out := &coordinator.MoveOutcome{PlayerUCI: "e2e4", PlayerSAN: "e4", BotUCI: "e7e5", BotSAN: "e5"}
	got := f.Move(out, coordinator.Snapshot{Moves: []string{"e2e4", "e7e5"}})
	if got != "You: e4 | Bot: e5\n• recent: e2e4 e7e5" {
		t.Fatalf("got %q", got)
	}

	out = &coordinator.MoveOutcome{PlayerUCI: "e2e4", BotRejected: true}
	if got := f.Move(out, coordinator.Snapshot{}); got != "You: e2e4 | Bot: (invalid reply ignored)" {
		t.Fatalf("got %q", got)
	}
}

func TestLevelsMarksCurrent(t *testing.T) {
	got := NewFormatter().Levels(roster.All(), roster.Default())
	if !strings.Contains(got, "* level5") {
		t.Fatalf("current level not marked:\n%s", got)
	}
}

func TestPresenterSkipsBlank(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)
	if err := p.Print("  \n"); err != nil {
		t.Fatal(err)
	}
	if err := p.Print("hello\n"); err != nil {
		t.Fatal(err)
	}
	if err := p.Lines(nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n(no log lines yet)\n" {
		t.Fatalf("got %q", buf.String())
	}
}
