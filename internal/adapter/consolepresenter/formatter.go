package consolepresenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/Cheese-bot-client/internal/coordinator"
	"github.com/park285/Cheese-bot-client/internal/roster"
)

const (
	helpTitle           = "♞ Commands"
	levelsTitle         = "♜ Bot levels"
	recentMovesLimit    = 6
	busyIndicator       = "⏳ "
	resetAffordanceHint = "Type `reset` to play again."
)

// Formatter renders coordinator state into terminal text blocks.
type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

// Status is the two-line summary shown after every command.
func (f *Formatter) Status(snap coordinator.Snapshot) string {
	var sb strings.Builder
	if snap.HasSession() {
		sb.WriteString(fmt.Sprintf("♟️ %s vs %s\n", snap.PlayerID, formatBot(snap.Bot)))
	}
	if snap.Busy {
		sb.WriteString(busyIndicator)
	}
	sb.WriteString(snap.Status)
	if snap.Opening != "" && !snap.Busy {
		sb.WriteString(" · ")
		sb.WriteString(snap.Opening)
	}
	if snap.ResetAvailable {
		sb.WriteString("\n")
		sb.WriteString(resetAffordanceHint)
	}
	return sb.String()
}

// Started is printed once the server created the game.
func (f *Formatter) Started(snap coordinator.Snapshot, serverURL string) string {
	var sb strings.Builder
	if snap.Notice != "" {
		sb.WriteString(snap.Notice)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("• game: %s\n", snap.SessionID))
	sb.WriteString(fmt.Sprintf("• opponent: %s (%s, icon %s)\n", formatBot(snap.Bot), snap.Bot.Name, snap.Bot.Icon))
	if serverURL != "" {
		sb.WriteString(fmt.Sprintf("• server: %s\n", serverURL))
	}
	sb.WriteString("Move with `move e2e4` or `e2 e4`. You play White.")
	return sb.String()
}

// Move describes a confirmed round trip.
func (f *Formatter) Move(out *coordinator.MoveOutcome, snap coordinator.Snapshot) string {
	if out == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You: %s", displayMove(out.PlayerSAN, out.PlayerUCI)))
	switch {
	case out.BotRejected:
		sb.WriteString(" | Bot: (invalid reply ignored)")
	case out.BotUCI != "":
		sb.WriteString(fmt.Sprintf(" | Bot: %s", displayMove(out.BotSAN, out.BotUCI)))
	}
	if recent := formatRecentMoves(snap.Moves); recent != "" {
		sb.WriteString("\n• recent: ")
		sb.WriteString(recent)
	}
	return sb.String()
}

// Error turns a coordinator error into one line for the prompt.
func (f *Formatter) Error(err error) string {
	if err == nil {
		return ""
	}
	var rejected *coordinator.ServerRejectedError
	var transport *coordinator.TransportError
	var start *coordinator.SessionStartError
	switch {
	case errors.Is(err, coordinator.ErrLocalIllegalMove):
		return "↩️ Illegal move, piece returned."
	case errors.Is(err, coordinator.ErrBusy):
		return "⏳ The bot is still thinking."
	case errors.Is(err, coordinator.ErrNoSession):
		return "No game yet. Start one with `new <player> [level]`."
	case errors.Is(err, coordinator.ErrGameOver):
		return "The game is over. " + resetAffordanceHint
	case errors.Is(err, coordinator.ErrNotYourTurn):
		return "Wait for the bot to move."
	case errors.Is(err, coordinator.ErrStaleResponse):
		return "Ignored a reply for an abandoned game."
	case errors.As(err, &rejected):
		return fmt.Sprintf("⚠️ Server error: %s.", rejected.Detail)
	case errors.As(err, &transport):
		return fmt.Sprintf("⚠️ Connection error: %v.", transport.Err)
	case errors.As(err, &start):
		return fmt.Sprintf("🛑 Could not start the game: %v", start.Err)
	default:
		return "⚠️ " + err.Error()
	}
}

// Levels lists the roster, marking current.
func (f *Formatter) Levels(bots []roster.Bot, current roster.Bot) string {
	var sb strings.Builder
	sb.WriteString(levelsTitle)
	for _, b := range bots {
		mark := " "
		if b.Elo == current.Elo {
			mark = "*"
		}
		sb.WriteString(fmt.Sprintf("\n%s %-7s %-15s %4d Elo", mark, b.Level, b.Name, b.Elo))
	}
	return sb.String()
}

func (f *Formatter) Help() string {
	return helpTitle + `
• new <player> [level]   start a game (level1..level7 or an Elo number)
• move <uci> | <from> <to>   play a move, e.g. move e2e4 or e2 e4
• reset                  abandon the current game
• status                 show board and status
• levels                 list bot levels
• debug                  show recent log lines
• quit                   exit`
}

func formatBot(b roster.Bot) string {
	if b.Elo <= 0 {
		return "Bot"
	}
	return fmt.Sprintf("Bot (%d Elo)", b.Elo)
}

func displayMove(san, uci string) string {
	if san != "" {
		return san
	}
	return uci
}

func formatRecentMoves(moves []string) string {
	if len(moves) == 0 {
		return ""
	}
	start := 0
	if len(moves) > recentMovesLimit {
		start = len(moves) - recentMovesLimit
	}
	return strings.Join(moves[start:], " ")
}
