package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownLevel = errors.New("unknown bot level")

// Bot is one selectable opponent. Elo is what the game service receives as opponent_level.
type Bot struct {
	Level string
	Name  string
	Elo   int
	Icon  string
}

var bots = []Bot{
	{Level: "level1", Name: "Pawnstorm", Elo: 600, Icon: "pawn.png"},
	{Level: "level2", Name: "Knightly", Elo: 800, Icon: "knight.png"},
	{Level: "level3", Name: "Bishop Bot", Elo: 1000, Icon: "bishop.png"},
	{Level: "level4", Name: "Rookie", Elo: 1200, Icon: "rook.png"},
	{Level: "level5", Name: "Castler", Elo: 1500, Icon: "castle.png"},
	{Level: "level6", Name: "Queen's Gambit", Elo: 1800, Icon: "queen.png"},
	{Level: "level7", Name: "Grandmaster", Elo: 2200, Icon: "king.png"},
}

// All returns the roster ordered by strength.
func All() []Bot {
	out := make([]Bot, len(bots))
	copy(out, bots)
	return out
}

// Default is the level used when nothing was chosen.
func Default() Bot { return bots[4] }

// Lookup accepts a level name ("level3") or an Elo number ("1500").
// A number not on the roster is accepted as-is so the server can decide.
func Lookup(s string) (Bot, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Default(), nil
	}
	for _, b := range bots {
		if b.Level == key || strings.EqualFold(b.Name, key) {
			return b, nil
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return Bot{}, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	if n < 100 || n > 3500 {
		return Bot{}, fmt.Errorf("%w: elo %d out of range", ErrUnknownLevel, n)
	}
	for _, b := range bots {
		if b.Elo == n {
			return b, nil
		}
	}
	return Bot{Level: "custom", Name: "Bot", Elo: n, Icon: nearest(n).Icon}, nil
}

func nearest(elo int) Bot {
	best := bots[0]
	for _, b := range bots[1:] {
		if abs(b.Elo-elo) < abs(best.Elo-elo) {
			best = b
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
