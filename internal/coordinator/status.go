package coordinator

import (
	"fmt"

	"github.com/park285/Cheese-bot-client/internal/msgcat"
	"github.com/park285/Cheese-bot-client/internal/rules"
)

// Position is the part of the rule-checker status derivation reads.
type Position interface {
	Turn() rules.Side
	IsCheck() bool
	IsCheckmate() bool
	IsDraw() bool
}

// Status is the derived, human-readable state of a position.
type Status struct {
	Text           string
	InCheck        bool
	Terminal       bool
	ResetAvailable bool
}

// DeriveStatus describes pos. It has no side effects; cat may be nil.
// On checkmate the side to move is the side that was mated.
func DeriveStatus(pos Position, cat *msgcat.Catalog) Status {
	side := pos.Turn().String()
	data := map[string]any{"Side": side}
	switch {
	case pos.IsCheckmate():
		return Status{
			Text:           cat.Text("status.checkmate", data, fmt.Sprintf("%s is checkmated", side)),
			Terminal:       true,
			ResetAvailable: true,
		}
	case pos.IsDraw():
		return Status{
			Text:           cat.Text("status.draw", nil, "draw"),
			Terminal:       true,
			ResetAvailable: true,
		}
	case pos.IsCheck():
		return Status{
			Text:    cat.Text("status.in_check", data, fmt.Sprintf("%s's turn (in check)", side)),
			InCheck: true,
		}
	default:
		return Status{Text: cat.Text("status.turn", data, fmt.Sprintf("%s's turn", side))}
	}
}
