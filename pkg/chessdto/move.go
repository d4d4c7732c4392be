package chessdto

// MoveResponse is the success body of POST /game/move.
// BotMove is empty when the bot has no reply (game over after the player's move).
// NewFEN is optional; when present the client only uses it as a consistency check.
type MoveResponse struct {
	NewFEN  string `json:"new_fen,omitempty"`
	BotMove string `json:"bot_move,omitempty"`
}
