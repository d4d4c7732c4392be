package chessdto

// OpponentTypeBot is the only opponent kind the game service accepts from this client.
const OpponentTypeBot = "bot"

// NewGameRequest is the body of POST /game/new.
type NewGameRequest struct {
	PlayerWhiteID string `json:"player_white_id"`
	OpponentType  string `json:"opponent_type"`
	OpponentLevel int    `json:"opponent_level"`
}

// MoveRequest is the body of POST /game/move.
type MoveRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	UCIMove  string `json:"uci_move"`
}
