package chessdto

// NewGameResponse is the success body of POST /game/new.
type NewGameResponse struct {
	GameID     string `json:"game_id"`
	InitialFEN string `json:"initial_fen"`
}
