package chessdto

import "encoding/json"

// WebSocket frame types sent by the client.
const (
	FrameNewGame  = "new_game"
	FrameMakeMove = "make_move"
)

// WebSocket events sent by the server.
const (
	EventGameCreated   = "game_created"
	EventMoveProcessed = "move_processed"
	EventError         = "error"
)

// Frame wraps a client request on the WebSocket transport.
type Frame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload"`
}

// Reply wraps a server message on the WebSocket transport; Payload is decoded per Event.
type Reply struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id"`
	Payload   json.RawMessage `json:"payload"`
}
