package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/park285/Cheese-bot-client/internal/gameapi"
	"github.com/park285/Cheese-bot-client/internal/roster"
	"github.com/park285/Cheese-bot-client/internal/rules"
	"github.com/park285/Cheese-bot-client/pkg/chessdto"
)

func main() {
	_ = godotenv.Load()

	baseURL := strings.TrimSpace(os.Getenv("GAME_SERVER_URL"))
	wsURL := strings.TrimSpace(os.Getenv("GAME_SERVER_WS_URL"))
	clientID := strings.TrimSpace(os.Getenv("CLIENT_ID"))
	if clientID == "" {
		clientID = "servercheck-" + uuid.NewString()[:8]
	}

	if baseURL == "" && wsURL == "" {
		log.Fatal("GAME_SERVER_URL or GAME_SERVER_WS_URL is required")
	}

	headers := func() map[string]string {
		return map[string]string{"X-Client-Id": clientID}
	}

	if baseURL != "" {
		client := gameapi.NewClient(baseURL,
			gameapi.WithHeaderProvider(headers),
			gameapi.WithTimeout(8*time.Second),
		)
		probe("http", client)
		_ = client.Close()
	} else {
		log.Println("GAME_SERVER_URL not set; skipping HTTP check")
	}

	if wsURL == "" {
		log.Println("GAME_SERVER_WS_URL not set; skipping WS check")
		return
	}
	ws := gameapi.NewWSTransport(wsURL,
		gameapi.WithWSHeaderProvider(headers),
		gameapi.WithWSTimeout(8*time.Second),
	)
	probe("ws", ws)
	_ = ws.Close()
}

// probe creates a game and plays 1.e4, checking the reply against the local rules.
func probe(name string, tr gameapi.Transport) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	bot := roster.Default()
	game, err := tr.NewGame(ctx, chessdto.NewGameRequest{
		PlayerWhiteID: "servercheck",
		OpponentType:  chessdto.OpponentTypeBot,
		OpponentLevel: bot.Elo,
	})
	if err != nil {
		log.Printf("[%s] /game/new error: %v", name, err)
		return
	}
	log.Printf("[%s] /game/new ok: game_id=%s fen=%q", name, game.GameID, game.InitialFEN)

	checker := rules.NewChecker()
	if err := checker.Load(game.InitialFEN); err != nil {
		log.Printf("[%s] initial fen rejected locally: %v", name, err)
		return
	}
	if _, err := checker.MoveUCI("e2e4"); err != nil {
		log.Printf("[%s] e2e4 not legal in initial position, skipping move check", name)
		return
	}

	mv, err := tr.SubmitMove(ctx, chessdto.MoveRequest{GameID: game.GameID, PlayerID: "servercheck", UCIMove: "e2e4"})
	if err != nil {
		log.Printf("[%s] /game/move error: %v", name, err)
		return
	}
	if mv.BotMove != "" {
		if _, err := checker.MoveUCI(mv.BotMove); err != nil {
			log.Printf("[%s] bot move %s rejected locally: %v", name, mv.BotMove, err)
		}
	}
	drift := mv.NewFEN != "" && !rules.SamePosition(checker.FEN(), mv.NewFEN)
	log.Printf("[%s] /game/move ok: bot_move=%s new_fen=%q drift=%v", name, mv.BotMove, mv.NewFEN, drift)
}
