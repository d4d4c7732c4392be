// Package coordinator turns move gestures into server-confirmed positions.
//
// The local rule-checker mirrors the last position the game service confirmed.
// A move is checked locally, shown provisionally, sent to the service and only
// then applied; any failure puts the confirmed position back on the board.
// One move may be in flight at a time.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/park285/Cheese-bot-client/internal/boardview"
	"github.com/park285/Cheese-bot-client/internal/events"
	"github.com/park285/Cheese-bot-client/internal/gameapi"
	"github.com/park285/Cheese-bot-client/internal/msgcat"
	"github.com/park285/Cheese-bot-client/internal/obslog"
	"github.com/park285/Cheese-bot-client/internal/roster"
	"github.com/park285/Cheese-bot-client/internal/rules"
	"github.com/park285/Cheese-bot-client/pkg/chessdto"
	"go.uber.org/zap"
)

// RuleChecker is the local rule engine. *rules.Checker implements it.
type RuleChecker interface {
	Position
	Reset()
	Load(fen string) error
	Legal(cand rules.Candidate) (*rules.MoveResult, bool)
	MoveUCI(uci string) (*rules.MoveResult, error)
	Undo() error
	FEN() string
	IsGameOver() bool
	PieceAt(square string) (string, error)
	Moves() []string
	Opening() (string, string)
}

type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithPublisher(p *events.Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

func WithCatalog(cat *msgcat.Catalog) Option {
	return func(c *Coordinator) { c.catalog = cat }
}

// WithRequestTimeout bounds every call to the game service. Zero leaves it to the transport.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// WithServerURL is only used in user-facing notices.
func WithServerURL(u string) Option {
	return func(c *Coordinator) { c.serverURL = u }
}

type Coordinator struct {
	transport gameapi.Transport
	checker   RuleChecker
	renderer  boardview.Renderer
	publisher *events.Publisher
	catalog   *msgcat.Catalog
	logger    *zap.Logger
	timeout   time.Duration
	serverURL string

	mu      sync.Mutex
	session *Session
	state   State
	busy    bool
	// epoch changes on every start and reset; responses carry the epoch they were issued in.
	epoch    uint64
	pending  *PendingMove
	lastMove *boardview.MoveHighlight
	notice   string
	errText  string
}

func New(transport gameapi.Transport, checker RuleChecker, renderer boardview.Renderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		transport: transport,
		checker:   checker,
		renderer:  renderer,
		logger:    obslog.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notice = c.catalog.Text("notice.ready", nil, "Ready to start.")
	return c
}

// StartSession asks the service for a new game against bot. Any previous
// session is abandoned first; a late response for it will be dropped.
func (c *Coordinator) StartSession(ctx context.Context, playerID string, bot roster.Bot) (*Session, error) {
	playerID = strings.TrimSpace(playerID)

	c.mu.Lock()
	c.abandonLocked()
	epoch := c.epoch
	c.mu.Unlock()

	if playerID == "" {
		return nil, c.failStart(epoch, fmt.Errorf("player id is required"))
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()
	resp, err := c.transport.NewGame(ctx, chessdto.NewGameRequest{
		PlayerWhiteID: playerID,
		OpponentType:  chessdto.OpponentTypeBot,
		OpponentLevel: bot.Elo,
	})
	if err != nil {
		return nil, c.failStart(epoch, classify("new game", err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Info("stale_session_start", zap.String("game_id", resp.GameID))
		return nil, ErrStaleResponse
	}
	if err := c.checker.Load(resp.InitialFEN); err != nil {
		c.checker.Reset()
		c.notice = c.startFailedText()
		c.logger.Warn("session_start_bad_fen", zap.String("game_id", resp.GameID), zap.String("fen", resp.InitialFEN), zap.Error(err))
		c.renderLocked(rules.StartFEN, false)
		return nil, &SessionStartError{Err: err}
	}

	sess := &Session{ID: resp.GameID, PlayerID: playerID, Bot: bot, StartedAt: time.Now()}
	c.session = sess
	c.state = StateIdle
	if c.checker.IsGameOver() {
		c.state = StateFinished
	}
	c.notice = c.catalog.Text("notice.started", nil, "Game started! White to move.")
	c.logger.Info("session_started",
		zap.String("game_id", sess.ID),
		zap.String("player_id", playerID),
		zap.Int("opponent_level", bot.Elo),
	)

	if c.renderer != nil {
		c.renderer.Resize()
	}
	c.renderLocked(c.checker.FEN(), false)
	c.publishLocked(events.EventSessionStarted, map[string]any{
		"player_id":      playerID,
		"opponent_level": bot.Elo,
		"fen":            c.checker.FEN(),
	})
	copied := *sess
	return &copied, nil
}

func (c *Coordinator) failStart(epoch uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrStaleResponse
	}
	c.notice = c.startFailedText()
	c.logger.Warn("session_start_failed", zap.Error(err))
	c.renderLocked(rules.StartFEN, false)
	return &SessionStartError{Err: err}
}

// ResetSession drops the current session, clears the busy flag and shows the
// initial position. An in-flight request is not cancelled; its response is ignored.
func (c *Coordinator) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.session
	c.abandonLocked()
	c.notice = c.catalog.Text("notice.reset", nil, "Ready for a new game.")
	if r, ok := c.renderer.(boardview.Highlighter); ok {
		r.Highlight("", "")
	}
	c.renderLocked(rules.StartFEN, false)
	if had != nil {
		c.logger.Info("session_reset", zap.String("game_id", had.ID))
		c.publisher.Publish(events.Event{Type: events.EventSessionReset, GameID: had.ID})
	}
}

func (c *Coordinator) abandonLocked() {
	c.epoch++
	c.session = nil
	c.state = StateNoSession
	c.busy = false
	c.pending = nil
	c.lastMove = nil
	c.errText = ""
	c.checker.Reset()
}

// AttemptLocalMove checks from-to against the confirmed position. The checker
// is left untouched; the returned PendingMove carries the provisional position.
func (c *Coordinator) AttemptLocalMove(from, to string) (PendingMove, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gateLocked(); err != nil {
		return PendingMove{}, err
	}

	res, ok := c.checker.Legal(rules.Candidate{From: from, To: to})
	if !ok {
		c.logger.Debug("local_illegal_move", zap.String("from", from), zap.String("to", to))
		c.renderLocked(c.checker.FEN(), false)
		return PendingMove{}, fmt.Errorf("%w: %s-%s", ErrLocalIllegalMove, from, to)
	}

	base := c.checker.FEN()
	provisional := base
	if _, err := c.checker.MoveUCI(res.UCI); err == nil {
		provisional = c.checker.FEN()
		if err := c.checker.Undo(); err != nil {
			c.logger.Error("rollback_failed", zap.String("uci", res.UCI), zap.Error(err))
		}
	}
	return PendingMove{
		From:      from,
		To:        to,
		UCI:       res.UCI,
		SAN:       res.SAN,
		FEN:       provisional,
		SessionID: c.session.ID,
		base:      base,
		epoch:     c.epoch,
	}, nil
}

// SubmitMove sends pm to the game service and reconciles the answer.
// On rejection or transport failure the confirmed position is restored and
// the error is a *ServerRejectedError or *TransportError. The busy flag is
// cleared on every path.
func (c *Coordinator) SubmitMove(ctx context.Context, pm PendingMove) (*MoveOutcome, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	if pm.epoch != c.epoch || pm.SessionID != c.session.ID {
		c.mu.Unlock()
		return nil, ErrStaleResponse
	}
	if err := c.gateLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if pm.base != c.checker.FEN() {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s was checked against an older position", ErrLocalIllegalMove, pm.UCI)
	}
	c.busy = true
	c.state = StatePending
	c.pending = &pm
	c.errText = ""
	sess := *c.session
	epoch := c.epoch
	if r, ok := c.renderer.(boardview.Highlighter); ok {
		r.Highlight(pm.From, pm.To)
	}
	c.renderLocked(pm.FEN, true)
	c.mu.Unlock()

	c.logger.Debug("move_submitted", zap.String("game_id", sess.ID), zap.String("uci", pm.UCI))
	reqCtx, cancel := c.requestContext(ctx)
	resp, err := c.transport.SubmitMove(reqCtx, chessdto.MoveRequest{
		GameID:   sess.ID,
		PlayerID: sess.PlayerID,
		UCIMove:  pm.UCI,
	})
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.session == nil || c.session.ID != sess.ID {
		c.logger.Info("stale_response_dropped", zap.String("game_id", sess.ID), zap.String("uci", pm.UCI), zap.Bool("failed", err != nil))
		return nil, ErrStaleResponse
	}
	c.busy = false
	c.pending = nil
	c.state = StateIdle

	if err != nil {
		return nil, c.revertLocked(sess.ID, pm, classify("submit move", err))
	}

	played, err := c.checker.MoveUCI(pm.UCI)
	if err != nil {
		// the position cannot have moved while busy, so this means the checker state is broken
		c.logger.Error("player_move_reapply_failed", zap.String("game_id", sess.ID), zap.String("uci", pm.UCI), zap.Error(err))
		return nil, c.revertLocked(sess.ID, pm, fmt.Errorf("%w: %s", ErrLocalIllegalMove, pm.UCI))
	}
	out := &MoveOutcome{PlayerUCI: played.UCI, PlayerSAN: played.SAN}
	c.lastMove = &boardview.MoveHighlight{From: pm.From, To: pm.To}

	if bot := strings.TrimSpace(resp.BotMove); bot != "" {
		reply, err := c.checker.MoveUCI(bot)
		if err != nil {
			out.BotRejected = true
			c.logger.Warn("bot_move_invalid",
				zap.String("game_id", sess.ID),
				zap.String("bot_move", bot),
				zap.String("fen", c.checker.FEN()),
				zap.Error(err),
			)
			c.publishLocked(events.EventBotMoveInvalid, map[string]any{"bot_move": bot, "fen": c.checker.FEN()})
		} else {
			out.BotUCI, out.BotSAN = reply.UCI, reply.SAN
			if from, to, ok := rules.SplitUCI(reply.UCI); ok {
				c.lastMove = &boardview.MoveHighlight{From: from, To: to}
			}
		}
	}

	local := c.checker.FEN()
	if resp.NewFEN != "" && !rules.SamePosition(local, resp.NewFEN) {
		c.logger.Warn("fen_drift", zap.String("game_id", sess.ID), zap.String("local", local), zap.String("server", resp.NewFEN))
	}
	if c.checker.IsGameOver() {
		c.state = StateFinished
	}
	c.notice = ""

	if r, ok := c.renderer.(boardview.Highlighter); ok {
		r.Highlight(c.lastMove.From, c.lastMove.To)
	}
	c.renderLocked(local, true)

	out.FEN = local
	out.Status = DeriveStatus(c.checker, c.catalog)
	c.logger.Info("move_confirmed",
		zap.String("game_id", sess.ID),
		zap.String("uci", out.PlayerUCI),
		zap.String("bot_move", out.BotUCI),
		zap.String("status", out.Status.Text),
	)
	c.publishLocked(events.EventMoveConfirmed, map[string]any{
		"uci":      out.PlayerUCI,
		"san":      out.PlayerSAN,
		"bot_move": out.BotUCI,
		"fen":      local,
		"status":   out.Status.Text,
	})
	return out, nil
}

func (c *Coordinator) revertLocked(gameID string, pm PendingMove, err error) error {
	c.errText = c.errorText(err)
	c.logger.Warn("move_reverted", zap.String("game_id", gameID), zap.String("uci", pm.UCI), zap.Error(err))
	if r, ok := c.renderer.(boardview.Highlighter); ok {
		if c.lastMove != nil {
			r.Highlight(c.lastMove.From, c.lastMove.To)
		} else {
			r.Highlight("", "")
		}
	}
	c.renderLocked(c.checker.FEN(), false)
	c.publishLocked(events.EventMoveReverted, map[string]any{"uci": pm.UCI, "reason": errorDetail(err)})
	return err
}

// Move is AttemptLocalMove followed by SubmitMove.
func (c *Coordinator) Move(ctx context.Context, from, to string) (*MoveOutcome, error) {
	pm, err := c.AttemptLocalMove(from, to)
	if err != nil {
		return nil, err
	}
	return c.SubmitMove(ctx, pm)
}

// Snapshot returns a copy of the current session state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:  c.state,
		FEN:    c.checker.FEN(),
		Moves:  c.checker.Moves(),
		Busy:   c.busy,
		Notice: c.notice,
	}
	if c.session != nil {
		snap.SessionID = c.session.ID
		snap.PlayerID = c.session.PlayerID
		snap.Bot = c.session.Bot
	}
	if c.lastMove != nil {
		snap.LastMove = c.lastMove.From + c.lastMove.To
	}
	if code, title := c.checker.Opening(); code != "" {
		snap.Opening = c.catalog.Text("opening", map[string]any{"Code": code, "Title": title}, code+" "+title)
	}

	switch {
	case c.session == nil:
		snap.Status = c.notice
	case c.busy:
		snap.Status = c.catalog.Text("status.pending", nil, "Sending move...")
	case c.errText != "":
		snap.Status = c.errText
	default:
		st := DeriveStatus(c.checker, c.catalog)
		snap.Status = st.Text
		snap.InCheck = st.InCheck
		snap.ResetAvailable = st.ResetAvailable
	}
	return snap
}

// Header is the players line, e.g. "alice vs Bot (1500 Elo)". Empty without a session.
func (c *Coordinator) Header() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headerLocked()
}

func (c *Coordinator) headerLocked() string {
	if c.session == nil {
		return ""
	}
	human := c.catalog.Text("players.human", map[string]any{"Name": c.session.PlayerID}, c.session.PlayerID)
	bot := c.catalog.Text("players.bot", map[string]any{"Elo": c.session.Bot.Elo}, fmt.Sprintf("Bot (%d Elo)", c.session.Bot.Elo))
	return human + " vs " + bot
}

func (c *Coordinator) gateLocked() error {
	switch {
	case c.session == nil:
		return ErrNoSession
	case c.busy:
		return ErrBusy
	case c.state == StateFinished || c.checker.IsGameOver():
		return ErrGameOver
	case c.checker.Turn() != rules.White:
		return ErrNotYourTurn
	}
	return nil
}

func (c *Coordinator) errorText(err error) string {
	detail := errorDetail(err)
	var rejected *ServerRejectedError
	if errors.As(err, &rejected) {
		return c.catalog.Text("status.server_error", map[string]any{"Detail": detail}, "Server error: "+detail+".")
	}
	return c.catalog.Text("status.transport_error", map[string]any{"Detail": detail}, "Connection error: "+detail+".")
}

func (c *Coordinator) startFailedText() string {
	return c.catalog.Text("notice.start_failed", map[string]any{"ServerURL": c.serverURL}, "Could not start the game.")
}

// renderLocked pushes fen to the renderer. Rendering problems are logged, never returned:
// the board is a view of the session, not part of it.
func (c *Coordinator) renderLocked(fen string, animate bool) {
	if c.renderer == nil {
		return
	}
	c.captionLocked()
	if err := c.renderer.Position(fen, animate); err != nil {
		c.logger.Warn("render_failed", zap.String("fen", fen), zap.Error(err))
	}
}

// captionLocked hands header and status to renderers that show them and returns the status.
func (c *Coordinator) captionLocked() string {
	snap := c.snapshotLocked()
	status := snap.Status
	if snap.Opening != "" && !c.busy {
		status += " · " + snap.Opening
	}
	if r, ok := c.renderer.(boardview.Captioner); ok {
		r.Caption(c.headerLocked(), status)
	}
	return status
}

func (c *Coordinator) publishLocked(t events.EventType, payload map[string]any) {
	ev := events.Event{Type: t, Payload: payload}
	if c.session != nil {
		ev.GameID = c.session.ID
	}
	c.publisher.Publish(ev)
}

func (c *Coordinator) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}
