package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/Cheese-bot-client/pkg/chessdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var ErrWSClosed = errors.New("websocket transport closed")

// WSTransport sends the same bodies as the HTTP client inside request/reply
// frames correlated by request_id. The connection is dialled on first use and
// redialled on the next request after it drops.
type WSTransport struct {
	wsURL   string
	headers HeaderProvider
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan chessdto.Reply
	closed  bool

	readCtx    context.Context
	readCancel context.CancelFunc
	wg         sync.WaitGroup
}

type WSOption func(*WSTransport)

func WithWSTimeout(d time.Duration) WSOption {
	return func(t *WSTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithWSHeaderProvider(h HeaderProvider) WSOption {
	return func(t *WSTransport) { t.headers = h }
}

func WithWSLogger(l *zap.Logger) WSOption {
	return func(t *WSTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewWSTransport(wsURL string, opts ...WSOption) *WSTransport {
	t := &WSTransport{
		wsURL:   wsURL,
		logger:  zap.NewNop(),
		timeout: 15 * time.Second,
		pending: make(map[string]chan chessdto.Reply),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *WSTransport) NewGame(ctx context.Context, in chessdto.NewGameRequest) (*chessdto.NewGameResponse, error) {
	reply, err := t.roundTrip(ctx, chessdto.FrameNewGame, in)
	if err != nil {
		return nil, err
	}
	if reply.Event != chessdto.EventGameCreated {
		return nil, fmt.Errorf("%w: unexpected event %q", ErrMalformedResponse, reply.Event)
	}
	var resp chessdto.NewGameResponse
	if err := json.Unmarshal(reply.Payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedResponse, err)
	}
	if err := validateNewGame(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (t *WSTransport) SubmitMove(ctx context.Context, in chessdto.MoveRequest) (*chessdto.MoveResponse, error) {
	reply, err := t.roundTrip(ctx, chessdto.FrameMakeMove, in)
	if err != nil {
		return nil, err
	}
	if reply.Event != chessdto.EventMoveProcessed {
		return nil, fmt.Errorf("%w: unexpected event %q", ErrMalformedResponse, reply.Event)
	}
	var resp chessdto.MoveResponse
	if err := decodePayload(reply.Payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedResponse, err)
	}
	if err := validateMove(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (t *WSTransport) roundTrip(ctx context.Context, frameType string, payload any) (chessdto.Reply, error) {
	deadline := computeDeadline(ctx, t.timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := t.ensureConn(ctx)
	if err != nil {
		return chessdto.Reply{}, fmt.Errorf("dial: %w", err)
	}

	id := uuid.NewString()
	ch := make(chan chessdto.Reply, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	frame := chessdto.Frame{Type: frameType, RequestID: id, Payload: payload}
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		t.dropConn(conn, "write failure")
		return chessdto.Reply{}, fmt.Errorf("write frame: %w", err)
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return chessdto.Reply{}, ErrWSClosed
		}
		if reply.Event == chessdto.EventError {
			var body chessdto.ErrorResponse
			if err := json.Unmarshal(reply.Payload, &body); err != nil || strings.TrimSpace(body.Detail) == "" {
				return chessdto.Reply{}, &APIError{Detail: strings.TrimSpace(truncate(string(reply.Payload), 512))}
			}
			return chessdto.Reply{}, &APIError{Detail: body.Detail}
		}
		return reply, nil
	case <-ctx.Done():
		return chessdto.Reply{}, fmt.Errorf("request timed out: %w", ctx.Err())
	}
}

func (t *WSTransport) ensureConn(ctx context.Context) (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrWSClosed
	}
	if t.conn != nil {
		return t.conn, nil
	}

	conn, _, err := websocket.Dial(ctx, t.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      t.buildHeaders(),
	})
	if err != nil {
		return nil, err
	}
	t.conn = conn
	t.readCtx, t.readCancel = context.WithCancel(context.Background())
	t.wg.Add(1)
	go t.listen(t.readCtx, conn)
	t.logger.Info("game_ws_connected", zap.String("url", t.wsURL))
	return conn, nil
}

func (t *WSTransport) listen(ctx context.Context, conn *websocket.Conn) {
	defer t.wg.Done()
	for {
		var reply chessdto.Reply
		if err := wsjson.Read(ctx, conn, &reply); err != nil {
			if ctx.Err() == nil {
				t.logger.Warn("game_ws_read_failed", zap.Error(err))
			}
			t.dropConn(conn, "read failure")
			return
		}
		t.mu.Lock()
		ch, ok := t.pending[reply.RequestID]
		if ok {
			delete(t.pending, reply.RequestID)
		}
		t.mu.Unlock()
		if !ok {
			t.logger.Debug("game_ws_unmatched_reply",
				zap.String("event", reply.Event),
				zap.String("request_id", reply.RequestID),
			)
			continue
		}
		ch <- reply
	}
}

// dropConn forgets conn and fails every request still waiting on it.
func (t *WSTransport) dropConn(conn *websocket.Conn, reason string) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	if t.readCancel != nil {
		t.readCancel()
	}
	waiting := t.pending
	t.pending = make(map[string]chan chessdto.Reply)
	t.mu.Unlock()

	for _, ch := range waiting {
		close(ch)
	}
	_ = conn.Close(websocket.StatusGoingAway, reason)
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		t.dropConn(conn, "close")
	}
	t.wg.Wait()
	return nil
}

func (t *WSTransport) buildHeaders() http.Header {
	hdr := http.Header{}
	if t.headers == nil {
		return hdr
	}
	for k, v := range t.headers() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}

// decodePayload treats an absent or null payload as an empty object.
func decodePayload(raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
