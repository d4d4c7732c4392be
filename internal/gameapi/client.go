package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/Cheese-bot-client/pkg/chessdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client is the HTTP transport. Requests are never retried: every failure goes
// back to the player, who decides whether to try again.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 4},
		logger:         zap.NewNop(),
		defaultTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) NewGame(ctx context.Context, in chessdto.NewGameRequest) (*chessdto.NewGameResponse, error) {
	var resp chessdto.NewGameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/game/new", in, &resp); err != nil {
		return nil, err
	}
	if err := validateNewGame(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitMove(ctx context.Context, in chessdto.MoveRequest) (*chessdto.MoveResponse, error) {
	var resp chessdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/game/move", in, &resp); err != nil {
		return nil, err
	}
	if err := validateMove(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	requestID := uuid.NewString()
	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, computeDeadline(ctx, c.defaultTimeout)); err != nil {
		c.logger.Warn("game_api_request_failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		if errors.Is(err, fasthttp.ErrTimeout) {
			return fmt.Errorf("request timed out after %s: %w", time.Since(started).Round(time.Millisecond), err)
		}
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	c.logger.Debug("game_api_response",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)),
	)

	if status < 200 || status >= 300 {
		return decodeAPIError(status, resp.Body())
	}

	// 빈 2xx 본문은 "필드 없음"으로 본다; 필수 필드는 validate*가 확인한다
	if body := bytes.TrimSpace(resp.Body()); out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}

// decodeAPIError pulls the detail out of a failure body, falling back to the raw body.
func decodeAPIError(status int, body []byte) error {
	var payload chessdto.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		return &APIError{Status: status, Detail: payload.Detail}
	}
	detail := strings.TrimSpace(truncate(string(body), 512))
	if detail == "" {
		detail = fasthttp.StatusMessage(status)
	}
	return &APIError{Status: status, Detail: detail}
}
