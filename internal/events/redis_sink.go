package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publishes session events as JSON on "<prefix>:<game_id>" so that
// overlays or spectators can follow the game. Delivery is best effort: a full
// queue drops events rather than stalling the coordinator.
type RedisSink struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger

	queue chan Event
	once  sync.Once
	done  chan struct{}
}

func NewRedisSink(redisURL, prefix string, logger *zap.Logger) (*RedisSink, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for event sink")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisSink(rdb, prefix, logger), nil
}

func newRedisSink(rdb *redis.Client, prefix string, logger *zap.Logger) *RedisSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "cheese:game"
	}
	s := &RedisSink{
		rdb:    rdb,
		prefix: prefix,
		logger: logger,
		queue:  make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Handle is a Handler; pass it to Publisher.SubscribeAll.
func (s *RedisSink) Handle(event Event) {
	select {
	case s.queue <- event:
	default:
		s.logger.Warn("event_sink_queue_full", zap.String("type", string(event.Type)))
	}
}

// Channel returns the pub/sub channel for a game.
func (s *RedisSink) Channel(gameID string) string {
	if gameID == "" {
		gameID = "none"
	}
	return s.prefix + ":" + gameID
}

func (s *RedisSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Warn("event_sink_marshal_failed", zap.Error(err))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = s.rdb.Publish(ctx, s.Channel(ev.GameID), payload).Err()
		cancel()
		if err != nil {
			s.logger.Warn("event_sink_publish_failed",
				zap.String("type", string(ev.Type)),
				zap.String("game_id", ev.GameID),
				zap.Error(err),
			)
		}
	}
}

// Close flushes queued events and closes the redis client. Handle must not be called afterwards.
func (s *RedisSink) Close() error {
	if s == nil {
		return nil
	}
	var err error
	s.once.Do(func() {
		close(s.queue)
		<-s.done
		err = s.rdb.Close()
	})
	return err
}

// parseRedisURL accepts redis:// and rediss:// only; the sink never dials a unix socket.
func parseRedisURL(raw string) (*redis.Options, error) {
	scheme, _, _ := strings.Cut(strings.TrimSpace(raw), "://")
	if scheme != "redis" && scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", scheme)
	}
	opts, err := redis.ParseURL(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
