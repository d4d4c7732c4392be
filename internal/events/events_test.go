package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPublisherRoutesByType(t *testing.T) {
	p := NewPublisher()
	var confirmed, all []EventType
	p.Subscribe(EventMoveConfirmed, func(e Event) { confirmed = append(confirmed, e.Type) })
	p.SubscribeAll(func(e Event) { all = append(all, e.Type) })

	p.Publish(Event{Type: EventSessionStarted, GameID: "g1"})
	p.Publish(Event{Type: EventMoveConfirmed, GameID: "g1"})

	if len(confirmed) != 1 || confirmed[0] != EventMoveConfirmed {
		t.Fatalf("confirmed=%v", confirmed)
	}
	if len(all) != 2 {
		t.Fatalf("all=%v", all)
	}
}

func TestPublishStampsTime(t *testing.T) {
	p := NewPublisher()
	var got Event
	p.SubscribeAll(func(e Event) { got = e })
	p.Publish(Event{Type: EventSessionReset})
	if got.At.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher
	p.Publish(Event{Type: EventSessionReset})
}

func newTestSink(t *testing.T) (*RedisSink, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	sink, err := NewRedisSink(fmt.Sprintf("redis://%s/0", mr.Addr()), "test:game:", nil)
	if err != nil {
		t.Fatalf("NewRedisSink: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sub.Close() })
	return sink, sub
}

func TestRedisSinkPublishesJSON(t *testing.T) {
	sink, sub := newTestSink(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if got := sink.Channel("g1"); got != "test:game:g1" {
		t.Fatalf("channel=%s", got)
	}

	ps := sub.Subscribe(ctx, sink.Channel("g1"))
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p := NewPublisher()
	p.SubscribeAll(sink.Handle)
	p.Publish(Event{Type: EventMoveConfirmed, GameID: "g1", Payload: map[string]any{"uci": "e2e4"}})

	msg, err := ps.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != EventMoveConfirmed || ev.GameID != "g1" || ev.Payload["uci"] != "e2e4" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNewRedisSinkRejectsBadURL(t *testing.T) {
	if _, err := NewRedisSink("", "", nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewRedisSink("http://localhost:6379", "", nil); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := parseRedisURL("redis://:secret@cache.local:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Addr != "cache.local:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("unexpected %+v", opts)
	}
}
