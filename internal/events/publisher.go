package events

import (
	"sync"
	"time"
)

// EventType names something that happened to the client's game session.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionReset   EventType = "session_reset"
	EventMoveConfirmed  EventType = "move_confirmed"
	EventMoveReverted   EventType = "move_reverted"
	EventBotMoveInvalid EventType = "bot_move_invalid"
)

// Event is what subscribers receive. GameID is empty for session_reset without a game.
type Event struct {
	Type    EventType      `json:"type"`
	GameID  string         `json:"game_id,omitempty"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Handler processes events. Handlers run on the publishing goroutine and must not block.
type Handler func(event Event)

// Publisher fans events out to subscribers.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
	all         []Handler
}

func NewPublisher() *Publisher {
	return &Publisher{subscribers: make(map[EventType][]Handler)}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type
func (p *Publisher) SubscribeAll(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.all = append(p.all, handler)
}

// Publish delivers event to type subscribers first, then to catch-all subscribers.
// A nil publisher drops the event.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	p.mu.RLock()
	handlers := append([]Handler(nil), p.subscribers[event.Type]...)
	handlers = append(handlers, p.all...)
	p.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
