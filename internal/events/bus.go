// Package events is the typed publish/subscribe channel between the
// constellation core and its collaborators. Every subsystem declares the
// names it emits and consumes; payloads are the structs in payloads.go.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emotion-constellation/constellation-core/pkg/logger"
)

// Name identifies an event kind on the bus
type Name string

const (
	SelectionChanged Name = "selection:changed"

	InputNeedClick    Name = "input:need-click"
	InputEmotionClick Name = "input:emotion-click"
	InputDeselect     Name = "input:deselect"
	InputTap          Name = "input:tap"
	InputHover        Name = "input:hover"
	InputHoverEnd     Name = "input:hover-end"

	EntryHintShown     Name = "entry:hint-shown"
	EntryHintDismissed Name = "entry:hint-dismissed"

	LocaleChanged Name = "locale:changed"
	LayoutResized Name = "layout:resized"
)

// All lists every known event name
var All = []Name{
	SelectionChanged,
	InputNeedClick, InputEmotionClick, InputDeselect, InputTap, InputHover, InputHoverEnd,
	EntryHintShown, EntryHintDismissed,
	LocaleChanged, LayoutResized,
}

// Event is a single published message
type Event struct {
	ID      string    `json:"id"`
	Name    Name      `json:"name"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Handler processes an event. Handlers run synchronously on the publishing
// goroutine and must not block.
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
	names   map[Name]struct{}
}

func (s *subscription) matches(name Name) bool {
	if len(s.names) == 0 {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// Bus delivers events to subscribers in subscription order.
//
// Bus is safe for concurrent use; subscribers may be added or removed from
// inside a handler.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	now    func() time.Time
	logger *slog.Logger
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		now:    time.Now,
		logger: logger.Component("events"),
	}
}

// SetLogger sets the logger used for handler panics
func (b *Bus) SetLogger(l *slog.Logger) {
	if l != nil {
		b.logger = l
	}
}

// SetClock overrides the timestamp source
func (b *Bus) SetClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

// Subscribe registers handler for the given names (none = every event) and
// returns the subscription ID.
func (b *Bus) Subscribe(handler Handler, names ...Name) string {
	sub := &subscription{
		id:      uuid.NewString(),
		handler: handler,
		names:   make(map[Name]struct{}, len(names)),
	}
	for _, n := range names {
		sub.names[n] = struct{}{}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub.id
}

// Unsubscribe removes a subscription. It reports whether id was known.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// SubscriptionCount returns the number of live subscriptions
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers an event to every matching subscriber and returns it.
// A panicking handler is logged and skipped.
func (b *Bus) Publish(name Name, payload any) Event {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	event := Event{
		ID:      uuid.NewString(),
		Name:    name,
		At:      b.now(),
		Payload: payload,
	}

	for _, sub := range subs {
		if sub.matches(name) {
			b.invoke(sub, event)
		}
	}
	return event
}

func (b *Bus) invoke(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", event.Name,
				"event_id", event.ID,
				"subscription", sub.id,
				"panic", r,
			)
		}
	}()
	sub.handler(event)
}
