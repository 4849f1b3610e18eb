package events

import (
	"log/slog"
	"sync"
	"time"
)

// Event names emitted by the document store.
const (
	DocumentCreated   = "document:created"
	DocumentSaved     = "document:saved"
	DocumentValidated = "document:validated"
	DocumentExported  = "document:exported"
	StorageFailed     = "document:storage_failed"
)

// Event is one fire-and-forget notification.
type Event struct {
	Name       string         `json:"name"`
	DocumentID string         `json:"document_id"`
	At         time.Time      `json:"at"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Handler receives published events.
type Handler func(Event)

// Bus is a minimal in-process notification surface. Publish never blocks the
// caller and never waits for subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
	any  []Handler
	log  *slog.Logger
}

// NewBus creates an event bus.
func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]Handler),
		log:  log,
	}
}

// Subscribe registers a handler for one event name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], h)
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.any = append(b.any, h)
}

// Publish delivers an event to subscribers on a separate goroutine. A
// panicking subscriber is logged and does not affect the publisher or other
// subscribers.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Name])+len(b.any))
	handlers = append(handlers, b.subs[ev.Name]...)
	handlers = append(handlers, b.any...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	go func() {
		for _, h := range handlers {
			b.dispatch(ev, h)
		}
	}()
}

func (b *Bus) dispatch(ev Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked", "event", ev.Name, "panic", r)
		}
	}()
	h(ev)
}
