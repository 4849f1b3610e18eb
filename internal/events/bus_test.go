package events

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublish_RoutesByName(t *testing.T) {
	bus := newTestBus()
	saved := make(chan Event, 1)
	created := make(chan Event, 1)
	bus.Subscribe(DocumentSaved, func(ev Event) { saved <- ev })
	bus.Subscribe(DocumentCreated, func(ev Event) { created <- ev })

	bus.Publish(Event{Name: DocumentSaved, DocumentID: "doc-1"})

	ev := recv(t, saved)
	if ev.DocumentID != "doc-1" {
		t.Errorf("unexpected document id %q", ev.DocumentID)
	}
	select {
	case ev := <-created:
		t.Errorf("created subscriber received foreign event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_StampsTimestamp(t *testing.T) {
	bus := newTestBus()
	ch := make(chan Event, 1)
	bus.Subscribe(DocumentValidated, func(ev Event) { ch <- ev })

	bus.Publish(Event{Name: DocumentValidated, DocumentID: "doc-1"})
	if ev := recv(t, ch); ev.At.IsZero() {
		t.Error("expected publish to stamp a timestamp")
	}
}

func TestPublish_KeepsExplicitTimestamp(t *testing.T) {
	bus := newTestBus()
	ch := make(chan Event, 1)
	bus.Subscribe(DocumentValidated, func(ev Event) { ch <- ev })

	at := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	bus.Publish(Event{Name: DocumentValidated, At: at})
	if ev := recv(t, ch); !ev.At.Equal(at) {
		t.Errorf("expected explicit timestamp preserved, got %v", ev.At)
	}
}

func TestSubscribeAll_SeesEveryEvent(t *testing.T) {
	bus := newTestBus()
	all := make(chan Event, 4)
	bus.SubscribeAll(func(ev Event) { all <- ev })

	bus.Publish(Event{Name: DocumentCreated})
	bus.Publish(Event{Name: DocumentExported})

	seen := map[string]bool{}
	seen[recv(t, all).Name] = true
	seen[recv(t, all).Name] = true
	if !seen[DocumentCreated] || !seen[DocumentExported] {
		t.Errorf("wildcard subscriber missed events: %v", seen)
	}
}

func TestPublish_PanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := newTestBus()
	ch := make(chan Event, 1)
	bus.Subscribe(DocumentSaved, func(Event) { panic("boom") })
	bus.Subscribe(DocumentSaved, func(ev Event) { ch <- ev })

	bus.Publish(Event{Name: DocumentSaved, DocumentID: "doc-1"})
	if ev := recv(t, ch); ev.DocumentID != "doc-1" {
		t.Errorf("unexpected document id %q", ev.DocumentID)
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := newTestBus()
	// Must not block or panic.
	bus.Publish(Event{Name: DocumentSaved})
}
