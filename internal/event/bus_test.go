package event

import (
	"sync"
	"testing"
	"time"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	unsub := bus.Subscribe(ConfigInvalidated, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})
	defer unsub()

	bus.PublishSync(Event{Type: ConfigInvalidated, Data: ConfigInvalidatedData{Scope: "default"}})
	bus.PublishSync(Event{Type: ConfigReloaded, Data: ConfigReloadedData{Workspace: "/ws"}})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	data, ok := received[0].Data.(ConfigInvalidatedData)
	if !ok || data.Scope != "default" {
		t.Fatalf("unexpected event data: %#v", received[0].Data)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	count := 0
	unsub := bus.SubscribeAll(func(e Event) { count++ })
	defer unsub()

	bus.PublishSync(Event{Type: ConfigInvalidated})
	bus.PublishSync(Event{Type: DecisionDenied})

	if count != 2 {
		t.Fatalf("expected 2 events, got %d", count)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	count := 0
	unsub := bus.Subscribe(ConfigReloaded, func(e Event) { count++ })

	bus.PublishSync(Event{Type: ConfigReloaded})
	unsub()
	bus.PublishSync(Event{Type: ConfigReloaded})

	if count != 1 {
		t.Fatalf("expected 1 event, got %d", count)
	}
}

func TestBus_PublishAsync(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	done := make(chan Event, 1)
	bus.Subscribe(DecisionDenied, func(e Event) { done <- e })

	bus.Publish(Event{Type: DecisionDenied, Data: DecisionDeniedData{ID: "x"}})

	select {
	case e := <-done:
		if e.Type != DecisionDenied {
			t.Fatalf("unexpected event type %q", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_ClosedDropsEvents(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(ConfigReloaded, func(e Event) { count++ })
	bus.Close()
	bus.PublishSync(Event{Type: ConfigReloaded})

	if count != 0 {
		t.Fatalf("expected no events after close, got %d", count)
	}
}
