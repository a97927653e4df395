package realtime

import (
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(2)
	id1, ch1 := h.Register()
	id2, ch2 := h.Register()
	defer h.Unregister(id1)
	defer h.Unregister(id2)

	ev := ReloadEvent{Documents: 42, LoadedAt: time.Now()}
	h.Broadcast(ev)

	for i, ch := range []<-chan ReloadEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Documents != 42 {
				t.Errorf("listener %d: got %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("listener %d: no event", i)
		}
	}
}

func TestHubDropsForSlowListener(t *testing.T) {
	h := NewHub(1)
	id, ch := h.Register()
	defer h.Unregister(id)

	h.Broadcast(ReloadEvent{Documents: 1})
	h.Broadcast(ReloadEvent{Documents: 2}) // buffer full, dropped

	if got := <-ch; got.Documents != 1 {
		t.Fatalf("expected first event, got %+v", got)
	}
	select {
	case got := <-ch:
		t.Fatalf("second event should have been dropped, got %+v", got)
	default:
	}
}

func TestUnregisterClosesChannel(t *testing.T) {
	h := NewHub(1)
	id, ch := h.Register()
	h.Unregister(id)
	h.Unregister(id) // safe to repeat

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after Unregister")
	}
	if h.Size() != 0 {
		t.Fatalf("size = %d", h.Size())
	}
}
