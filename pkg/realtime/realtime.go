// Package realtime provides a lightweight in-process publish/subscribe hub
// used to fan out index-reload events to live search sessions. When the
// search payload is rebuilt and swapped in, every connected WebSocket
// session gets notified so it can re-run its last query against the fresh
// index.
//
// Delivery is best effort: a slow listener drops events rather than
// backpressuring the reload path. There is no persistence or replay.
package realtime

import (
	"sync"
	"time"
)

// ReloadEvent announces that a fresh search session replaced the previous
// one.
type ReloadEvent struct {
	// Documents is the size of the freshly loaded index.
	Documents int `json:"documents"`

	// LoadedAt is when the swap happened.
	LoadedAt time.Time `json:"loaded_at"`
}

// Hub is an in-memory fan-out dispatcher. Each registered listener
// receives events on its own buffered channel; a full buffer drops the
// event for that listener only. Concurrency-safe.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan ReloadEvent
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// bufSize <= 0 selects a default of 4; reload events are rare.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 4
	}
	return &Hub{
		listeners: make(map[uint64]chan ReloadEvent),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must Unregister(id) when done.
func (h *Hub) Register() (uint64, <-chan ReloadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan ReloadEvent, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are
// ignored; calling twice is safe.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers an event to all listeners, dropping it for any whose
// buffer is full.
func (h *Hub) Broadcast(ev ReloadEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Size returns the current number of listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
