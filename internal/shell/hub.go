package shell

import (
	"sync"
)

// Hub is a Viewport fed by width reports, e.g. resize beacons sent by the
// browser rendering the console.
type Hub struct {
	mu        sync.Mutex
	width     int
	listeners []hubListener
	nextID    int
}

type hubListener struct {
	id int
	fn func(int)
}

// NewHub creates a hub with an initial width (0 means unknown, treated as desktop)
func NewHub(width int) *Hub {
	return &Hub{width: width}
}

func (h *Hub) Width() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width
}

func (h *Hub) OnResize(fn func(int)) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, hubListener{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, l := range h.listeners {
			if l.id == id {
				h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// Resize records a new width and notifies listeners in registration order
func (h *Hub) Resize(width int) {
	h.mu.Lock()
	if width == h.width {
		h.mu.Unlock()
		return
	}
	h.width = width
	listeners := make([]hubListener, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, l := range listeners {
		l.fn(width)
	}
}

// Listeners returns the number of registered resize listeners
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
