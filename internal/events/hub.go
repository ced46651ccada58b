package events

import "sync"

// DeckListener receives the id of a deck whose progress data just changed.
type DeckListener func(deckID int64)

// Hub is a synchronous in-process notifier for deck progress changes.
// Publish invokes every listener on the caller's goroutine before returning,
// so a cache subscribed here is evicted within the mutating call stack.
type Hub struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]DeckListener
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{listeners: make(map[int]DeckListener)}
}

// Subscribe registers a listener and returns a function that removes it
func (h *Hub) Subscribe(fn DeckListener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Publish notifies all listeners of a change to the given deck
func (h *Hub) Publish(deckID int64) {
	h.mu.RLock()
	fns := make([]DeckListener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(deckID)
	}
}
