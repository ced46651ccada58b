package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"flashdeck/internal/events"
)

// KnownCardSource loads known-card id sets from the progress store
type KnownCardSource interface {
	GetKnownCardIDs(deckID int64) (map[int64]struct{}, error)
	GetKnownCardIDsBatch(deckIDs []int64) (map[int64]map[int64]struct{}, error)
}

// KnownCards is a read-through cache of per-deck known-card id sets.
// Entries are evicted the moment the progress store reports a change for
// their deck; the entry bound and TTL are a safety net on top of that.
// Returned sets are shared and must not be mutated by callers.
type KnownCards struct {
	source      KnownCardSource
	entries     *expirable.LRU[int64, map[int64]struct{}]
	unsubscribe func()
}

// NewKnownCards creates a cache over source, subscribed to hub for
// synchronous invalidation. maxEntries bounds the cached deck count and
// ttl caps how long an entry may live without being evicted by an event.
func NewKnownCards(source KnownCardSource, hub *events.Hub, maxEntries int, ttl time.Duration) *KnownCards {
	c := &KnownCards{
		source:  source,
		entries: expirable.NewLRU[int64, map[int64]struct{}](maxEntries, nil, ttl),
	}
	c.unsubscribe = hub.Subscribe(c.Invalidate)
	return c
}

// Get returns the known-card set for a deck, loading it on a miss.
// A deck with no known cards yields an empty set.
func (c *KnownCards) Get(deckID int64) (map[int64]struct{}, error) {
	if known, ok := c.entries.Get(deckID); ok {
		return known, nil
	}
	return c.load(deckID)
}

// GetBatch returns known-card sets for several decks, loading all misses in
// one store query. Decks with no known cards are omitted from the result,
// matching the store's batch contract.
func (c *KnownCards) GetBatch(deckIDs []int64) (map[int64]map[int64]struct{}, error) {
	result := make(map[int64]map[int64]struct{})
	var misses []int64

	for _, id := range deckIDs {
		if known, ok := c.entries.Get(id); ok {
			if len(known) > 0 {
				result[id] = known
			}
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return result, nil
	}

	loaded, err := c.source.GetKnownCardIDsBatch(misses)
	if err != nil {
		return nil, fmt.Errorf("failed to load known cards: %w", err)
	}

	for _, id := range misses {
		known := loaded[id]
		if known == nil {
			// cache the emptiness too, so the next read stays local
			known = make(map[int64]struct{})
		}
		c.entries.Add(id, known)
		if len(known) > 0 {
			result[id] = known
		}
	}

	return result, nil
}

// KnownCount returns how many cards of a deck are marked known
func (c *KnownCards) KnownCount(deckID int64) (int, error) {
	known, err := c.Get(deckID)
	if err != nil {
		return 0, err
	}
	return len(known), nil
}

// Invalidate drops the cached entry for a deck. Dropping an absent entry
// is a harmless no-op, so duplicate notifications are safe.
func (c *KnownCards) Invalidate(deckID int64) {
	c.entries.Remove(deckID)
}

// Reload bypasses the cache and reloads the deck's set from the store.
// This is the resilience fallback for a suspected stale entry, not a
// normal-path read.
func (c *KnownCards) Reload(deckID int64) (map[int64]struct{}, error) {
	c.entries.Remove(deckID)
	return c.load(deckID)
}

// Close detaches the cache from the hub. Used when the owning
// session/connection ends.
func (c *KnownCards) Close() {
	c.unsubscribe()
}

func (c *KnownCards) load(deckID int64) (map[int64]struct{}, error) {
	known, err := c.source.GetKnownCardIDs(deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load known cards: %w", err)
	}
	c.entries.Add(deckID, known)
	return known, nil
}
