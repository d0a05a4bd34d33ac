// Package memo remembers analysis results by the content that produced them.
package memo

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/okian/techmentor/internal/domain/analysis"
	"golang.org/x/text/unicode/norm"
)

// Mode distinguishes live model answers from offline demo answers so the two
// never share an entry.
type Mode string

// Known modes.
const (
	ModeLive    Mode = "live"
	ModeOffline Mode = "offline"
)

// Key identifies one analysis input. Equal inputs give equal keys.
type Key string

// NewKey hashes the organizer, message, poster hash and mode into a key.
// imageHash is the hex digest of the normalised poster, or "" when none.
// Text is NFC-normalised first, so composed and decomposed forms of the
// same input share a key.
func NewKey(organizer, message, imageHash string, mode Mode) Key {
	h := sha256.New()
	for _, part := range []string{norm.NFC.String(organizer), norm.NFC.String(message), imageHash, string(mode)} {
		// length-prefix every part so ("ab","c") and ("a","bc") differ
		var n [8]byte
		l := uint64(len(part))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Cache stores successful analysis results by key.
type Cache interface {
	// Get returns a copy of the result stored for key.
	Get(ctx context.Context, key Key) (analysis.Result, bool)

	// Put stores r under key, replacing any previous entry.
	Put(ctx context.Context, key Key, r analysis.Result)

	Len() int64
}

type entry struct {
	key    Key
	result analysis.Result
}

// inMemoryCache keeps results in a map with an insertion-ordered list used
// for eviction in bounded mode.
type inMemoryCache struct {
	mu      sync.Mutex
	entries map[Key]*list.Element
	order   *list.List // front = newest
	maxSize int
	size    atomic.Int64
}

// NewInMemoryCache creates a new cache with configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 256,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[Key]*list.Element)
	c.order = list.New()
	return c
}

func (c *inMemoryCache) Get(_ context.Context, key Key) (analysis.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return maps.Clone(el.Value.(*entry).result), true
}

func (c *inMemoryCache) Put(_ context.Context, key Key, r analysis.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).result = maps.Clone(r)
		c.order.MoveToFront(el)
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, result: maps.Clone(r)})
	c.size.Add(1)
}

// evictOldest drops the least recently stored entry.
// Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
	c.size.Add(-1)
}

func (c *inMemoryCache) Len() int64 {
	return c.size.Load()
}
