package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"mantis/internal/domain"
)

const (
	DefaultSize = 100
	DefaultTTL  = 5 * time.Minute
)

// QueryCache is an LRU cache of ranked results with a TTL. Entries from an older
// knowledge base generation are never returned.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	maxSize int
	ttl     time.Duration
	gen     uint64
	now     func() time.Time

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key      string
	results  []domain.ScoredChunk
	storedAt time.Time
	gen      uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Scoring is case-insensitive, so the key folds case and surrounding space.
func cacheKey(query string, topK int) string {
	normalized := strings.ToLower(strings.TrimSpace(query)) + "\x00" + strconv.Itoa(topK)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(query string, topK int) ([]domain.ScoredChunk, bool) {
	key := cacheKey(query, topK)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if entry.gen != c.gen || c.now().Sub(entry.storedAt) > c.ttl {
		c.removeElement(el)
		c.misses++
		return nil, false
	}

	c.lru.MoveToBack(el)
	c.hits++
	return cloneResults(entry.results), true
}

func (c *QueryCache) Put(query string, topK int, results []domain.ScoredChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(cacheKey(query, topK), c.gen, results)
}

// PutIfCurrent stores results only while the cache is still at gen, the value
// Generation returned before the results were computed. It reports whether the
// entry was stored.
func (c *QueryCache) PutIfCurrent(query string, topK int, gen uint64, results []domain.ScoredChunk) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.put(cacheKey(query, topK), gen, results)
	return true
}

// Generation returns the current invalidation counter.
func (c *QueryCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *QueryCache) put(key string, gen uint64, results []domain.ScoredChunk) {
	entry := &cacheEntry{
		key:      key,
		results:  cloneResults(results),
		storedAt: c.now(),
		gen:      gen,
	}

	if el, ok := c.entries[key]; ok {
		el.Value = entry
		c.lru.MoveToBack(el)
		return
	}

	for c.lru.Len() >= c.maxSize {
		c.removeElement(c.lru.Front())
	}
	c.entries[key] = c.lru.PushBack(entry)
}

// Invalidate drops every entry and bumps the generation.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.gen++
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns hit and miss counters.
func (c *QueryCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *QueryCache) removeElement(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.lru.Remove(el)
}

func cloneResults(results []domain.ScoredChunk) []domain.ScoredChunk {
	if results == nil {
		return nil
	}
	out := make([]domain.ScoredChunk, len(results))
	copy(out, results)
	return out
}

type Retriever interface {
	Search(query string, k int) ([]domain.ScoredChunk, error)
}

// CachedRetriever answers repeated queries from a QueryCache.
type CachedRetriever struct {
	retriever Retriever
	cache     *QueryCache
}

func NewCachedRetriever(retriever Retriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{
		retriever: retriever,
		cache:     cache,
	}
}

func (r *CachedRetriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	if results, hit := r.cache.Get(query, k); hit {
		return results, nil
	}

	gen := r.cache.Generation()
	results, err := r.retriever.Search(query, k)
	if err != nil {
		return nil, err
	}

	// a swap during the search leaves these results on the old snapshot
	r.cache.PutIfCurrent(query, k, gen, results)
	return results, nil
}

// Invalidate is suitable as a memstore.Corpus swap hook.
func (r *CachedRetriever) Invalidate(*domain.KnowledgeBase) {
	r.cache.Invalidate()
}
