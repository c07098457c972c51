package memstore

import (
	"sync/atomic"
	"time"

	"mantis/internal/domain"
)

// Corpus holds the knowledge base snapshot shared by concurrent retrievals.
// Snapshots are never mutated; Swap replaces the whole pointer.
type Corpus struct {
	current atomic.Pointer[domain.KnowledgeBase]
	gen     atomic.Uint64
	onSwap  []func(*domain.KnowledgeBase)
}

// NewCorpus wraps chunks in an initial snapshot. The slice is copied.
func NewCorpus(chunks []domain.Chunk, origin string) *Corpus {
	c := &Corpus{}
	c.current.Store(newSnapshot(chunks, origin))
	return c
}

func newSnapshot(chunks []domain.Chunk, origin string) *domain.KnowledgeBase {
	owned := make([]domain.Chunk, len(chunks))
	copy(owned, chunks)
	return &domain.KnowledgeBase{
		Chunks:   owned,
		Origin:   origin,
		LoadedAt: time.Now(),
	}
}

// Snapshot returns the current knowledge base. Callers must treat it as read-only.
func (c *Corpus) Snapshot() *domain.KnowledgeBase {
	return c.current.Load()
}

// Swap installs a new snapshot built from chunks and notifies subscribers.
func (c *Corpus) Swap(chunks []domain.Chunk, origin string) *domain.KnowledgeBase {
	kb := newSnapshot(chunks, origin)
	c.current.Store(kb)
	c.gen.Add(1)
	for _, fn := range c.onSwap {
		fn(kb)
	}
	return kb
}

// Generation counts swaps since creation.
func (c *Corpus) Generation() uint64 {
	return c.gen.Load()
}

// OnSwap registers fn to run after every Swap. Register before sharing the corpus.
func (c *Corpus) OnSwap(fn func(*domain.KnowledgeBase)) {
	c.onSwap = append(c.onSwap, fn)
}
