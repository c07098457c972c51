package memstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantis/internal/domain"
)

func sampleChunks(n int, prefix string) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:       fmt.Sprintf("%s%d", prefix, i),
			Text:     "page text",
			Page:     i + 1,
			Platform: domain.PlatformUnknown,
		}
	}
	return chunks
}

func TestCorpus_SnapshotIsCopy(t *testing.T) {
	chunks := sampleChunks(3, "a")
	c := NewCorpus(chunks, "kb.json")

	chunks[0].Text = "mutated"

	kb := c.Snapshot()
	require.Equal(t, 3, kb.Len())
	assert.Equal(t, "page text", kb.Chunks[0].Text)
	assert.Equal(t, "kb.json", kb.Origin)
	assert.False(t, kb.LoadedAt.IsZero())
}

func TestCorpus_SwapReplacesWholeSnapshot(t *testing.T) {
	c := NewCorpus(sampleChunks(2, "old"), "v1")
	before := c.Snapshot()

	var notified *domain.KnowledgeBase
	c.OnSwap(func(kb *domain.KnowledgeBase) { notified = kb })

	after := c.Swap(sampleChunks(5, "new"), "v2")

	assert.Equal(t, 2, before.Len(), "old snapshot must not change")
	assert.Equal(t, "old0", before.Chunks[0].ID)
	assert.Equal(t, 5, c.Snapshot().Len())
	assert.Same(t, after, notified)
	assert.Equal(t, uint64(1), c.Generation())
}

func TestCorpus_ConcurrentReadersDuringSwap(t *testing.T) {
	c := NewCorpus(sampleChunks(10, "a"), "v1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				kb := c.Snapshot()
				n := kb.Len()
				// a snapshot is internally consistent: either all "a" or all "b"
				if n > 0 {
					first := kb.Chunks[0].ID[:1]
					for _, ch := range kb.Chunks {
						if ch.ID[:1] != first {
							t.Errorf("mixed snapshot: %s vs %s", ch.ID, first)
							return
						}
					}
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			c.Swap(sampleChunks(7, "b"), "v2")
		} else {
			c.Swap(sampleChunks(10, "a"), "v1")
		}
	}
	wg.Wait()
}

func TestKnowledgeBase_Platforms(t *testing.T) {
	c := NewCorpus([]domain.Chunk{
		{ID: "1", Text: "x", Platform: "AH-1"},
		{ID: "2", Text: "x", Platform: domain.PlatformUnknown},
		{ID: "3", Text: "x", Platform: "RC-12"},
		{ID: "4", Text: "x", Platform: "AH-1"},
	}, "")

	assert.Equal(t, []domain.Platform{"AH-1", "RC-12"}, c.Snapshot().Platforms())
}
