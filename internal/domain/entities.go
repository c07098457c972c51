package domain

import "time"

// Platform identifies the equipment family a manual page or query concerns.
type Platform string

// PlatformUnknown tags text that matches no known platform.
const PlatformUnknown Platform = "UNKNOWN"

// Chunk is one page of a technical manual.
type Chunk struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	Page     int      `json:"page"`
	Platform Platform `json:"platform"`
}

// KnowledgeBase is an immutable, ordered snapshot of the corpus.
type KnowledgeBase struct {
	Chunks   []Chunk
	Origin   string
	LoadedAt time.Time
}

// Len returns the number of chunks in the snapshot. A nil snapshot is empty.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.Chunks)
}

// Platforms returns the distinct known platforms in corpus order.
func (kb *KnowledgeBase) Platforms() []Platform {
	if kb == nil {
		return nil
	}
	seen := make(map[Platform]struct{})
	var out []Platform
	for _, c := range kb.Chunks {
		if c.Platform == "" || c.Platform == PlatformUnknown {
			continue
		}
		if _, ok := seen[c.Platform]; ok {
			continue
		}
		seen[c.Platform] = struct{}{}
		out = append(out, c.Platform)
	}
	return out
}

type ScoredChunk struct {
	Chunk Chunk `json:"chunk"`
	Score int   `json:"score"`
}

// Chunks strips scores, preserving order.
func Chunks(scored []ScoredChunk) []Chunk {
	out := make([]Chunk, len(scored))
	for i, s := range scored {
		out[i] = s.Chunk
	}
	return out
}

// Document is a single manual file discovered by ingestion.
type Document struct {
	ID       string
	Path     string
	Name     string
	Platform Platform
	ModTime  time.Time
}

type PackedContext struct {
	Query           string    `json:"query"`
	Context         string    `json:"context"`
	EstimatedTokens int       `json:"estimated_tokens"`
	Snippets        []Snippet `json:"snippets"`
}

type Snippet struct {
	Source   string   `json:"source"`
	Page     int      `json:"page"`
	Platform Platform `json:"platform"`
	Score    int      `json:"score"`
	Text     string   `json:"text"`
}

// Stats summarises a knowledge base for reporting.
type Stats struct {
	TotalChunks int
	ByPlatform  map[Platform]int
}

// ComputeStats counts chunks per platform.
func ComputeStats(chunks []Chunk) Stats {
	stats := Stats{
		TotalChunks: len(chunks),
		ByPlatform:  make(map[Platform]int),
	}
	for _, c := range chunks {
		p := c.Platform
		if p == "" {
			p = PlatformUnknown
		}
		stats.ByPlatform[p]++
	}
	return stats
}
