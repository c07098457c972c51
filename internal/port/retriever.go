package port

import "mantis/internal/domain"

// Retriever defines the interface for searching the knowledge base.
type Retriever interface {
	// Search returns at most k chunks, best first.
	Search(query string, k int) ([]domain.ScoredChunk, error)
}
