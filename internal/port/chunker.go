package port

import "mantis/internal/domain"

// Chunker splits extracted document text into chunks.
type Chunker interface {
	Chunk(doc domain.Document, content string) ([]domain.Chunk, error)
}
