package port

import "mantis/internal/domain"

// KnowledgeBaseStore loads and saves the whole corpus in one piece.
type KnowledgeBaseStore interface {
	Load() ([]domain.Chunk, error)

	Save(chunks []domain.Chunk) error

	// Path is the file backing the store.
	Path() string

	Close() error
}
