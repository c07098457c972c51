package port

import "mantis/internal/domain"

// Packer turns ranked chunks into the context block handed to the model.
type Packer interface {
	Pack(query string, chunks []domain.ScoredChunk) domain.PackedContext
}
