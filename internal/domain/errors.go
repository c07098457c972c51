package domain

import "errors"

var (
	// ErrKnowledgeBaseNotFound indicates the knowledge base file does not exist.
	ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")

	// ErrEmptyKnowledgeBase indicates a knowledge base with no chunks.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")

	// ErrMalformedRecord indicates a knowledge base record that is not a chunk.
	ErrMalformedRecord = errors.New("malformed knowledge base record")

	// ErrUnsupportedFormat indicates a file extension no store understands.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractorUnavailable indicates the page text extractor could not be run.
	ErrExtractorUnavailable = errors.New("text extractor unavailable")

	// ErrLLMUnavailable indicates the generation server could not be reached.
	ErrLLMUnavailable = errors.New("generation server unavailable")

	// ErrLLMTimeout indicates the generation request timed out.
	ErrLLMTimeout = errors.New("generation request timed out")

	// ErrLLMResponse indicates the server answered with an error or an unexpected body.
	ErrLLMResponse = errors.New("unexpected generation response")
)
