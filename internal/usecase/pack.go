package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"mantis/internal/domain"
	"mantis/internal/port"
)

const (
	// NoContextMessage stands in for the context when retrieval found nothing.
	NoContextMessage = "No relevant context found."

	// MaxChunkChars caps each chunk's text in the assembled context.
	MaxChunkChars = 800

	unknownSource = "Unknown"
	unknownPage   = "?"
)

// AssembleContext renders chunks as numbered, cited sections:
//
//	[Source 1: <source>, Page <page>]
//	<first 800 characters of text>
//
// separated by blank lines.
func AssembleContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return NoContextMessage
	}

	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d: %s, Page %s]\n%s",
			i+1, sourceLabel(c.Source), pageLabel(c.Page), truncateRunes(c.Text, MaxChunkChars)))
	}
	return strings.Join(parts, "\n\n")
}

func sourceLabel(source string) string {
	if strings.TrimSpace(source) == "" {
		return unknownSource
	}
	return source
}

func pageLabel(page int) string {
	if page <= 0 {
		return unknownPage
	}
	return strconv.Itoa(page)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// PackUseCase builds the context block plus a structured view of what went in.
type PackUseCase struct {
	tokenizer port.Tokenizer
}

func NewPackUseCase(tokenizer port.Tokenizer) *PackUseCase {
	return &PackUseCase{tokenizer: tokenizer}
}

// Pack assembles the context for query. Snippets carry the same truncated text
// the model sees.
func (u *PackUseCase) Pack(query string, chunks []domain.ScoredChunk) domain.PackedContext {
	context := AssembleContext(domain.Chunks(chunks))

	snippets := make([]domain.Snippet, 0, len(chunks))
	for _, sc := range chunks {
		snippets = append(snippets, domain.Snippet{
			Source:   sourceLabel(sc.Chunk.Source),
			Page:     sc.Chunk.Page,
			Platform: sc.Chunk.Platform,
			Score:    sc.Score,
			Text:     truncateRunes(sc.Chunk.Text, MaxChunkChars),
		})
	}

	return domain.PackedContext{
		Query:           query,
		Context:         context,
		EstimatedTokens: u.tokenizer.CountTokens(context),
		Snippets:        snippets,
	}
}
