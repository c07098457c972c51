package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/domain"
)

func TestAssembleContext_Empty(t *testing.T) {
	assert.Equal(t, NoContextMessage, AssembleContext(nil))
	assert.Equal(t, NoContextMessage, AssembleContext([]domain.Chunk{}))
}

func TestAssembleContext_Format(t *testing.T) {
	chunks := []domain.Chunk{
		{Source: "AH-1F MANUAL.pdf", Page: 31, Text: "Oil pressure 30-40 psi."},
		{Source: "RC-12D MANUAL.pdf", Page: 15, Text: "Fuel capacity 260 gallons."},
	}

	want := "[Source 1: AH-1F MANUAL.pdf, Page 31]\nOil pressure 30-40 psi.\n\n" +
		"[Source 2: RC-12D MANUAL.pdf, Page 15]\nFuel capacity 260 gallons."
	assert.Equal(t, want, AssembleContext(chunks))
}

func TestAssembleContext_Placeholders(t *testing.T) {
	got := AssembleContext([]domain.Chunk{{Text: "orphan page"}})
	assert.Equal(t, "[Source 1: Unknown, Page ?]\norphan page", got)

	got = AssembleContext([]domain.Chunk{{Source: "  ", Page: -2}})
	assert.Equal(t, "[Source 1: Unknown, Page ?]\n", got)
}

func TestAssembleContext_TruncatesAt800(t *testing.T) {
	long := strings.Repeat("a", 1000)
	got := AssembleContext([]domain.Chunk{{Source: "s", Page: 1, Text: long}})

	body := strings.SplitN(got, "\n", 2)[1]
	assert.Len(t, body, MaxChunkChars)

	exact := strings.Repeat("b", MaxChunkChars)
	got = AssembleContext([]domain.Chunk{{Source: "s", Page: 1, Text: exact}})
	assert.True(t, strings.HasSuffix(got, exact))
}

func TestAssembleContext_TruncatesByRune(t *testing.T) {
	text := strings.Repeat("°", 900)
	got := AssembleContext([]domain.Chunk{{Source: "s", Page: 1, Text: text}})

	body := strings.SplitN(got, "\n", 2)[1]
	assert.Equal(t, MaxChunkChars, len([]rune(body)))
}

func TestAssembleContext_OnePerChunkInOrder(t *testing.T) {
	chunks := make([]domain.Chunk, 5)
	for i := range chunks {
		chunks[i] = domain.Chunk{Source: "m.pdf", Page: i + 1, Text: "t"}
	}
	got := AssembleContext(chunks)

	assert.Equal(t, 5, strings.Count(got, "[Source "))
	assert.Less(t, strings.Index(got, "[Source 1:"), strings.Index(got, "[Source 5:"))
}

func TestPackUseCase_Pack(t *testing.T) {
	packer := NewPackUseCase(analyzer.NewQueryTokenizer())
	scored := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Source: "AH-1F.pdf", Page: 31, Platform: "AH-1", Text: strings.Repeat("x ", 600)}, Score: 12},
	}

	packed := packer.Pack("AH-1 oil pressure", scored)

	assert.Equal(t, "AH-1 oil pressure", packed.Query)
	assert.Equal(t, AssembleContext(domain.Chunks(scored)), packed.Context)
	require.Len(t, packed.Snippets, 1)
	assert.Equal(t, 12, packed.Snippets[0].Score)
	assert.Equal(t, domain.Platform("AH-1"), packed.Snippets[0].Platform)
	assert.Len(t, packed.Snippets[0].Text, MaxChunkChars)
	assert.Positive(t, packed.EstimatedTokens)
}

func TestPackUseCase_PackEmpty(t *testing.T) {
	packed := NewPackUseCase(analyzer.NewQueryTokenizer()).Pack("q", nil)

	assert.Equal(t, NoContextMessage, packed.Context)
	assert.Empty(t, packed.Snippets)
	assert.NotNil(t, packed.Snippets)
}
