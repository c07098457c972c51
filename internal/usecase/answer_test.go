package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/adapter/memstore"
	"mantis/internal/adapter/retriever"
	"mantis/internal/domain"
	"mantis/internal/logging"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) ModelName(context.Context) (string, error) { return "fake", nil }

func testCorpus() *memstore.Corpus {
	return memstore.NewCorpus([]domain.Chunk{
		{ID: "doc1_p31", Source: "AH-1F MANUAL.pdf", Page: 31, Platform: "AH-1",
			Text: "The AH-1F helicopter engine oil pressure should be maintained between 30 and 40 psi."},
		{ID: "doc2_p15", Source: "RC-12D MANUAL.pdf", Page: 15, Platform: "RC-12",
			Text: "RC-12 fuel system capacity is 260 US gallons."},
	}, "test")
}

func newAnswerUseCase(corpus *memstore.Corpus, gen *fakeGenerator) *AnswerUseCase {
	tok := analyzer.NewQueryTokenizer()
	log := logging.Discard()
	return NewAnswerUseCase(
		retriever.NewPlatformGuard(),
		NewRetrieveUseCase(retriever.NewKeywordRetriever(corpus, tok), 3, log),
		NewPackUseCase(tok),
		gen,
		corpus,
		log,
	)
}

func TestAnswer_Answered(t *testing.T) {
	gen := &fakeGenerator{reply: "Maintain 30 to 40 psi (Source 1)."}
	uc := newAnswerUseCase(testCorpus(), gen)

	ans, err := uc.Answer(context.Background(), "AH-1 oil pressure")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAnswered, ans.Outcome)
	assert.Equal(t, gen.reply, ans.Text)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "doc1_p31", ans.Sources[0].Chunk.ID)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "[Source 1: AH-1F MANUAL.pdf, Page 31]")
	assert.Contains(t, gen.prompts[0], "Question: AH-1 oil pressure")
}

func TestAnswer_NoResultsSkipsModel(t *testing.T) {
	gen := &fakeGenerator{}
	uc := newAnswerUseCase(testCorpus(), gen)

	ans, err := uc.Answer(context.Background(), "xyz123 nonexistent")
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoResults, ans.Outcome)
	assert.Equal(t, NoResultsMessage, ans.Text)
	assert.Empty(t, ans.Sources)
	assert.Empty(t, gen.prompts)
}

func TestAnswer_StopwordQueryIsNoResults(t *testing.T) {
	gen := &fakeGenerator{}
	ans, err := newAnswerUseCase(testCorpus(), gen).Answer(context.Background(), "what is the")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoResults, ans.Outcome)
}

func TestAnswer_UnsupportedPlatform(t *testing.T) {
	gen := &fakeGenerator{}
	uc := newAnswerUseCase(testCorpus(), gen)

	ans, err := uc.Answer(context.Background(), "F-16 engine start procedure")
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnsupported, ans.Outcome)
	assert.Equal(t, "f-16", ans.UnsupportedForm)
	assert.Equal(t, "I don't have information about F-16 in the loaded manuals.\nThe available manuals cover: AH-1, RC-12.", ans.Text)
	assert.Empty(t, gen.prompts)
}

func TestAnswer_GenerationError(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrLLMUnavailable}
	uc := newAnswerUseCase(testCorpus(), gen)

	ans, err := uc.Answer(context.Background(), "RC-12 fuel capacity")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))
	assert.NotEmpty(t, ans.Sources, "sources survive a failed generation")
}

func TestPrepare_DoesNotGenerate(t *testing.T) {
	gen := &fakeGenerator{}
	ans, err := newAnswerUseCase(testCorpus(), gen).Prepare("RC-12 fuel capacity")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAnswered, ans.Outcome)
	assert.Contains(t, ans.Prompt, "<|im_start|>assistant\n")
	assert.Empty(t, gen.prompts)
}

func TestAnswer_SeesSwappedCorpus(t *testing.T) {
	corpus := testCorpus()
	uc := newAnswerUseCase(corpus, &fakeGenerator{reply: "ok"})

	corpus.Swap([]domain.Chunk{
		{ID: "n1", Source: "UH-60.pdf", Page: 4, Platform: "UH-60", Text: "UH-60 tail rotor gearbox oil level check."},
	}, "v2")

	ans, err := uc.Answer(context.Background(), "UH-60 tail rotor gearbox")
	require.NoError(t, err)
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "n1", ans.Sources[0].Chunk.ID)
}

func TestUnsupportedMessage_EmptyCorpus(t *testing.T) {
	assert.Equal(t, "I don't have information about BRADLEY in the loaded manuals.", UnsupportedMessage("bradley", nil))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "answered", OutcomeAnswered.String())
	assert.Equal(t, "unsupported", OutcomeUnsupported.String())
	assert.Equal(t, "no_results", OutcomeNoResults.String())
}
