package retriever

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/domain"
)

type staticCorpus struct {
	kb *domain.KnowledgeBase
}

func (s staticCorpus) Snapshot() *domain.KnowledgeBase { return s.kb }

func newTestQuery(raw string) Query {
	return NewQuery(analyzer.NewQueryTokenizer(), raw)
}

func manualCorpus() []domain.Chunk {
	return []domain.Chunk{
		{
			ID:       "doc1_p31",
			Text:     "The AH-1F helicopter engine oil pressure should be maintained between 30 and 40 psi during normal operation.",
			Source:   "AH-1F ATTACK HELICOPTER TECHNICAL OPERATOR MANUAL.pdf",
			Page:     31,
			Platform: "AH-1",
		},
		{
			ID:       "doc2_p15",
			Text:     "RC-12 fuel system capacity is 260 US gallons. The fuel boost pumps are located in both forward and aft fuel cells.",
			Source:   "RC-12D MAINTENANCE TEST FLIGHT MANUAL.pdf",
			Page:     15,
			Platform: "RC-12",
		},
		{
			ID:       "doc3_p45",
			Text:     "OH-58 main rotor blade inspection procedure: Check for cracks, corrosion, and damage to the leading edge.",
			Source:   "OH-58AC TECHNICAL MANUAL.pdf",
			Page:     45,
			Platform: "OH-58",
		},
		{
			ID:       "doc4_p22",
			Text:     "C-12 aircraft hydraulic system operates at 3000 psi. Both system 1 and system 2 reservoirs should be checked daily.",
			Source:   "C-12C AIRCRAFT MAINTENANCE.pdf",
			Page:     22,
			Platform: "C-12",
		},
		{
			ID:       "doc5_p33",
			Text:     "UH-1 transmission oil temperature should not exceed 110 degrees Celsius. High temperature indicates cooling system issues.",
			Source:   "UH-1 HELICOPTER MAINTENANCE.pdf",
			Page:     33,
			Platform: "UH-1",
		},
	}
}

func TestRank_AH1OilPressure(t *testing.T) {
	results := Rank(newTestQuery("AH-1 oil pressure"), manualCorpus(), 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "doc1_p31", results[0].Chunk.ID)
	// "ah-1f" is not a whole-word hit; oil + pressure + platform bonus.
	assert.Equal(t, 12, results[0].Score)
	for _, r := range results {
		assert.NotEqual(t, "doc5_p33", r.Chunk.ID, "UH-1 chunk should be penalised below threshold")
	}
}

func TestRank_RC12FuelCapacity(t *testing.T) {
	results := Rank(newTestQuery("RC-12 fuel capacity"), manualCorpus(), 3)

	require.Len(t, results, 2)
	assert.Equal(t, "doc2_p15", results[0].Chunk.ID)
	assert.Equal(t, 15, results[0].Score)
	// "c-12" is a substring of "rc-12", so the C-12 chunk collects the platform bonus.
	assert.Equal(t, "doc4_p22", results[1].Chunk.ID)
	assert.Equal(t, PlatformBonus, results[1].Score)
}

func TestRank_EmptyOrStopwordQuery(t *testing.T) {
	corpus := manualCorpus()

	for _, query := range []string{"", "   ", "what is the", "the is a"} {
		assert.Empty(t, Rank(newTestQuery(query), corpus, 3), "query %q", query)
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	assert.Empty(t, Rank(newTestQuery("oil pressure"), nil, 3))
	assert.Empty(t, Rank(newTestQuery("oil pressure"), []domain.Chunk{}, 3))
}

func TestRank_NoChunkMeetsThreshold(t *testing.T) {
	assert.Empty(t, Rank(newTestQuery("xyz123 nonexistent"), manualCorpus(), 3))
	// a single hit scores 1, below MinScore
	assert.Empty(t, Rank(newTestQuery("corrosion"), manualCorpus(), 3))
}

func TestRank_LimitAndUniqueness(t *testing.T) {
	var chunks []domain.Chunk
	for i := 0; i < 20; i++ {
		chunks = append(chunks, domain.Chunk{
			ID:       fmt.Sprintf("c%d", i),
			Text:     "engine oil pressure check",
			Platform: domain.PlatformUnknown,
		})
	}

	for _, limit := range []int{1, 3, 7, 20, 50} {
		results := Rank(newTestQuery("engine oil pressure"), chunks, limit)
		assert.LessOrEqual(t, len(results), limit)

		seen := make(map[string]bool)
		for _, r := range results {
			assert.False(t, seen[r.Chunk.ID], "duplicate %s", r.Chunk.ID)
			seen[r.Chunk.ID] = true
		}
	}

	assert.Empty(t, Rank(newTestQuery("engine oil pressure"), chunks, 0))
	assert.Empty(t, Rank(newTestQuery("engine oil pressure"), chunks, -1))
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "a", Text: "oil pressure gauge"},
		{ID: "b", Text: "oil pressure gauge"},
		{ID: "strong", Text: "oil pressure gauge, oil pressure switch, oil pressure line"},
		{ID: "c", Text: "oil pressure gauge"},
		{ID: "d", Text: "oil pressure gauge"},
	}

	results := Rank(newTestQuery("oil pressure"), chunks, 10)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Chunk.ID
	}
	assert.Equal(t, []string{"strong", "a", "b", "c", "d"}, ids)
}

func TestRank_SamePlatformWinsOverEqualKeywords(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "uh1", Text: "engine oil pressure limits", Platform: "UH-1"},
		{ID: "oh58", Text: "engine oil pressure limits", Platform: "OH-58"},
		{ID: "ah1", Text: "engine oil pressure limits", Platform: "AH-1"},
	}

	results := Rank(newTestQuery("AH-1 engine oil pressure"), chunks, 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "ah1", results[0].Chunk.ID)
	for _, r := range results[1:] {
		assert.Less(t, r.Score, results[0].Score)
	}
}

func TestScore_Components(t *testing.T) {
	q := newTestQuery("hydraulic pressure")

	plain := domain.Chunk{Text: "hydraulic lines and pressure", Platform: domain.PlatformUnknown}
	assert.Equal(t, 2, Score(q, plain))

	phrase := domain.Chunk{Text: "check hydraulic pressure daily", Platform: domain.PlatformUnknown}
	assert.Equal(t, 2+PhraseBonus, Score(q, phrase))
}

func TestScore_WordBoundaries(t *testing.T) {
	q := newTestQuery("oil")

	chunk := domain.Chunk{Text: "Boil the coil; oil-soaked rag. OIL level.", Platform: domain.PlatformUnknown}
	// "boil" and "coil" do not count; "oil-soaked" and "OIL" do.
	assert.Equal(t, 2, Score(q, chunk))
}

func TestScore_PenaltyAppliedOnce(t *testing.T) {
	q := newTestQuery("AH-1 UH-60 rotor")
	chunk := domain.Chunk{
		Text:     "rotor rotor rotor rotor rotor rotor rotor rotor",
		Platform: "OH-58",
	}

	assert.Equal(t, 8-PlatformPenalty, Score(q, chunk))
}

func TestScore_UnknownPlatformNeverAdjusted(t *testing.T) {
	q := newTestQuery("AH-1 rotor")

	unknown := domain.Chunk{Text: "rotor", Platform: domain.PlatformUnknown}
	blank := domain.Chunk{Text: "rotor"}
	assert.Equal(t, 1, Score(q, unknown))
	assert.Equal(t, 1, Score(q, blank))
}

func TestScore_PenaltyListIsLegacySubset(t *testing.T) {
	// HMMWV is a detection tag but not a legacy penalty form, so an HMMWV query
	// does not penalise an AH-1 chunk.
	q := newTestQuery("hmmwv oil filter")
	chunk := domain.Chunk{Text: "oil filter", Platform: "AH-1"}

	assert.Equal(t, 2, Score(q, chunk))
}

func TestScore_MonotonicInOccurrences(t *testing.T) {
	q := newTestQuery("AH-1 fuel pump")
	base := "fuel pump relay and fuel quantity"

	prev := Score(q, domain.Chunk{Text: base, Platform: "AH-1"})
	text := base
	for i := 0; i < 5; i++ {
		text += " fuel"
		next := Score(q, domain.Chunk{Text: text, Platform: "AH-1"})
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestScore_EmptyTextScoresZero(t *testing.T) {
	q := newTestQuery("AH-1 oil pressure")
	assert.Equal(t, 0, Score(q, domain.Chunk{Platform: "AH-1"}))
}

func TestScore_Independent(t *testing.T) {
	q := newTestQuery("RC-12 fuel capacity")
	corpus := manualCorpus()

	first := make([]int, len(corpus))
	for i, c := range corpus {
		first[i] = Score(q, c)
	}
	// scoring in reverse order yields the same numbers
	for i := len(corpus) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], Score(q, corpus[i]))
	}
}

func TestKeywordRetriever_Search(t *testing.T) {
	kb := &domain.KnowledgeBase{Chunks: manualCorpus()}
	r := NewKeywordRetriever(staticCorpus{kb: kb}, analyzer.NewQueryTokenizer())

	results, err := r.Search("AH-1 oil pressure", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "doc1_p31", results[0].Chunk.ID)

	results, err = r.Search("what is the", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordRetriever_NilSnapshot(t *testing.T) {
	r := NewKeywordRetriever(staticCorpus{}, analyzer.NewQueryTokenizer())

	results, err := r.Search("oil pressure", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
