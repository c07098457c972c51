package retriever

import (
	"regexp"
	"sort"
	"strings"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/domain"
)

// Scoring constants.
const (
	PlatformBonus   = 10
	PlatformPenalty = 5
	PhraseBonus     = 5
	PhraseWindow    = 3
	MinScore        = 3
)

// legacyPlatformForms is the narrower list consulted by the mismatch penalty.
// It is not the detection table: RD-12, EH-1, M1, M2 and HMMWV are absent.
var legacyPlatformForms = []string{"ah-1", "rc-12", "uh-1", "oh-58", "c-12", "ch-47", "uh-60"}

// SnapshotSource supplies the current knowledge base snapshot.
type SnapshotSource interface {
	Snapshot() *domain.KnowledgeBase
}

// Query is a tokenized question ready for scoring.
type Query struct {
	Raw      string
	RawLower string
	Tokens   []string
	phrase   string
	matchers []*regexp.Regexp
}

// NewQuery tokenizes raw and compiles one whole-word matcher per token.
func NewQuery(tokenizer *analyzer.QueryTokenizer, raw string) Query {
	tokens := tokenizer.Tokenize(raw)
	q := Query{
		Raw:      raw,
		RawLower: strings.ToLower(raw),
		Tokens:   tokens,
		matchers: make([]*regexp.Regexp, len(tokens)),
	}
	for i, tok := range tokens {
		q.matchers[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
	}
	if len(tokens) >= 2 {
		window := tokens
		if len(window) > PhraseWindow {
			window = window[:PhraseWindow]
		}
		q.phrase = strings.Join(window, " ")
	}
	return q
}

// Empty reports whether the query produced no tokens.
func (q Query) Empty() bool {
	return len(q.Tokens) == 0
}

// Score computes the relevance of one chunk. It reads nothing but its arguments.
func Score(q Query, chunk domain.Chunk) int {
	if chunk.Text == "" {
		return 0
	}
	textLower := strings.ToLower(chunk.Text)
	score := 0

	for _, m := range q.matchers {
		score += len(m.FindAllStringIndex(textLower, -1))
	}

	score += platformAdjustment(q.RawLower, chunk.Platform)

	if q.phrase != "" && strings.Contains(textLower, q.phrase) {
		score += PhraseBonus
	}

	return score
}

func platformAdjustment(rawLower string, platform domain.Platform) int {
	if platform == "" || platform == domain.PlatformUnknown {
		return 0
	}
	tag := strings.ToLower(string(platform))
	if strings.Contains(rawLower, tag) {
		return PlatformBonus
	}
	for _, form := range legacyPlatformForms {
		if strings.Contains(rawLower, form) && !strings.Contains(tag, form) {
			return -PlatformPenalty
		}
	}
	return 0
}

// Rank scores every chunk, drops those under MinScore, and returns at most limit
// results by descending score. Equal scores keep corpus order.
func Rank(q Query, chunks []domain.Chunk, limit int) []domain.ScoredChunk {
	if q.Empty() || limit <= 0 || len(chunks) == 0 {
		return nil
	}

	var results []domain.ScoredChunk
	for _, chunk := range chunks {
		score := Score(q, chunk)
		if score < MinScore {
			continue
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// KeywordRetriever ranks the current snapshot by platform-aware keyword overlap.
type KeywordRetriever struct {
	corpus    SnapshotSource
	tokenizer *analyzer.QueryTokenizer
}

func NewKeywordRetriever(corpus SnapshotSource, tokenizer *analyzer.QueryTokenizer) *KeywordRetriever {
	return &KeywordRetriever{
		corpus:    corpus,
		tokenizer: tokenizer,
	}
}

// Search returns the top-k chunks of the current snapshot. It never fails; the
// error return satisfies port.Retriever.
func (r *KeywordRetriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	q := NewQuery(r.tokenizer, query)
	if q.Empty() {
		return nil, nil
	}
	kb := r.corpus.Snapshot()
	if kb.Len() == 0 {
		return nil, nil
	}
	return Rank(q, kb.Chunks, k), nil
}
