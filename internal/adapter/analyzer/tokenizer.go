package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	platformShape = regexp.MustCompile(`[a-z]{1,2}[-_]?\d{1,2}`)
	letterOrDigit = regexp.MustCompile(`[a-z]+|\d+`)
	alnumRun      = regexp.MustCompile(`[a-z0-9]+`)
)

// QueryTokenizer turns a free-text question into search tokens.
type QueryTokenizer struct {
	stopwords map[string]struct{}
}

// NewQueryTokenizer creates a tokenizer using the built-in English stopword list.
func NewQueryTokenizer() *QueryTokenizer {
	return &QueryTokenizer{stopwords: defaultStopwords}
}

// Tokenize returns distinct lowercase tokens, platform identifiers first.
// Letter and digit runs of an extracted identifier are not repeated as plain words.
func (t *QueryTokenizer) Tokenize(query string) []string {
	lower := strings.ToLower(query)

	platformTokens := platformShape.FindAllString(lower, -1)

	parts := make(map[string]struct{})
	for _, pt := range platformTokens {
		for _, part := range letterOrDigit.FindAllString(pt, -1) {
			parts[part] = struct{}{}
		}
	}

	var generic []string
	for _, word := range alnumRun.FindAllString(lower, -1) {
		if len(word) <= 1 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if _, isPart := parts[word]; isPart {
			continue
		}
		generic = append(generic, word)
	}

	seen := make(map[string]struct{}, len(platformTokens)+len(generic))
	tokens := make([]string, 0, len(platformTokens)+len(generic))
	for _, group := range [][]string{platformTokens, generic} {
		for _, tok := range group {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// IsStopword reports whether word is in the stopword set.
func (t *QueryTokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// CountTokens returns an approximate token count for LLM budget estimation.
func (t *QueryTokenizer) CountTokens(text string) int {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	// average word is about 1.3 model tokens
	return int(float64(len(words)) * 1.3)
}

// splitWords splits text into words using unicode letter/digit runs.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
