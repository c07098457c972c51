package analyzer

var defaultStopwords = func() map[string]struct{} {
	stops := []string{
		"a", "an", "the", "and", "or", "but", "is", "are", "was", "were", "be",
		"been", "being", "have", "has", "had", "do", "does", "did", "will", "would",
		"could", "should", "may", "might", "must", "shall", "can", "to", "of", "in",
		"for", "on", "with", "at", "by", "from", "as", "into", "through", "during",
		"before", "after", "above", "below", "between", "under", "again", "further",
		"then", "once", "here", "there", "when", "where", "why", "how", "all", "each",
		"few", "more", "most", "other", "some", "such", "no", "nor", "not", "only",
		"own", "same", "so", "than", "too", "very", "just", "about", "what", "which",
		"who", "whom", "this", "that", "these", "those", "am", "i", "me", "my", "we",
		"our", "you", "your", "he", "him", "his", "she", "her", "it", "its", "they",
		"them", "their", "if", "up", "out", "off", "over", "any",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}()
