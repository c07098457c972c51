package chunker

import (
	"strings"

	"mantis/internal/domain"
)

// FormFeed separates pages in pdftotext output.
const FormFeed = "\f"

// CleanText collapses every Unicode whitespace run to one space and trims the ends.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Page is the cleaned text of one 1-indexed page.
type Page struct {
	Number int
	Text   string
}

// SplitPages splits extractor output on form feeds. Page numbers count every
// page, including blank ones, but blank pages are not returned.
func SplitPages(content string) []Page {
	raw := strings.Split(content, FormFeed)
	// pdftotext terminates the last page with a form feed too
	if n := len(raw); n > 1 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}

	pages := make([]Page, 0, len(raw))
	for i, text := range raw {
		cleaned := CleanText(text)
		if cleaned == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: cleaned})
	}
	return pages
}

// PageChunker turns one document into one chunk per non-empty page. IDs are
// left empty; the ingestion pipeline numbers chunks across the whole corpus.
type PageChunker struct{}

func NewPageChunker() *PageChunker {
	return &PageChunker{}
}

func (c *PageChunker) Chunk(doc domain.Document, content string) ([]domain.Chunk, error) {
	pages := SplitPages(content)
	chunks := make([]domain.Chunk, 0, len(pages))
	for _, p := range pages {
		chunks = append(chunks, domain.Chunk{
			Text:     p.Text,
			Source:   doc.Name,
			Page:     p.Number,
			Platform: doc.Platform,
		})
	}
	return chunks, nil
}
