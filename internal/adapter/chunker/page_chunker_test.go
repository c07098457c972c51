package chunker

import (
	"testing"

	"mantis/internal/domain"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello \n\n world\t ", "hello world"},
		{"\n\t  ", ""},
		{"one", "one"},
		{"a\r\nb", "a b"},
		{"nbsp\u00a0sep", "nbsp sep"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitPages(t *testing.T) {
	content := "Page one\ntext\f  \n \fPage   three\f"

	pages := SplitPages(content)

	if len(pages) != 2 {
		t.Fatalf("expected 2 non-empty pages, got %d: %+v", len(pages), pages)
	}
	if pages[0].Number != 1 || pages[0].Text != "Page one text" {
		t.Errorf("unexpected first page: %+v", pages[0])
	}
	// the blank second page still counts toward numbering
	if pages[1].Number != 3 || pages[1].Text != "Page three" {
		t.Errorf("unexpected second page: %+v", pages[1])
	}
}

func TestSplitPages_NoFormFeed(t *testing.T) {
	pages := SplitPages("single page export")
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestSplitPages_Empty(t *testing.T) {
	if pages := SplitPages(""); len(pages) != 0 {
		t.Errorf("expected no pages, got %+v", pages)
	}
}

func TestPageChunker(t *testing.T) {
	doc := domain.Document{
		Name:     "UH-1 HELICOPTER MAINTENANCE.pdf",
		Platform: "UH-1",
	}

	chunks, err := NewPageChunker().Chunk(doc, "transmission oil\f\ftail rotor")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Source != doc.Name || c.Platform != "UH-1" {
			t.Errorf("chunk lost document metadata: %+v", c)
		}
		if c.ID != "" {
			t.Errorf("chunker must not assign ids, got %q", c.ID)
		}
	}
	if chunks[1].Page != 3 {
		t.Errorf("expected page 3, got %d", chunks[1].Page)
	}
}
