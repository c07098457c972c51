package port

import "context"

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	RelPath string
	Name    string
	ModTime int64
	Size    int64
}

// TextExtractor returns the page text of a manual, pages separated by form feeds.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}
