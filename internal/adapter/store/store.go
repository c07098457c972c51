package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"mantis/internal/domain"
	"mantis/internal/port"
)

// Open picks a store by file extension: .json for JSON, .db or .bolt for bbolt.
// When create is false a bolt file must already exist and is opened read-only.
func Open(path string, create bool) (port.KnowledgeBaseStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONStore(path), nil
	case ".db", ".bolt":
		if create {
			return NewBoltStore(path)
		}
		return OpenBoltStoreExisting(path)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, path)
	}
}

// LoadKnowledgeBase returns the chunks stored at path without modifying the file.
func LoadKnowledgeBase(path string) ([]domain.Chunk, error) {
	s, err := Open(path, false)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load()
}
