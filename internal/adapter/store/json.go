package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mantis/internal/domain"
)

// JSONStore persists the knowledge base as an indented JSON array of chunks.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Path() string { return s.path }

// record mirrors domain.Chunk with pointers so missing fields are detectable.
type record struct {
	ID       *string `json:"id"`
	Text     *string `json:"text"`
	Source   string  `json:"source"`
	Page     int     `json:"page"`
	Platform string  `json:"platform"`
}

func (s *JSONStore) Load() ([]domain.Chunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrKnowledgeBaseNotFound, s.path)
		}
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return DecodeChunks(data)
}

// DecodeChunks parses a JSON array of chunk records. Any element that is not a
// chunk-shaped object fails the whole decode.
func DecodeChunks(data []byte) ([]domain.Chunk, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	chunks := make([]domain.Chunk, 0, len(raw))
	for i, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 || msg[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", domain.ErrMalformedRecord, i)
		}
		var r record
		if err := json.Unmarshal(msg, &r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrMalformedRecord, i, err)
		}
		if r.ID == nil || r.Text == nil {
			return nil, fmt.Errorf("%w: record %d lacks id or text", domain.ErrMalformedRecord, i)
		}
		platform := domain.Platform(r.Platform)
		if platform == "" {
			platform = domain.PlatformUnknown
		}
		chunks = append(chunks, domain.Chunk{
			ID:       *r.ID,
			Text:     *r.Text,
			Source:   r.Source,
			Page:     r.Page,
			Platform: platform,
		})
	}
	return chunks, nil
}

// Save writes chunks atomically: a temp file in the same directory is renamed
// over the target so watchers never observe a half-written file.
func (s *JSONStore) Save(chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	data := buf.Bytes()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create knowledge base dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kb-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace knowledge base: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }
