package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"mantis/internal/domain"
)

var (
	bucketChunks = []byte("chunks")
	bucketMeta   = []byte("meta")
	keyStats     = []byte("corpus_stats")
	keySavedAt   = []byte("saved_at")
)

// BoltStore keeps chunks in a single bucket keyed by big-endian sequence
// numbers, so a cursor walk returns corpus order.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore opens or creates the database and applies pending migrations.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create knowledge base dir: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, path: path}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenBoltStoreExisting opens a database that must already exist, read-only.
// Nothing is migrated or written; a database from a newer binary is refused.
func OpenBoltStoreExisting(path string) (*BoltStore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrKnowledgeBaseNotFound, path)
		}
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, path: path}
	if err := s.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) Path() string { return s.path }

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func seqKey(i uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, i)
	return key
}

// Save replaces the stored corpus in one transaction.
func (s *BoltStore) Save(chunks []domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketChunks); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(bucketChunks)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketChunks, err)
		}
		for i, chunk := range chunks {
			data, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(uint64(i)), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		stats, err := json.Marshal(domain.ComputeStats(chunks))
		if err != nil {
			return err
		}
		if err := meta.Put(keyStats, stats); err != nil {
			return err
		}
		return meta.Put(keySavedAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

func (s *BoltStore) Load() ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var chunk domain.Chunk
			if err := json.Unmarshal(v, &chunk); err != nil {
				return fmt.Errorf("%w: key %x: %v", domain.ErrMalformedRecord, k, err)
			}
			if chunk.Platform == "" {
				chunk.Platform = domain.PlatformUnknown
			}
			chunks = append(chunks, chunk)
			return nil
		})
	})
	return chunks, err
}

// GetStats returns the distribution recorded by the last Save.
func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		data := meta.Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
