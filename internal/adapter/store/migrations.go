package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is bumped on breaking changes to the bolt layout.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		data := b.Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

// Migrate brings the database to CurrentSchemaVersion. A database written by a
// newer binary is refused.
func (s *BoltStore) Migrate() error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := refuseNewer(version); err != nil {
		return err
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}
	return nil
}

// checkVersion validates the schema without writing, for read-only handles.
func (s *BoltStore) checkVersion() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	return refuseNewer(version)
}

func refuseNewer(version int) error {
	if version > CurrentSchemaVersion {
		return fmt.Errorf("database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}
	return nil
}

func (s *BoltStore) runMigration(from, to int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		switch {
		case from == 0 && to == 1:
			if _, err := tx.CreateBucketIfNotExists(bucketChunks); err != nil {
				return err
			}
		}
		data, err := json.Marshal(to)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}
