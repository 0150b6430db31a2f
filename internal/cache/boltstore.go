package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// bucketName is the BoltDB bucket holding cache records.
const bucketName = "results"

// boltStore keeps all cache records in a single embedded database file.
type boltStore struct {
	db *bbolt.DB
}

// NewBoltCache opens (or creates) a BoltDB-backed cache at
// dir/cache.db.
func NewBoltCache(dir string, logger *zap.Logger) (*Cache, error) {
	dbPath := filepath.Join(dir, "cache.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return newCache(&boltStore{db: db}, logger), nil
}

func (s *boltStore) get(key string) ([]byte, bool, error) {
	var data []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket([]byte(bucketName)).Get([]byte(key)); value != nil {
			data = append([]byte(nil), value...)
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return data, data != nil, nil
}

func (s *boltStore) put(key string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

func (s *boltStore) delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

func (s *boltStore) scan(visit func(key string, data []byte, size int64)) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			visit(string(k), append([]byte(nil), v...), int64(len(v)))
			return nil
		})
	})
}

func (s *boltStore) clear() (int, error) {
	count := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN

		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *boltStore) close() error {
	return s.db.Close()
}
