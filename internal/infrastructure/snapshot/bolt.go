package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zantech/instantorder/internal/domain/catalog"
	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("catalog")
	boltKey    = []byte("products")
)

// BoltStore keeps the snapshot under a single key of an embedded bbolt
// database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the bbolt file at path
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Load reads the snapshot
func (s *BoltStore) Load(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var products []catalog.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return nil
		}
		// Get returns memory owned by the transaction; decode copies it out.
		var err error
		products, err = decode(b.Get(boltKey))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bolt snapshot: %w", err)
	}
	return products, nil
}

// Save replaces the snapshot in one write transaction
func (s *BoltStore) Save(ctx context.Context, products []catalog.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(products)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return b.Put(boltKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save bolt snapshot: %w", err)
	}
	return nil
}

// Close releases the database file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ catalog.SnapshotStore = (*BoltStore)(nil)
