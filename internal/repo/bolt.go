package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

// bucketLogbook holds every document of the local store.
var bucketLogbook = []byte("logbook")

// ErrStoreClosed is returned by BoltKVStore operations after Close.
var ErrStoreClosed = errors.New("store is closed")

// BoltKVStore is the local single-file implementation of KVStore.
// It plays the role the browser's localStorage plays for the web client:
// one file, one bucket, whole JSON documents per key.
type BoltKVStore struct {
	db *bbolt.DB
}

// NewBoltKVStore opens (or creates) the bbolt database at path and makes
// sure the logbook bucket exists.
func NewBoltKVStore(path string) (*BoltKVStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.NewBoltKVStore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLogbook)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.NewBoltKVStore: create bucket: %w", err)
	}

	return &BoltKVStore{db: db}, nil
}

// Close releases the database file. It is safe to call more than once.
func (s *BoltKVStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Get decodes the document stored under key into dest.
func (s *BoltKVStore) Get(_ context.Context, key string, dest any) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("repo.BoltKVStore.Get: %w", ErrStoreClosed)
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogbook)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketLogbook)
		}
		// Bytes returned by Get are only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("repo.BoltKVStore.Get: %w", err)
	}
	if raw == nil {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("repo.BoltKVStore.Get: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value under key.
func (s *BoltKVStore) Set(_ context.Context, key string, value any) error {
	if s.db == nil {
		return fmt.Errorf("repo.BoltKVStore.Set: %w", ErrStoreClosed)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("repo.BoltKVStore.Set: encode %q: %w", key, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogbook)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketLogbook)
		}
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("repo.BoltKVStore.Set: %w", err)
	}
	return nil
}

// Delete removes key from the bucket.
func (s *BoltKVStore) Delete(_ context.Context, key string) error {
	if s.db == nil {
		return fmt.Errorf("repo.BoltKVStore.Delete: %w", ErrStoreClosed)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogbook)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketLogbook)
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("repo.BoltKVStore.Delete: %w", err)
	}
	return nil
}
