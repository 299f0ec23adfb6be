// Package blobstore persists whole, self-describing values under
// ksuid-generated keys, with an optional set of secondary indexes over named
// fields of those values. Where pkg/store is an append-only log tuned for
// small, high-churn records, Store is a Pebble-backed key/value table tuned
// for larger values that are written once and looked up either by id or by
// an indexed field.
package blobstore

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/skald/pkg/codec"
)

// Store is a Pebble-backed blob store. Every value passed to Create/Update
// is encoded with codec.Freeze and decoded with codec.Thaw on the way back
// out, so callers work with ordinary Go values rather than raw bytes.
type Store struct {
	db      *pebble.DB
	indexes *IndexManager
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithIndexManager attaches a set of secondary indexes that are kept in
// sync with every Create/Update/Delete.
func WithIndexManager(im *IndexManager) Option {
	return func(s *Store) { s.indexes = im }
}

// Open creates or opens a blob store rooted at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open blobstore at %s: %w", path, err)
	}

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create freezes v, stores it under a freshly generated ksuid, indexes it if
// an IndexManager is attached, and returns the new id.
func (s *Store) Create(v any) (ksuid.KSUID, error) {
	id := ksuid.New()
	data, err := codec.Freeze(v)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("freeze blob: %w", err)
	}

	if err := s.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return ksuid.Nil, fmt.Errorf("store blob %s: %w", id, err)
	}

	if s.indexes != nil {
		s.indexes.indexValue(v, id)
	}
	return id, nil
}

// Read decodes the blob stored under id.
func (s *Store) Read(id ksuid.KSUID) (any, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", id, err)
	}
	defer closer.Close()

	v, err := codec.Thaw(data)
	if err != nil {
		return nil, fmt.Errorf("thaw blob %s: %w", id, err)
	}
	return v, nil
}

// Update replaces the blob stored under id with v, re-indexing it in place.
func (s *Store) Update(id ksuid.KSUID, v any) error {
	if s.indexes != nil {
		if old, err := s.Read(id); err == nil {
			s.indexes.removeValue(old, id)
		}
	}

	data, err := codec.Freeze(v)
	if err != nil {
		return fmt.Errorf("freeze blob: %w", err)
	}
	if err := s.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return fmt.Errorf("update blob %s: %w", id, err)
	}

	if s.indexes != nil {
		s.indexes.indexValue(v, id)
	}
	return nil
}

// Delete removes the blob stored under id, and any secondary index entries
// pointing at it.
func (s *Store) Delete(id ksuid.KSUID) error {
	if s.indexes != nil {
		if old, err := s.Read(id); err == nil {
			s.indexes.removeValue(old, id)
		}
	}

	if err := s.db.Delete(id.Bytes(), pebble.NoSync); err != nil {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying Pebble handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Each decodes and visits every blob in the store, in key order. Iteration
// stops at the first error returned by fn or encountered while reading.
func (s *Store) Each(fn func(id ksuid.KSUID, v any) error) error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("iterate blobstore: %w", err)
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return fmt.Errorf("decode blob key: %w", err)
		}

		v, err := codec.Thaw(iter.Value())
		if err != nil {
			return fmt.Errorf("thaw blob %s: %w", id, err)
		}

		if err := fn(id, v); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Rebuild repopulates every index already registered on im from the blobs
// currently in the store. Indexes are held in memory only, so this is how a
// freshly constructed IndexManager recovers its contents after a process
// restart: register the fields of interest with GetOrCreateIndex, then call
// Rebuild once before serving requests.
func (s *Store) Rebuild(im *IndexManager) error {
	return s.Each(func(id ksuid.KSUID, v any) error {
		im.indexValue(v, id)
		return nil
	})
}
