// Package store wraps the ordered byte-key/byte-value KV store the keyspace
// actor is built on. It is a thin adapter over goleveldb: the actor package
// never imports syndtr/goleveldb directly, so a different LSM engine could
// be swapped in behind this interface without touching core.
package store

import (
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ErrNotFound is returned internally by the underlying engine; callers of
// this package should use the boolean "found" return of Get instead.
var ErrNotFound = leveldb.ErrNotFound

// Batch accumulates Put/Delete operations for an atomic Write.
type Batch struct {
	b leveldb.Batch
}

func (b *Batch) Put(key, value []byte) { b.b.Put(key, value) }
func (b *Batch) Delete(key []byte)     { b.b.Delete(key) }
func (b *Batch) Len() int              { return b.b.Len() }

// FoldOptions controls the read options used while scanning the store.
type FoldOptions struct {
	FillCache       bool
	VerifyChecksums bool
}

func (o FoldOptions) readOptions() *opt.ReadOptions {
	ro := &opt.ReadOptions{DontFillCache: !o.FillCache}
	if o.VerifyChecksums {
		ro.Strict = opt.StrictAll
	}
	return ro
}

// Store is one shard's ordered KV store, backed by a goleveldb instance
// rooted at a directory on disk.
type Store struct {
	path string
	db   *leveldb.DB
}

// Open opens (or creates) the LevelDB database at path.
func Open(path string, createIfMissing bool) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfMissing: !createIfMissing,
	})
	if errors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Store{path: path, db: db}, nil
}

// Path returns the directory the store was opened on.
func (s *Store) Path() string { return s.path }

// Get fetches the value for key. It returns (nil, false, nil) when the key
// is absent, and a non-nil error only on a genuine storage failure.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	value, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put writes key/value.
func (s *Store) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

// NewBatch returns an empty batch of Put/Delete operations.
func (s *Store) NewBatch() *Batch { return &Batch{} }

// Write atomically applies a batch built with NewBatch.
func (s *Store) Write(b *Batch) error {
	return s.db.Write(&b.b, nil)
}

// IsEmpty reports whether the store holds zero records.
func (s *Store) IsEmpty() (bool, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	ok := iter.First()
	return !ok, iter.Error()
}

// Fold calls fn(key, value) for every record in key order. fn returning
// false stops the scan early.
func (s *Store) Fold(fn func(key, value []byte) bool, opts FoldOptions) error {
	iter := s.db.NewIterator(nil, opts.readOptions())
	defer iter.Release()
	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// FoldKeys calls fn(key) for every record in key order, without paying for
// value deserialization.
func (s *Store) FoldKeys(fn func(key []byte) bool, opts FoldOptions) error {
	iter := s.db.NewIterator(nil, opts.readOptions())
	defer iter.Release()
	for iter.Next() {
		if !fn(iter.Key()) {
			break
		}
	}
	return iter.Error()
}

// Status returns a human-readable LevelDB property, e.g. "leveldb.stats".
func (s *Store) Status(property string) (string, error) {
	return s.db.GetProperty(property)
}

// Close releases the store's file handles.
func (s *Store) Close() error {
	return s.db.Close()
}

// Destroy closes the store (if still open) and removes its files from disk.
// Used by FLUSHDB to atomically wipe a shard.
func (s *Store) Destroy() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	return os.RemoveAll(s.path)
}

// DestroyPath removes an on-disk store that isn't currently open.
func DestroyPath(path string) error {
	return os.RemoveAll(path)
}
