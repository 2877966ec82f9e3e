// Package badgerstore backs both the object store and the ref store with a
// single embedded BadgerDB. It suits deployments that want one database file
// tree instead of a loose-object directory, and its transactions give the
// ref compare-and-swap a storage-level atomic primitive.
package badgerstore

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/refs"
)

const (
	objPrefix = "obj/"
	refPrefix = "ref/"
)

// Config holds configuration for a badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is set.
	Path string
	// InMemory enables in-memory mode (no disk persistence). Used by tests.
	InMemory bool
	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
	// Logger receives badger's internal logging. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns a durable on-disk configuration.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// Store implements object.Store over one BadgerDB. The same database also
// holds refs under a separate key prefix; Refs returns that view.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) a badger-backed store.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(slogAdapter{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// object.Store
// ---------------------------------------------------------------------------

func objKey(h object.Hash) []byte {
	return []byte(objPrefix + string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h object.Hash) bool {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(objKey(h))
		return err
	})
	return err == nil
}

// Write stores an object and returns its content hash. The value layout is
// "type\0content"; idempotent by construction since the key is the hash.
func (s *Store) Write(objType object.ObjectType, data []byte) (object.Hash, error) {
	h := object.HashObject(objType, data)
	if s.Has(h) {
		return h, nil
	}

	value := make([]byte, 0, len(objType)+1+len(data))
	value = append(value, []byte(objType)...)
	value = append(value, 0)
	value = append(value, data...)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(objKey(h), value)
	})
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h object.Hash) (object.ObjectType, []byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objKey(h))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", nil, fmt.Errorf("object read %s: %w", h, object.ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	nulIdx := bytes.IndexByte(value, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid value (no NUL)", h)
	}
	return object.ObjectType(value[:nulIdx]), value[nulIdx+1:], nil
}

// Objects lists the hashes of all stored objects.
func (s *Store) Objects() ([]object.Hash, error) {
	var out []object.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(objPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			out = append(out, object.Hash(strings.TrimPrefix(key, objPrefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return out, nil
}

// Delete removes an object. Only the collector calls this.
func (s *Store) Delete(h object.Hash) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(objKey(h))
	})
	if err != nil {
		return fmt.Errorf("object delete %s: %w", h, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// refs.Store
// ---------------------------------------------------------------------------

// RefStore is the refs.Store view of a badger-backed store, sharing the
// database with the object view under a distinct key prefix.
type RefStore struct {
	db *badger.DB
}

// Refs returns the refs.Store view over the same database.
func (s *Store) Refs() *RefStore {
	return &RefStore{db: s.db}
}

func refKey(name string) []byte {
	return []byte(refPrefix + name)
}

// Resolve returns the hash the named ref points at.
func (s *RefStore) Resolve(name string) (object.Hash, error) {
	if err := refs.ValidateName(name); err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}
	var h object.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(refKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			h = object.Hash(v)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", fmt.Errorf("resolve ref %q: %w", name, refs.ErrNotFound)
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return h, nil
}

// CompareAndSwap moves the ref inside a serializable transaction. A badger
// write conflict means another writer committed between our read and our
// commit; the transaction is re-run so the compare sees the fresh value and
// reports ErrStale honestly instead of clobbering the winner.
func (s *RefStore) CompareAndSwap(name string, expectedOld, newHash object.Hash) error {
	if err := refs.ValidateName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	key := refKey(name)

	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			var current object.Hash
			item, err := txn.Get(key)
			switch {
			case err == nil:
				if err := item.Value(func(v []byte) error {
					current = object.Hash(v)
					return nil
				}); err != nil {
					return err
				}
			case errors.Is(err, badger.ErrKeyNotFound):
				// Absent ref: current stays empty.
			default:
				return err
			}

			if current != expectedOld {
				return fmt.Errorf(
					"update ref %q: %w (expected %q, found %q)",
					name, refs.ErrStale, expectedOld, current,
				)
			}
			return txn.Set(key, []byte(newHash))
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

// Delete removes the named ref.
func (s *RefStore) Delete(name string) error {
	if err := refs.ValidateName(name); err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}
	key := refKey(name)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete ref %q: %w", name, refs.ErrNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// List returns refs under the given prefix.
func (s *RefStore) List(prefix string) (map[string]object.Hash, error) {
	out := make(map[string]object.Hash)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(refPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), refPrefix)
			if prefix != "" && name != prefix && !strings.HasPrefix(name, prefix+"/") {
				continue
			}
			if err := item.Value(func(v []byte) error {
				out[name] = object.Hash(v)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return out, nil
}

// slogAdapter bridges badger's logger interface onto slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Infof(format string, args ...interface{}) {
	a.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
