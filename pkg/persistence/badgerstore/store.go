// Package badgerstore is the live persistence backend, one badger.DB shared
// across every record family, each keyed under its own prefix. Grounded on
// hailam-chessplay's internal/storage package for the Open/View/Update
// idiom; generalized from that package's fixed single-key records to a
// generic, prefix-scoped, multi-record store.
package badgerstore

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Storable is any record type a Store can persist.
type Storable interface {
	ID() string
}

// Store is a generic store over one badger.DB, scoping every record of type
// T under "prefix:<id>" so several record families can share one database
// file (spec.md's SuspendedSession, FinishedGame, Position, and
// AdvancedGameAnalysisRecord all do).
type Store[T Storable] struct {
	db     *badger.DB
	prefix string
}

// New wraps db for records of type T under prefix. Pass the same *badger.DB
// to every Store sharing a database file.
func New[T Storable](db *badger.DB, prefix string) *Store[T] {
	return &Store[T]{db: db, prefix: prefix}
}

func (s *Store[T]) key(id string) []byte {
	return []byte(s.prefix + ":" + id)
}

// Open opens (creating if absent) a badger database at path, with its
// internal logging disabled as hailam-chessplay's storage layer does.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %v: %w", path, err)
	}
	return db, nil
}

// Save writes data under its own ID within this store's prefix.
func (s *Store[T]) Save(data T) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("badgerstore: marshal %v: %w", data.ID(), err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(data.ID()), body)
	})
	if err != nil {
		return "", fmt.Errorf("badgerstore: save %v: %w", data.ID(), err)
	}
	return data.ID(), nil
}

// Load reads the record with the given id. The zero value and ok=false are
// returned if no such record exists.
func (s *Store[T]) Load(id string) (T, bool, error) {
	var zero, data T
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &data)
		})
	})
	if err != nil {
		return zero, false, fmt.Errorf("badgerstore: load %v: %w", id, err)
	}
	if !found {
		return zero, false, nil
	}
	return data, true, nil
}

// LoadAll reads every record under this store's prefix.
func (s *Store[T]) LoadAll() ([]T, error) {
	var items []T
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(s.prefix + ":")
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var data T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &data)
			})
			if err != nil {
				return err
			}
			items = append(items, data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: load all %v: %w", s.prefix, err)
	}
	return items, nil
}

// Delete removes the record with the given id, if it exists.
func (s *Store[T]) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(s.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("badgerstore: delete %v: %w", id, err)
	}
	return nil
}
