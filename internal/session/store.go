// Package session persists wizard state between steps in badger, with a TTL per entry.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"shipping-carrier-service/internal/apperr"
)

const keyPrefix = "session:"

// Store is a badger-backed JSON session store.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens the store in dir. An empty dir keeps everything in memory.
func Open(dir string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID returns a fresh session identifier.
func (s *Store) NewID() string {
	return uuid.NewString()
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

// Put stores v under id and restarts its TTL.
func (s *Store) Put(id string, v any) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: session id %q", apperr.ErrInvalid, id)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(id), data).WithTTL(s.ttl))
	})
}

// Get decodes the session stored under id into v.
func (s *Store) Get(id string, v any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: session %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read session %s: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}
