package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// RecordStore provides typed access to records on top of an Engine.
// Writers of one key are serialised by a per-key lock; readers only ever see
// committed values. There is no cross-key atomicity.
type RecordStore struct {
	engine Engine
	locks  *keyLocks
	log    *slog.Logger
}

// NewRecordStore wraps an engine.
func NewRecordStore(engine Engine, log *slog.Logger) *RecordStore {
	return &RecordStore{
		engine: engine,
		locks:  newKeyLocks(),
		log:    log,
	}
}

// Close closes the underlying engine.
func (s *RecordStore) Close() error {
	return s.engine.Close()
}

// LocationURI returns the URI of the underlying engine.
func (s *RecordStore) LocationURI() string {
	return s.engine.LocationURI()
}

func (s *RecordStore) load(key Key, dst any) error {
	raw, err := s.engine.Get(key.Bytes())
	if errors.Is(err, errKeyNotFound) {
		return interfaces.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
	}
	if err := cbor.Unmarshal(raw, dst); err != nil {
		s.log.Error("Failed to decode record", "kind", key.Kind, "err", err)
		return fmt.Errorf("%w: %w: %v", interfaces.ErrStoreFailure, ErrCorrupted, err)
	}
	return nil
}

func (s *RecordStore) store(key Key, value any) error {
	raw, err := cbor.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
	}
	if err := s.engine.Put(key.Bytes(), raw); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
	}
	return nil
}

// Get loads the record at key. Returns interfaces.ErrRecordNotFound if absent.
func Get[T any](s *RecordStore, key Key) (*T, error) {
	value := new(T)
	if err := s.load(key, value); err != nil {
		return nil, err
	}
	return value, nil
}

// GetOrDefault loads the record at key, or returns def() if absent.
func GetOrDefault[T any](s *RecordStore, key Key, def func() *T) (*T, error) {
	value, err := Get[T](s, key)
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		return def(), nil
	}
	return value, err
}

// Put unconditionally overwrites the record at key.
func Put[T any](ctx context.Context, s *RecordStore, key Key, value *T) error {
	unlock, err := s.locks.lock(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()
	return s.store(key, value)
}

// Delete removes the record at key. Returns interfaces.ErrRecordNotFound if
// there was nothing to delete.
func Delete(ctx context.Context, s *RecordStore, key Key) error {
	unlock, err := s.locks.lock(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.engine.Get(key.Bytes()); errors.Is(err, errKeyNotFound) {
		return interfaces.ErrRecordNotFound
	} else if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
	}

	if err := s.engine.Delete(key.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
	}
	return nil
}

// GetForUpdate acquires the exclusive guard of key and loads its current value,
// or a zero value if the record does not exist yet. It blocks while another
// guard for the same key is held, until ctx is done.
//
// The caller must either Commit or Rollback the guard; deferring Rollback right
// after a successful call is always safe.
func GetForUpdate[T any](ctx context.Context, s *RecordStore, key Key) (*Guard[T], error) {
	unlock, err := s.locks.lock(ctx, key.String())
	if err != nil {
		return nil, err
	}

	value := new(T)
	found := true
	if err := s.load(key, value); errors.Is(err, interfaces.ErrRecordNotFound) {
		found = false
	} else if err != nil {
		unlock()
		return nil, err
	}

	return &Guard[T]{
		Value:  value,
		Found:  found,
		store:  s,
		key:    key,
		unlock: unlock,
	}, nil
}

// Guard is the single-writer handle over one record.
type Guard[T any] struct {
	// Value is the record to mutate before committing.
	Value *T

	// Found reports whether the record existed when the guard was taken.
	Found bool

	store  *RecordStore
	key    Key
	once   sync.Once
	unlock func()
}

// Commit writes Value and releases the guard.
func (g *Guard[T]) Commit() error {
	return g.CommitThen(nil)
}

// CommitThen writes Value and, if the write succeeded, calls publish with it
// before the guard is released. Caches derived from the record stay ordered
// with the writes of the key.
func (g *Guard[T]) CommitThen(publish func(*T)) error {
	err := errors.New("guard already released")
	g.once.Do(func() {
		defer g.unlock()
		err = g.store.store(g.key, g.Value)
		if err == nil && publish != nil {
			publish(g.Value)
		}
	})
	return err
}

// Delete removes the record and releases the guard.
func (g *Guard[T]) Delete() error {
	err := errors.New("guard already released")
	g.once.Do(func() {
		defer g.unlock()
		if !g.Found {
			err = interfaces.ErrRecordNotFound
			return
		}
		err = g.store.engine.Delete(g.key.Bytes())
		if err != nil {
			err = fmt.Errorf("%w: %w", interfaces.ErrStoreFailure, err)
		}
	})
	return err
}

// Rollback discards any changes and releases the guard. It is a no-op after
// Commit or Delete.
func (g *Guard[T]) Rollback() {
	g.once.Do(g.unlock)
}
