package storage

import (
	"errors"
)

var (
	// ErrInvalidLocationURI is returned when a store URI is malformed or its scheme unsupported.
	ErrInvalidLocationURI = errors.New("invalid store location URI")

	// ErrCorrupted is returned when a stored value cannot be decoded.
	ErrCorrupted = errors.New("corrupted record")

	errKeyNotFound = errors.New("key not found")
)

// Engine is the raw key-value substrate underneath the RecordStore.
// Get returns errKeyNotFound for missing keys.
type Engine interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Close() error

	// LocationURI returns the URI identifying this engine.
	LocationURI() string
}
