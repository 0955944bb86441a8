package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/boltdb/bolt"
)

var recordsBucket = []byte("records")

const (
	// Permissions to use on the db file. This is only used if the
	// database file does not exist and needs to be created.
	dbFileMode = 0600
)

// BoltEngine stores records in a single BoltDB bucket.
type BoltEngine struct {
	conn        *bolt.DB
	locationURI string
}

// NewBoltEngine opens or creates a BoltDB file at path.
func NewBoltEngine(path string, log *slog.Logger) (*BoltEngine, error) {
	handle, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb at %s: %w", path, err)
	}

	engine := &BoltEngine{
		conn:        handle,
		locationURI: fmt.Sprintf("bolt://%s", path),
	}
	if err := engine.initStore(); err != nil {
		handle.Close()
		return nil, err
	}

	log.Info("Opened BoltDB", "path", path)
	return engine, nil
}

func (e *BoltEngine) initStore() error {
	tx, err := e.conn.Begin(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.CreateBucketIfNotExists(recordsBucket); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *BoltEngine) Get(key []byte) ([]byte, error) {
	var value []byte
	err := e.conn.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recordsBucket).Get(key)
		if data == nil {
			return errKeyNotFound
		}
		// bolt values are only valid for the life of the transaction
		value = append([]byte(nil), data...)
		return nil
	})
	return value, err
}

func (e *BoltEngine) Put(key []byte, value []byte) error {
	return e.conn.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, value)
	})
}

func (e *BoltEngine) Delete(key []byte) error {
	return e.conn.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Delete(key)
	})
}

func (e *BoltEngine) Close() error {
	return e.conn.Close()
}

func (e *BoltEngine) LocationURI() string {
	return e.locationURI
}
